package raster

import (
	"image/color"
	"math"
	"sort"

	"github.com/srwiley/rasterx"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// rampSize is the number of precomputed colors per gradient.
const rampSize = 256

// source converts a paint into what the rasterx scanner accepts: a
// color.Color for flat paint, a ColorFunc for gradients. Gradient geometry
// is in user space, so pixels are mapped back through the inverse of the
// transform active at draw time.
func (s *Surface) source(p ports.Paint) interface{} {
	switch p := p.(type) {
	case ports.Solid:
		return p.Color
	case ports.LinearGradient:
		ramp := newRamp(p.Stops)
		inv, ok := invert(s.m)
		dx, dy := p.X1-p.X0, p.Y1-p.Y0
		lenSq := dx*dx + dy*dy
		if !ok || lenSq == 0 {
			return ramp.at(0)
		}
		return rasterx.ColorFunc(func(x, y int) color.Color {
			ux, uy := inv.Transform(float64(x)+0.5, float64(y)+0.5)
			return ramp.at(((ux-p.X0)*dx + (uy-p.Y0)*dy) / lenSq)
		})
	case ports.RadialGradient:
		ramp := newRamp(p.Stops)
		inv, ok := invert(s.m)
		span := p.R1 - p.R0
		if !ok || span <= 0 {
			return ramp.at(1)
		}
		return rasterx.ColorFunc(func(x, y int) color.Color {
			ux, uy := inv.Transform(float64(x)+0.5, float64(y)+0.5)
			return ramp.at((math.Hypot(ux-p.CX, uy-p.CY) - p.R0) / span)
		})
	}
	return color.Transparent
}

// ramp is a gradient sampled at rampSize evenly spaced offsets.
type ramp [rampSize]color.NRGBA

func newRamp(stops []ports.ColorStop) *ramp {
	var r ramp
	if len(stops) == 0 {
		return &r
	}
	sorted := make([]ports.ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	for i := range r {
		r[i] = sampleStops(sorted, float64(i)/(rampSize-1))
	}
	return &r
}

func (r *ramp) at(t float64) color.NRGBA {
	switch {
	case math.IsNaN(t) || t <= 0:
		return r[0]
	case t >= 1:
		return r[rampSize-1]
	}
	return r[int(t*(rampSize-1)+0.5)]
}

// sampleStops interpolates sorted stops at t. Outside the first and last
// stop the end colors extend.
func sampleStops(stops []ports.ColorStop, t float64) color.NRGBA {
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Color
		}
		f := snapFactor((t - a.Offset) / span)
		return color.NRGBA{
			R: mix(a.Color.R, b.Color.R, f),
			G: mix(a.Color.G, b.Color.G, f),
			B: mix(a.Color.B, b.Color.B, f),
			A: mix(a.Color.A, b.Color.A, f),
		}
	}
	return last.Color
}

// snapFactor rounds an interpolation factor to 1e-9 so that a nominal
// midpoint lands on 0.5 and halves round away from zero in mix.
func snapFactor(f float64) float64 {
	return math.Round(f*1e9) / 1e9
}

func mix(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// invert returns the inverse affine transform, or false for a singular one.
func invert(m rasterx.Matrix2D) (rasterx.Matrix2D, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || math.IsNaN(det) {
		return rasterx.Identity, false
	}
	return rasterx.Matrix2D{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}
