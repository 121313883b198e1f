package visualizer

import (
	"math"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

const (
	circularBarWidth     = 3.0
	circularBorderAlpha  = 0.3
	circularOrbitDots    = 6
	circularDotRadius    = 4.0
	circularSpreadFactor = 0.7 // share of the spectrum the bars sweep across
	circularJaggedDepth  = 0.15
)

// Circular draws radial bars around a pulsing core.
// The circle is split into poles; each pole sweeps bass to treble and back.
type Circular struct {
	rotation    float64 // degrees, grows by RotationSpeed per frame while auto-rotating
	intensities []float64
	jagged      []ports.Point
}

var _ Renderer = (*Circular)(nil)

// NewCircular creates a circular renderer with zero rotation.
func NewCircular() *Circular {
	return &Circular{}
}

// Shape returns domain.ShapeCircular.
func (v *Circular) Shape() domain.Shape {
	return domain.ShapeCircular
}

// Reset clears the accumulated rotation.
func (v *Circular) Reset() {
	v.rotation = 0
}

// Rotation returns the accumulated auto-rotation in degrees.
func (v *Circular) Rotation() float64 {
	return v.rotation
}

// Render paints one frame.
func (v *Circular) Render(c ports.Canvas, frame Frame, cfg domain.Config) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}
	cc := cfg.CircularOrDefault()
	scheme := cfg.ColorScheme
	freq := frame.Frequency

	if cc.AutoRotate {
		v.rotation += cc.RotationSpeed
	}

	// Silence hard-clears so trails do not build up while nothing plays.
	if HasSignal(freq) {
		fillBackground(c, cfg.FadeAmount)
	} else {
		fillBackground(c, 1)
	}

	cx, cy := float64(w)/2, float64(h)/2
	minDim := float64(min(w, h))
	bass := BassLevel(freq)
	baseRadius := BaseRadius(cc, bass, minDim)

	barCount, poles := circularCounts(cc)
	v.sampleBars(freq, barCount, poles, cfg.Smoothing)

	angleStep := 2 * math.Pi / float64(barCount)
	offset := cc.RotationOffset*math.Pi/180 + v.rotation*math.Pi/180

	c.FillCircle(cx, cy, baseRadius, solid(black, 1))
	border := ports.Stroke{Paint: solid(scheme.Primary, circularBorderAlpha), Width: 2}
	if cc.JaggedCircle && barCount >= 3 {
		c.StrokePolyline(v.jaggedRing(cx, cy, baseRadius, angleStep, offset), true, border)
	} else {
		c.StrokeCircle(cx, cy, baseRadius, border)
	}

	currentRotation := 0.0
	if cc.AutoRotate {
		currentRotation = v.rotation
	}
	drawCore(c, scheme, cx, cy, baseRadius, bass, currentRotation)

	maxBarHeight := minDim * cc.MaxBarHeight
	for i, intensity := range v.intensities {
		if intensity <= 0 {
			continue
		}
		angle := float64(i)*angleStep + offset
		cos, sin := math.Cos(angle), math.Sin(angle)
		outer := baseRadius + intensity*maxBarHeight
		x0, y0 := cx+cos*baseRadius, cy+sin*baseRadius
		x1, y1 := cx+cos*outer, cy+sin*outer

		c.StrokeLine(x0, y0, x1, y1, ports.Stroke{
			Paint: ports.LinearGradient{
				X0: x0, Y0: y0, X1: x1, Y1: y1,
				Stops: []ports.ColorStop{
					stop(0, scheme.Primary, intensity*0.6),
					stop(1, scheme.Secondary, intensity*0.9),
				},
			},
			Width: circularBarWidth,
		})
	}
}

// BaseRadius returns the radius the bars grow out of. With bass response it
// moves between the configured min and max fractions of minDim; otherwise
// it sits at their midpoint.
func BaseRadius(cc domain.CircularConfig, bass, minDim float64) float64 {
	if cc.BassResponseCircle {
		lo := minDim * cc.BaseRadiusMin
		hi := minDim * cc.BaseRadiusMax
		return lo + Clamp01(bass)*(hi-lo)
	}
	return minDim * (cc.BaseRadiusMin + cc.BaseRadiusMax) / 2
}

// PoleBinIndex maps bar i to a frequency bin. Each of the poles covers
// segment = barCount/poles bars (not necessarily an integer) and sweeps
// bass to treble over its first half and back over the second. The
// position is remapped with ^1.5 so bass gets more bars than treble.
func PoleBinIndex(i, barCount, poles, bins int) int {
	if bins <= 0 {
		return 0
	}
	barCount = max(1, barCount)
	poles = min(max(1, poles), barCount)

	segment := float64(barCount) / float64(poles)
	half := segment / 2
	pos := math.Mod(float64(i), segment)

	var norm float64
	if pos < half {
		norm = pos / half
	} else {
		norm = (segment - pos) / half
	}
	idx := int(math.Floor(math.Pow(Clamp01(norm), 1.5) * float64(bins) * circularSpreadFactor))
	return clampIndex(idx, bins)
}

func circularCounts(cc domain.CircularConfig) (barCount, poles int) {
	barCount = max(1, cc.BarCount)
	poles = min(max(1, cc.Poles), barCount)
	return barCount, poles
}

func (v *Circular) sampleBars(freq []byte, barCount, poles int, smoothing bool) {
	if cap(v.intensities) < barCount {
		v.intensities = make([]float64, barCount)
	}
	v.intensities = v.intensities[:barCount]
	for i := range v.intensities {
		if len(freq) == 0 {
			v.intensities[i] = 0
			continue
		}
		idx := PoleBinIndex(i, barCount, poles, len(freq))
		v.intensities[i] = SampleBin(freq, idx, smoothing)
	}
}

// jaggedRing builds the base border with its radius pushed out by each bar's intensity.
func (v *Circular) jaggedRing(cx, cy, baseRadius, angleStep, offset float64) []ports.Point {
	v.jagged = v.jagged[:0]
	for i, intensity := range v.intensities {
		angle := float64(i)*angleStep + offset
		r := baseRadius * (1 + intensity*circularJaggedDepth)
		v.jagged = append(v.jagged, ports.Point{X: cx + math.Cos(angle)*r, Y: cy + math.Sin(angle)*r})
	}
	return v.jagged
}

// drawCore paints the layered center piece: outer glow, main disk, pulse
// ring, bright core, orbiting dots and a glowing border.
func drawCore(c ports.Canvas, scheme domain.ColorScheme, cx, cy, baseRadius, bass, rotation float64) {
	inner := baseRadius * 0.6 * (0.15 + bass*1.8)
	if inner <= 0 {
		return
	}
	primary, secondary := scheme.Primary, scheme.Secondary

	c.FillCircle(cx, cy, inner*1.5, radial(cx, cy, inner*1.5,
		stop(0, secondary, 0.3),
		stop(0.4, secondary, 0.15),
		stop(1, secondary, 0),
	))

	c.FillCircle(cx, cy, inner, radial(cx, cy, inner,
		stop(0, secondary, 0.95),
		stop(0.3, secondary, 0.8),
		stop(0.7, secondary, 0.5),
		stop(1, secondary, 0.1),
	))

	c.StrokeCircle(cx, cy, inner*0.7, ports.Stroke{
		Paint: solid(primary, 0.4+bass*0.4),
		Width: 3,
	})

	c.FillCircle(cx, cy, inner*0.4, radial(cx, cy, inner*0.4,
		stop(0, primary, 1),
		stop(0.5, primary, 0.6),
		stop(1, secondary, 0.3),
	))

	orbit := inner * 0.5 * 0.6
	for i := 0; i < circularOrbitDots; i++ {
		angle := math.Mod(rotation*2+float64(i)*2*math.Pi/circularOrbitDots, 2*math.Pi)
		x := cx + math.Cos(angle)*orbit
		y := cy + math.Sin(angle)*orbit
		c.FillCircle(x, y, circularDotRadius, radial(x, y, circularDotRadius,
			stop(0, primary, 0.8),
			stop(1, primary, 0),
		))
	}

	c.StrokeCircle(cx, cy, inner, ports.Stroke{
		Paint: solid(primary, 0.8),
		Width: 2,
		Glow:  &ports.Glow{Color: ToNRGBA(primary, 0.6), Blur: 10},
	})
}
