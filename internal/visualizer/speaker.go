package visualizer

import (
	"math"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// drawSpeaker paints the emblem at the ripple center. radius already
// includes the bass pulse.
func drawSpeaker(c ports.Canvas, pattern domain.SpeakerPattern, primary domain.RGB, lineWidth, cx, cy, radius, bass float64) {
	if radius <= 0 {
		return
	}
	switch pattern {
	case domain.SpeakerRadial:
		speakerRadial(c, primary, lineWidth, cx, cy, radius, bass)
	case domain.SpeakerPulse:
		speakerPulse(c, primary, lineWidth, cx, cy, radius)
	case domain.SpeakerStar:
		speakerStar(c, primary, lineWidth, cx, cy, radius, bass)
	default:
		speakerRings(c, primary, lineWidth, cx, cy, radius, bass)
	}
}

// speakerRings draws a cone of five concentric rings that spread with bass.
func speakerRings(c ports.Canvas, primary domain.RGB, lineWidth, cx, cy, radius, bass float64) {
	const rings = 5

	// drop shadow behind the cone
	c.FillCircle(cx+5, cy+5, radius+10, radial(cx+5, cy+5, radius+10,
		stop(0, black, 0.5),
		stop(1, black, 0),
	))
	c.FillCircle(cx, cy, radius, solid(black, 0.3))

	for ring := 0; ring < rings; ring++ {
		p := float64(ring) / rings
		depthOffset := p * 10 * (1 + bass*2)
		perspective := 1 + p*0.15*(1+bass)
		expansion := bass * p * 0.3
		r := radius * (0.2 + p*0.8) * (1 + expansion) * perspective
		brightness := 0.4 + p*0.6
		alpha := (0.9 - p*0.3) * brightness
		thickness := lineWidth * (1.5 + p)

		if ring < rings-2 {
			shift := -depthOffset * 0.3
			c.StrokeCircle(cx+shift, cy+shift, r, ports.Stroke{
				Paint: solid(black, 0.6*(1-p)),
				Width: thickness,
			})
		}

		stroke := ports.Stroke{Paint: solid(Scale(primary, brightness), alpha), Width: thickness}
		if ring >= rings-2 {
			stroke.Glow = &ports.Glow{Color: ToNRGBA(primary, 0.8*p), Blur: 20 * (1 + bass*2)}
		}
		c.StrokeCircle(cx, cy, r, stroke)

		if ring == 0 {
			c.FillCircle(cx, cy, r, radial(cx, cy, r,
				stop(0, black, 0.9),
				stop(0.5, Scale(primary, 0.2), 0.8),
				stop(1, Scale(primary, 0.4), 0.6),
			))
		}

		if ring >= rings-2 {
			hi := p * (1 + bass*0.5)
			hx, hy := cx-r*0.3, cy-r*0.3
			c.FillCircle(cx, cy, r, radial(hx, hy, r*0.5,
				stop(0, white, 0.4*hi),
				stop(0.4, white, 0.15*hi),
				stop(1, white, 0),
			))
		}
	}
}

// speakerRadial draws 16 rays of alternating length around a solid hub.
func speakerRadial(c ports.Canvas, primary domain.RGB, lineWidth, cx, cy, radius, bass float64) {
	const rays = 16
	inner := radius * 0.3

	for i := 0; i < rays; i++ {
		angle := float64(i) / rays * 2 * math.Pi
		cos, sin := math.Cos(angle), math.Sin(angle)
		length := 1.0
		if i%2 == 1 {
			length = 0.7
		}
		x0, y0 := cx+cos*inner, cy+sin*inner
		c.StrokeLine(x0, y0, cx+cos*radius*length, cy+sin*radius*length, ports.Stroke{
			Paint: ports.LinearGradient{
				X0: x0, Y0: y0, X1: cx + cos*radius, Y1: cy + sin*radius,
				Stops: []ports.ColorStop{stop(0, primary, 0.9), stop(1, primary, 0)},
			},
			Width: lineWidth * (1 + bass*2) * (1 + float64(i%3)*0.3),
		})
	}

	c.FillCircle(cx, cy, inner, solid(primary, 0.8))
	c.StrokeCircle(cx, cy, inner, ports.Stroke{Paint: solid(primary, 1), Width: lineWidth * 2})
}

// speakerPulse draws three fading rings over a soft filled center.
func speakerPulse(c ports.Canvas, primary domain.RGB, lineWidth, cx, cy, radius float64) {
	const rings = 3

	for i := 0; i < rings; i++ {
		p := float64(i) / rings
		alpha := (1 - p) * 0.8
		c.StrokeCircle(cx, cy, radius*(0.5+p*0.8), ports.Stroke{
			Paint: solid(primary, alpha),
			Width: lineWidth * (3 - p*2),
			Glow:  &ports.Glow{Color: ToNRGBA(primary, alpha), Blur: 15 * (1 - p)},
		})
	}

	core := radius * 0.5
	c.FillCircle(cx, cy, core, radial(cx, cy, core,
		stop(0, primary, 1),
		stop(0.7, primary, 0.5),
		stop(1, primary, 0),
	))
}

// speakerStar draws an eight point star with a glowing outline.
func speakerStar(c ports.Canvas, primary domain.RGB, lineWidth, cx, cy, radius, bass float64) {
	const points = 8
	inner := radius * 0.4

	star := make([]ports.Point, 0, points*2)
	for i := 0; i < points*2; i++ {
		angle := float64(i)/(points*2)*2*math.Pi - math.Pi/2
		r := radius
		if i%2 == 1 {
			r = inner
		}
		star = append(star, ports.Point{X: cx + math.Cos(angle)*r, Y: cy + math.Sin(angle)*r})
	}

	c.FillPolygon(star, radial(cx, cy, radius,
		stop(0, primary, 1),
		stop(0.6, primary, 0.7),
		stop(1, primary, 0.3),
	))
	c.StrokePolyline(star, true, ports.Stroke{
		Paint: solid(primary, 1),
		Width: lineWidth * (1 + bass*2),
		Glow:  &ports.Glow{Color: ToNRGBA(primary, 0.8), Blur: 20 * (1 + bass)},
	})
	c.FillCircle(cx, cy, inner*0.5, solid(primary, 0.9))
}
