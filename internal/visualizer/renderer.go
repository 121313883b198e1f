// Package visualizer turns analysis frames into drawing calls on a ports.Canvas.
//
// Each shape has its own Renderer. A renderer keeps only the runtime state
// its shape needs between frames (rotation, ripple history); everything else
// comes in through Render's parameters, so a renderer can be driven by the
// render loop, by the headless exporter or directly from tests.
package visualizer

import (
	"fmt"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Frame is one tick of analysis data. Both slices have the source's
// BufferLength entries and are only valid during the Render call.
type Frame struct {
	Frequency  []byte
	TimeDomain []byte
}

// Len returns the number of bins in the frame.
func (f Frame) Len() int {
	return len(f.Frequency)
}

// Renderer draws one shape.
type Renderer interface {
	// Shape returns the shape this renderer draws.
	Shape() domain.Shape

	// Render paints exactly one frame. cfg is a private copy; a nil
	// sub-config for this shape means "use the defaults".
	Render(c ports.Canvas, frame Frame, cfg domain.Config)

	// Reset drops all runtime state, as if the renderer was just created.
	Reset()
}

// Factory creates the renderer for a shape.
func Factory(shape domain.Shape) (Renderer, error) {
	switch shape {
	case domain.ShapeCircular:
		return NewCircular(), nil
	case domain.ShapeBars:
		return NewBars(), nil
	case domain.ShapeWaveform:
		return NewWaveform(), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownShape, shape)
	}
}

// TypeInfo contains information about a visualizer shape.
type TypeInfo struct {
	Shape domain.Shape
	Name  string
}

// GetTypes returns all available shapes with their display names.
func GetTypes() []TypeInfo {
	return []TypeInfo{
		{domain.ShapeCircular, "Circular"},
		{domain.ShapeBars, "Edge Bars"},
		{domain.ShapeWaveform, "Ripple Waveform"},
	}
}

// fillBackground paints the whole surface black at the given alpha.
func fillBackground(c ports.Canvas, alpha float64) {
	w, h := c.Size()
	c.FillRect(0, 0, float64(w), float64(h), ports.Solid{Color: ToNRGBA(black, alpha)})
}

func solid(c domain.RGB, alpha float64) ports.Solid {
	return ports.Solid{Color: ToNRGBA(c, alpha)}
}

func stop(offset float64, c domain.RGB, alpha float64) ports.ColorStop {
	return ports.ColorStop{Offset: offset, Color: ToNRGBA(c, alpha)}
}

func radial(cx, cy, r float64, stops ...ports.ColorStop) ports.RadialGradient {
	return ports.RadialGradient{CX: cx, CY: cy, R0: 0, R1: r, Stops: stops}
}
