package ports

import (
	"image/color"
)

// Point is a 2D coordinate in the canvas' current user space.
type Point struct {
	X, Y float64
}

// ColorStop is one stop of a gradient. Offset is in [0, 1].
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// Paint describes how a shape is filled or stroked.
// It is one of Solid, LinearGradient or RadialGradient.
type Paint interface {
	isPaint()
}

// Solid is a flat color.
type Solid struct {
	Color color.NRGBA
}

// LinearGradient interpolates its stops along the line (X0,Y0)-(X1,Y1).
// Coordinates are in the user space active when the shape is drawn.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []ColorStop
}

// RadialGradient interpolates its stops between two concentric circles.
type RadialGradient struct {
	CX, CY float64
	R0, R1 float64
	Stops  []ColorStop
}

func (Solid) isPaint()          {}
func (LinearGradient) isPaint() {}
func (RadialGradient) isPaint() {}

// LineCap selects how open stroke ends are drawn.
type LineCap int

// Line caps.
const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// Glow is a soft halo drawn beneath a stroke or fill.
type Glow struct {
	Color color.NRGBA
	Blur  float64 // halo radius in pixels
}

// Stroke describes an outline.
type Stroke struct {
	Paint Paint
	Width float64
	Cap   LineCap
	Glow  *Glow
}

// Canvas is a persistent 2D raster surface.
//
// The surface is never cleared by the host: whatever a frame paints stays
// until a later frame paints over it. Trail effects rely on this.
//
// Coordinates go through an affine transform stack. Translate, Rotate and
// Scale post-multiply the current transform; Save pushes it and Restore pops
// it. Rotate takes radians.
//
// Thread-safety: a Canvas is painted from a single goroutine. Implementations
// that are also read by a display must synchronise internally.
type Canvas interface {
	// Size returns the surface size in pixels.
	Size() (width, height int)

	Save()
	Restore()
	Translate(dx, dy float64)
	Rotate(radians float64)
	Scale(sx, sy float64)

	FillRect(x, y, w, h float64, p Paint)
	FillCircle(cx, cy, r float64, p Paint)
	StrokeCircle(cx, cy, r float64, s Stroke)
	StrokeLine(x0, y0, x1, y1 float64, s Stroke)
	StrokePolyline(points []Point, closed bool, s Stroke)

	// FillPolygon fills with the non-zero winding rule, so an outer contour
	// followed by a reversed inner contour produces a ring.
	FillPolygon(points []Point, p Paint)

	// Present publishes the painted frame to whoever displays the surface.
	Present()
}
