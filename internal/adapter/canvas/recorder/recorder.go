// Package recorder provides a ports.Canvas that records drawing calls
// instead of rasterizing them. Renderer and render loop tests use it to
// assert on exactly what a frame painted.
package recorder

import (
	"math"
	"sync"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Op names a recorded canvas operation.
type Op string

// Recorded operations.
const (
	OpSave           Op = "save"
	OpRestore        Op = "restore"
	OpTranslate      Op = "translate"
	OpRotate         Op = "rotate"
	OpScale          Op = "scale"
	OpFillRect       Op = "fillRect"
	OpFillCircle     Op = "fillCircle"
	OpStrokeCircle   Op = "strokeCircle"
	OpStrokeLine     Op = "strokeLine"
	OpStrokePolyline Op = "strokePolyline"
	OpFillPolygon    Op = "fillPolygon"
	OpPresent        Op = "present"
)

// IsDraw reports whether the op puts pixels on the surface.
func (o Op) IsDraw() bool {
	switch o {
	case OpFillRect, OpFillCircle, OpStrokeCircle, OpStrokeLine, OpStrokePolyline, OpFillPolygon:
		return true
	}
	return false
}

// Call is one recorded operation.
type Call struct {
	Op     Op
	Args   []float64     // numeric arguments in call order
	Points []ports.Point // polyline and polygon vertices (copied)
	Closed bool
	Paint  ports.Paint // fill paint, or the stroke's paint
	Stroke ports.Stroke
}

// Canvas records calls. It is safe for concurrent use.
type Canvas struct {
	mu       sync.Mutex
	width    int
	height   int
	calls    []Call
	depth    int
	presents int
}

var _ ports.Canvas = (*Canvas)(nil)

// New creates a recorder reporting the given size.
func New(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

// SetSize changes the reported size.
func (c *Canvas) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

// Size implements ports.Canvas.
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Save implements ports.Canvas.
func (c *Canvas) Save() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth++
	c.calls = append(c.calls, Call{Op: OpSave})
}

// Restore implements ports.Canvas.
func (c *Canvas) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth--
	c.calls = append(c.calls, Call{Op: OpRestore})
}

// Translate implements ports.Canvas.
func (c *Canvas) Translate(dx, dy float64) {
	c.record(Call{Op: OpTranslate, Args: []float64{dx, dy}})
}

// Rotate implements ports.Canvas.
func (c *Canvas) Rotate(radians float64) {
	c.record(Call{Op: OpRotate, Args: []float64{radians}})
}

// Scale implements ports.Canvas.
func (c *Canvas) Scale(sx, sy float64) {
	c.record(Call{Op: OpScale, Args: []float64{sx, sy}})
}

// FillRect implements ports.Canvas.
func (c *Canvas) FillRect(x, y, w, h float64, p ports.Paint) {
	c.record(Call{Op: OpFillRect, Args: []float64{x, y, w, h}, Paint: p})
}

// FillCircle implements ports.Canvas.
func (c *Canvas) FillCircle(cx, cy, r float64, p ports.Paint) {
	c.record(Call{Op: OpFillCircle, Args: []float64{cx, cy, r}, Paint: p})
}

// StrokeCircle implements ports.Canvas.
func (c *Canvas) StrokeCircle(cx, cy, r float64, s ports.Stroke) {
	c.record(Call{Op: OpStrokeCircle, Args: []float64{cx, cy, r, s.Width}, Paint: s.Paint, Stroke: s})
}

// StrokeLine implements ports.Canvas.
func (c *Canvas) StrokeLine(x0, y0, x1, y1 float64, s ports.Stroke) {
	c.record(Call{Op: OpStrokeLine, Args: []float64{x0, y0, x1, y1, s.Width}, Paint: s.Paint, Stroke: s})
}

// StrokePolyline implements ports.Canvas.
func (c *Canvas) StrokePolyline(points []ports.Point, closed bool, s ports.Stroke) {
	c.record(Call{Op: OpStrokePolyline, Args: []float64{s.Width}, Points: clonePoints(points), Closed: closed, Paint: s.Paint, Stroke: s})
}

// FillPolygon implements ports.Canvas.
func (c *Canvas) FillPolygon(points []ports.Point, p ports.Paint) {
	c.record(Call{Op: OpFillPolygon, Points: clonePoints(points), Closed: true, Paint: p})
}

// Present implements ports.Canvas.
func (c *Canvas) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presents++
	c.calls = append(c.calls, Call{Op: OpPresent})
}

func (c *Canvas) record(call Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

// Calls returns a copy of every recorded call.
func (c *Canvas) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// DrawCalls returns only the calls that paint pixels.
func (c *Canvas) DrawCalls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.calls {
		if call.Op.IsDraw() {
			out = append(out, call)
		}
	}
	return out
}

// Count returns how many times op was recorded.
func (c *Canvas) Count(op Op) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.calls {
		if call.Op == op {
			n++
		}
	}
	return n
}

// Presents returns how many frames were presented.
func (c *Canvas) Presents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presents
}

// Depth returns the current Save/Restore nesting. Balanced frames leave it at 0.
func (c *Canvas) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depth
}

// ResetTransform clears the Save nesting, as a raster surface drops its
// transform stack.
func (c *Canvas) ResetTransform() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth = 0
}

// Reset forgets all recorded calls.
func (c *Canvas) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
	c.depth = 0
	c.presents = 0
}

// NonFinite reports whether any recorded coordinate, width or gradient
// parameter is NaN or infinite.
func (c *Canvas) NonFinite() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		for _, v := range call.Args {
			if !finite(v) {
				return true
			}
		}
		for _, p := range call.Points {
			if !finite(p.X) || !finite(p.Y) {
				return true
			}
		}
		if !paintFinite(call.Paint) {
			return true
		}
	}
	return false
}

func paintFinite(p ports.Paint) bool {
	switch p := p.(type) {
	case ports.LinearGradient:
		return finite(p.X0) && finite(p.Y0) && finite(p.X1) && finite(p.Y1)
	case ports.RadialGradient:
		return finite(p.CX) && finite(p.CY) && finite(p.R0) && finite(p.R1)
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clonePoints(points []ports.Point) []ports.Point {
	out := make([]ports.Point, len(points))
	copy(out, points)
	return out
}
