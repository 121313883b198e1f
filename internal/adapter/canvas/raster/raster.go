// Package raster implements ports.Canvas on an in-memory RGBA image using
// the rasterx scan converter. The fyne surface widget and the PNG exporter
// both read frames from it.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

const (
	glowLayers    = 4
	miterLimit    = 4
	minCircleSegs = 24
	maxCircleSegs = 360
)

// Surface is a persistent RGBA canvas. Pixels survive between frames until
// painted over, so translucent background fills leave trails.
//
// Thread-safety: painting happens on one goroutine; Snapshot, Resize and
// CopyTo may be called concurrently from a display.
type Surface struct {
	mu      sync.Mutex
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher

	m     rasterx.Matrix2D
	stack []rasterx.Matrix2D

	onPresent func()
	presented uint64
}

var _ ports.Canvas = (*Surface)(nil)

// New creates a surface of the given size, cleared to opaque black.
func New(width, height int) *Surface {
	s := &Surface{m: rasterx.Identity}
	s.resizeLocked(width, height)
	return s
}

// OnPresent registers fn to run after every Present. fn runs on the
// painting goroutine without the surface lock held.
func (s *Surface) OnPresent(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPresent = fn
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize changes the surface size. Existing pixels are kept where they
// overlap the new bounds; new area is black.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	s.resizeLocked(width, height)
}

func (s *Surface) resizeLocked(width, height int) {
	width, height = max(0, width), max(0, height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	if s.img != nil {
		draw.Draw(img, img.Bounds(), s.img, image.Point{}, draw.Src)
	}
	s.img = img
	s.scanner = rasterx.NewScannerGV(width, height, img, img.Bounds())
	s.filler = rasterx.NewFiller(width, height, s.scanner)
	s.filler.SetWinding(true)
	s.dasher = rasterx.NewDasher(width, height, s.scanner)
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// CopyTo copies the current pixels into dst, which is reallocated when its
// bounds differ. It returns dst.
func (s *Surface) CopyTo(dst *image.RGBA) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dst == nil || dst.Bounds() != s.img.Bounds() {
		dst = image.NewRGBA(s.img.Bounds())
	}
	copy(dst.Pix, s.img.Pix)
	return dst
}

// Presented returns how many frames were presented.
func (s *Surface) Presented() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// Save pushes the current transform.
func (s *Surface) Save() {
	s.mu.Lock()
	s.stack = append(s.stack, s.m)
	s.mu.Unlock()
}

// Restore pops the last saved transform. Unbalanced calls are ignored.
func (s *Surface) Restore() {
	s.mu.Lock()
	if n := len(s.stack); n > 0 {
		s.m = s.stack[n-1]
		s.stack = s.stack[:n-1]
	}
	s.mu.Unlock()
}

// ResetTransform drops the transform stack and returns to identity. The
// render loop calls it after a frame that did not finish.
func (s *Surface) ResetTransform() {
	s.mu.Lock()
	s.m = rasterx.Identity
	s.stack = s.stack[:0]
	s.mu.Unlock()
}

// Translate moves the origin.
func (s *Surface) Translate(dx, dy float64) {
	if !finite(dx, dy) {
		return
	}
	s.mu.Lock()
	s.m = s.m.Translate(dx, dy)
	s.mu.Unlock()
}

// Rotate turns the axes clockwise (y down) by radians.
func (s *Surface) Rotate(radians float64) {
	if !finite(radians) {
		return
	}
	s.mu.Lock()
	s.m = s.m.Rotate(radians)
	s.mu.Unlock()
}

// Scale stretches the axes.
func (s *Surface) Scale(sx, sy float64) {
	if !finite(sx, sy) {
		return
	}
	s.mu.Lock()
	s.m = s.m.Scale(sx, sy)
	s.mu.Unlock()
}

// FillRect fills an axis-aligned rectangle in user space.
func (s *Surface) FillRect(x, y, w, h float64, p ports.Paint) {
	if !finite(x, y, w, h) || w == 0 || h == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if solid, ok := p.(ports.Solid); ok && s.translationOnly() {
		r := image.Rect(
			int(math.Round(x+s.m.E)), int(math.Round(y+s.m.F)),
			int(math.Round(x+w+s.m.E)), int(math.Round(y+h+s.m.F)),
		).Canon().Intersect(s.img.Bounds())
		draw.Draw(s.img, r, image.NewUniform(solid.Color), image.Point{}, draw.Over)
		return
	}

	s.fillLocked([]ports.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, p)
}

// FillCircle fills a disk. Non-uniform transforms turn it into an ellipse.
func (s *Surface) FillCircle(cx, cy, r float64, p ports.Paint) {
	if !finite(cx, cy, r) || r <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillLocked(s.circlePoints(cx, cy, r), p)
}

// StrokeCircle outlines a circle.
func (s *Surface) StrokeCircle(cx, cy, r float64, st ports.Stroke) {
	if !finite(cx, cy, r) || r <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokeLocked(s.circlePoints(cx, cy, r), true, st)
}

// StrokeLine draws a single segment.
func (s *Surface) StrokeLine(x0, y0, x1, y1 float64, st ports.Stroke) {
	if !finite(x0, y0, x1, y1) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokeLocked([]ports.Point{{X: x0, Y: y0}, {X: x1, Y: y1}}, false, st)
}

// StrokePolyline draws connected segments, closing the loop when closed.
func (s *Surface) StrokePolyline(points []ports.Point, closed bool, st ports.Stroke) {
	if len(points) < 2 || !finitePoints(points) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokeLocked(points, closed, st)
}

// FillPolygon fills a closed path with the non-zero winding rule.
func (s *Surface) FillPolygon(points []ports.Point, p ports.Paint) {
	if len(points) < 3 || !finitePoints(points) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fillLocked(points, p)
}

// Present counts the frame and notifies the display.
func (s *Surface) Present() {
	s.mu.Lock()
	s.presented++
	fn := s.onPresent
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Surface) fillLocked(points []ports.Point, p ports.Paint) {
	if s.img.Bounds().Empty() {
		return
	}
	f := s.filler
	f.Clear()
	f.SetColor(s.source(p))
	f.Start(s.fixedPoint(points[0]))
	for _, pt := range points[1:] {
		f.Line(s.fixedPoint(pt))
	}
	f.Stop(true)
	f.Draw()
	f.Clear()
}

func (s *Surface) strokeLocked(points []ports.Point, closed bool, st ports.Stroke) {
	if s.img.Bounds().Empty() || st.Width <= 0 || !finite(st.Width) {
		return
	}
	width := st.Width * s.lineScale()

	if g := st.Glow; g != nil && g.Blur > 0 && g.Color.A > 0 {
		for i := glowLayers; i >= 1; i-- {
			spread := g.Blur * float64(i) / glowLayers
			halo := g.Color
			halo.A = uint8(float64(g.Color.A) / (glowLayers + 1) * (1 - float64(i-1)/glowLayers))
			if halo.A == 0 {
				continue
			}
			s.strokePath(points, closed, width+spread*2, ports.CapRound, halo)
		}
	}
	s.strokePath(points, closed, width, st.Cap, s.source(st.Paint))
}

func (s *Surface) strokePath(points []ports.Point, closed bool, width float64, lineCap ports.LineCap, src interface{}) {
	d := s.dasher
	d.Clear()
	capFn := capFunc(lineCap)
	d.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(miterLimit*64), capFn, capFn, rasterx.RoundGap, rasterx.Round, nil, 0)
	d.SetColor(src)
	d.Start(s.fixedPoint(points[0]))
	for _, pt := range points[1:] {
		d.Line(s.fixedPoint(pt))
	}
	d.Stop(closed)
	d.Draw()
	d.Clear()
}

func capFunc(c ports.LineCap) rasterx.CapFunc {
	switch c {
	case ports.CapRound:
		return rasterx.RoundCap
	case ports.CapSquare:
		return rasterx.SquareCap
	default:
		return rasterx.ButtCap
	}
}

// circlePoints approximates a circle in user space; the segment count
// follows its size on screen.
func (s *Surface) circlePoints(cx, cy, r float64) []ports.Point {
	segs := int(math.Ceil(r * s.lineScale() / 2))
	segs = min(maxCircleSegs, max(minCircleSegs, segs))
	pts := make([]ports.Point, segs)
	for i := range pts {
		a := float64(i) / float64(segs) * 2 * math.Pi
		pts[i] = ports.Point{X: cx + math.Cos(a)*r, Y: cy + math.Sin(a)*r}
	}
	return pts
}

func (s *Surface) fixedPoint(p ports.Point) fixed.Point26_6 {
	x, y := s.m.Transform(p.X, p.Y)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

// lineScale is the geometric mean scale of the current transform.
func (s *Surface) lineScale() float64 {
	det := s.m.A*s.m.D - s.m.B*s.m.C
	return math.Sqrt(math.Abs(det))
}

func (s *Surface) translationOnly() bool {
	return s.m.A == 1 && s.m.B == 0 && s.m.C == 0 && s.m.D == 1
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finitePoints(pts []ports.Point) bool {
	for _, p := range pts {
		if !finite(p.X, p.Y) {
			return false
		}
	}
	return true
}
