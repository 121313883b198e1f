package visualizer

import (
	"math"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

const (
	barsMaxPoles     = 12
	barsSpread       = 2.1  // offsets span [-1.05, 1.05] so neighbouring poles overlap slightly
	barsWidthOverlap = 1.05 // widen bars a little to hide seams
	barsMinWidth     = 2.0
	barsMinLength    = 0.05 // fraction of the anchor-center distance drawn at zero intensity
	barsPulseBoost   = 0.2
)

// anchorKind names the place a pole's bars are mounted.
type anchorKind int

const (
	anchorTopLeft anchorKind = iota
	anchorTop
	anchorTopRight
	anchorRight
	anchorBottomRight
	anchorBottom
	anchorBottomLeft
	anchorLeft
	anchorDiagTopLeft
	anchorDiagTopRight
	anchorDiagBottomRight
	anchorDiagBottomLeft
)

// Pole layouts by pole count:
//
//	1..4   whole edges: bottom, top, left, right
//	5..8   the ring of corners and edge midpoints, clockwise from the top-left corner
//	9..12  that ring plus the four diagonals cutting the corners
var (
	edgeAnchors = []anchorKind{anchorBottom, anchorTop, anchorLeft, anchorRight}
	ringAnchors = []anchorKind{
		anchorTopLeft, anchorTop, anchorTopRight, anchorRight,
		anchorBottomRight, anchorBottom, anchorBottomLeft, anchorLeft,
		anchorDiagTopLeft, anchorDiagTopRight, anchorDiagBottomRight, anchorDiagBottomLeft,
	}
)

// poleAnchors returns the anchors used for a pole count, clamped to 1..12.
func poleAnchors(poles int) []anchorKind {
	poles = min(max(1, poles), barsMaxPoles)
	if poles <= len(edgeAnchors) {
		return edgeAnchors[:poles]
	}
	return ringAnchors[:poles]
}

// anchorLine is the line a pole's bars are spread along: bar positions are
// base + offset*halfLen*dir for offsets in [-1.05, 1.05].
type anchorLine struct {
	baseX, baseY float64
	dirX, dirY   float64
	halfLen      float64
}

func (a anchorLine) at(offset float64) (x, y float64) {
	return a.baseX + offset*a.halfLen*a.dirX, a.baseY + offset*a.halfLen*a.dirY
}

func anchorGeometry(kind anchorKind, w, h float64) anchorLine {
	cx, cy := w/2, h/2
	diag := math.Hypot(cx, cy)
	switch kind {
	case anchorTopLeft:
		return anchorLine{0, 0, 1, 0, cx}
	case anchorTop:
		return anchorLine{cx, 0, 1, 0, cx}
	case anchorTopRight:
		return anchorLine{w, 0, 0, 1, cy}
	case anchorRight:
		return anchorLine{w, cy, 0, 1, cy}
	case anchorBottomRight:
		return anchorLine{w, h, -1, 0, cx}
	case anchorBottom:
		return anchorLine{cx, h, -1, 0, cx}
	case anchorBottomLeft:
		return anchorLine{0, h, 0, -1, cy}
	case anchorLeft:
		return anchorLine{0, cy, 0, -1, cy}
	}

	// Diagonals run between the midpoints of the two edges meeting at a corner.
	if diag == 0 {
		return anchorLine{cx, cy, 1, 0, 0}
	}
	ux, uy := cx/diag, cy/diag
	switch kind {
	case anchorDiagTopLeft:
		return anchorLine{cx / 2, cy / 2, ux, -uy, diag / 2}
	case anchorDiagTopRight:
		return anchorLine{cx * 1.5, cy / 2, ux, uy, diag / 2}
	case anchorDiagBottomRight:
		return anchorLine{cx * 1.5, cy * 1.5, -ux, uy, diag / 2}
	default:
		return anchorLine{cx / 2, cy * 1.5, -ux, -uy, diag / 2}
	}
}

// Bars draws bars from screen edges and corners toward the center.
// It keeps no state between frames.
type Bars struct{}

var _ Renderer = (*Bars)(nil)

// NewBars creates an edge/bars renderer.
func NewBars() *Bars {
	return &Bars{}
}

// Shape returns domain.ShapeBars.
func (v *Bars) Shape() domain.Shape {
	return domain.ShapeBars
}

// Reset is a no-op; the bars renderer is stateless.
func (v *Bars) Reset() {}

// Render paints one frame.
func (v *Bars) Render(c ports.Canvas, frame Frame, cfg domain.Config) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}
	bc := cfg.BarsOrDefault()
	freq := frame.Frequency

	fillBackground(c, cfg.FadeAmount)

	n := min(len(freq), max(1, bc.BarCount))
	if n == 0 {
		return
	}

	fw, fh := float64(w), float64(h)
	cx, cy := fw/2, fh/2
	bass := BassLevel(freq)
	boost := 1.0
	if bc.ReactiveFade {
		boost = 1 + MeanLevel(freq)
	}
	lengthScale := 1.0
	if bc.BassPulse {
		lengthScale = 1 + bass*barsPulseBoost
	}
	scheme := cfg.ColorScheme
	var blend *BlendTable
	if !bc.Gradient {
		blend = NewBlendTable(scheme.Primary, scheme.Secondary)
	}

	for _, kind := range poleAnchors(bc.Poles) {
		line := anchorGeometry(kind, fw, fh)
		width := BarWidth(line.halfLen, n)

		for i := 0; i < n; i++ {
			idx := BarBinIndex(i, n, len(freq), bc.FrequencyRange, bc.MirrorMode)
			intensity := SampleBin(freq, idx, cfg.Smoothing)
			if !BarVisible(intensity, bc.CullThreshold) {
				continue
			}

			x, y := line.at(BarOffset(i, n))
			angle := math.Atan2(cy-y, cx-x)
			length := BarLength(math.Hypot(cx-x, cy-y), intensity, bc.BarLength) * lengthScale

			var paint ports.Paint
			if bc.Gradient {
				paint = ports.LinearGradient{
					X0: 0, Y0: 0, X1: length, Y1: 0,
					Stops: []ports.ColorStop{
						stop(0, scheme.Primary, intensity*0.6*boost),
						stop(1, scheme.Secondary, intensity*0.9*boost),
					},
				}
			} else {
				paint = ports.Solid{Color: ToNRGBA(blend.At(intensity), intensity*0.75*boost)}
			}

			c.Save()
			c.Translate(x, y)
			c.Rotate(angle)
			c.FillRect(0, -width/2, length, width, paint)
			c.Restore()
		}
	}
}

// BarOffset maps bar i of n to a symmetric offset in [-1.05, 1.05].
// A single bar sits at offset 0.
func BarOffset(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return (float64(i)/float64(n-1) - 0.5) * barsSpread
}

// BarBinIndex picks the frequency bin for bar i of n. Bass sits at the
// middle of the pole and treble at its ends; mirror mode swaps that. The
// index is confined to the configured sub-band of the bins.
func BarBinIndex(i, n, bins int, band domain.FrequencyRange, mirror bool) int {
	if bins <= 0 {
		return 0
	}
	lo, hi := band.Bounds()
	start := int(math.Floor(lo * float64(bins)))
	end := max(start+1, int(math.Floor(hi*float64(bins))))

	rel := 0.0
	if n > 1 {
		rel = math.Abs(float64(i)-float64(n)/2) * 2 / float64(n)
	}
	if mirror {
		rel = 1 - rel
	}
	idx := start + int(math.Floor(Clamp01(rel)*float64(end-start)))
	return clampIndex(min(idx, end-1), bins)
}

// BarVisible reports whether a bar is bright enough to be worth drawing.
func BarVisible(intensity, threshold float64) bool {
	return intensity >= threshold && intensity > 0
}

// BarLength grows from 5% of the distance to the center at zero intensity
// up to barLength of it at full intensity.
func BarLength(distance, intensity, barLength float64) float64 {
	lo := distance * barsMinLength
	hi := distance * math.Max(barLength, barsMinLength)
	return lo + Clamp01(intensity)*(hi-lo)
}

// BarWidth divides the pole's half length between n bars with a small
// overlap, never going below 2 pixels.
func BarWidth(halfLen float64, n int) float64 {
	return math.Max(barsMinWidth, halfLen/float64(max(1, n))*barsWidthOverlap)
}
