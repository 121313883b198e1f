package visualizer

import (
	"math"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

const (
	waveSignalFloor     = 1.0 // mean |sample-128| above which the waveform counts as sound
	waveDecayFrames     = 3   // frames between evictions once ripples stop spawning
	waveMainRadius      = 0.6 // of the half diagonal
	waveMaxRadius       = 1.2 // of the half diagonal, before bass scaling
	waveAmplitudeFactor = 5.0
	waveSpeakerSize     = 0.08 // of the max radius
	waveSpeakerSquash   = 0.5
	waveHighlightOffset = -1.5
)

// Waveform draws expanding ripple contours built from past waveform
// snapshots, seen through a tilted "3D" transform, with a speaker emblem
// at the center.
//
// History grows while bass is above the threshold and drains by one
// snapshot every third frame once it drops.
type Waveform struct {
	history    [][]byte // oldest first
	fadeFrames int

	points []ports.Point
	band   []ports.Point
}

var _ Renderer = (*Waveform)(nil)

// NewWaveform creates a ripple renderer with empty history.
func NewWaveform() *Waveform {
	return &Waveform{}
}

// Shape returns domain.ShapeWaveform.
func (v *Waveform) Shape() domain.Shape {
	return domain.ShapeWaveform
}

// Reset drops the ripple history.
func (v *Waveform) Reset() {
	v.history = nil
	v.fadeFrames = 0
}

// HistoryLen returns the number of stored snapshots.
func (v *Waveform) HistoryLen() int {
	return len(v.history)
}

// Snapshot returns a copy of snapshot i (0 = oldest).
func (v *Waveform) Snapshot(i int) []byte {
	if i < 0 || i >= len(v.history) {
		return nil
	}
	out := make([]byte, len(v.history[i]))
	copy(out, v.history[i])
	return out
}

// Render paints one frame.
func (v *Waveform) Render(c ports.Canvas, frame Frame, cfg domain.Config) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}
	wc := cfg.WaveformOrDefault()
	td := frame.TimeDomain
	freq := frame.Frequency

	hasSignal := SignalEnergy(td) > waveSignalFloor
	fillBackground(c, cfg.FadeAmount)

	bass := BassLevel(freq)
	v.advance(td, bass, hasSignal, wc)

	cx, cy := float64(w)/2, float64(h)/2
	diag := math.Hypot(cx, cy)
	mainRadius := diag * waveMainRadius
	maxRadius := diag * waveMaxRadius * (1 + bass*wc.SizeScaling)
	angle := wc.ViewAngle * math.Pi / 180

	c.Save()
	c.Translate(cx, cy)
	c.Rotate(-angle)
	c.Scale(TiltScale(wc.CameraTilt), wc.DepthCompression)
	c.Translate(-cx, -cy)
	v.drawRipples(c, cfg.ColorScheme, wc, freq, cx, cy, mainRadius, maxRadius)
	c.Restore()

	c.Save()
	c.Translate(cx, cy)
	c.Rotate(-angle)
	c.Scale(1, waveSpeakerSquash)
	c.Translate(-cx, -cy)
	drawSpeaker(c, wc.SpeakerPattern, cfg.ColorScheme.Primary, wc.LineWidth, cx, cy, maxRadius*waveSpeakerSize*(1+bass*0.5), bass)
	c.Restore()
}

// TiltScale maps camera tilt (0.1..1) to a horizontal scale (about 0.35..1.25).
func TiltScale(tilt float64) float64 {
	return 0.5 + (tilt-0.5)*1.5
}

// RippleProgress is 1 for the oldest snapshot and 0 for the newest.
func RippleProgress(index, count int) float64 {
	return 1 - float64(index)/float64(max(1, count-1))
}

// RippleAlpha is the stroke alpha of a ripple at the given progress and
// radius. Ripples past the main radius fade out quadratically toward the
// max radius.
func RippleAlpha(progress, radius, mainRadius, maxRadius float64) float64 {
	brightness := 0.4 + progress*0.6
	alpha := 0.9 * progress * brightness
	if radius > mainRadius && maxRadius > mainRadius {
		beyond := Clamp01((radius - mainRadius) / (maxRadius - mainRadius))
		alpha *= (1 - beyond) * (1 - beyond)
	}
	return Clamp01(alpha)
}

// advance updates history for this frame: spawn on bass, otherwise decay.
func (v *Waveform) advance(td []byte, bass float64, hasSignal bool, wc domain.WaveformConfig) {
	lineCount := max(1, wc.LineCount)
	linePoints := max(1, wc.LinePoints)

	switch {
	case bass > wc.BassThreshold && hasSignal && len(td) > 0:
		snapshot := make([]byte, linePoints)
		for i := range snapshot {
			idx := int(math.Floor(float64(i) / float64(linePoints) * float64(len(td))))
			snapshot[i] = td[clampIndex(idx, len(td))]
		}
		v.history = append(v.history, snapshot)
		v.fadeFrames = 0
	case len(v.history) > 0:
		v.fadeFrames++
		if v.fadeFrames >= waveDecayFrames {
			v.evictOldest()
			v.fadeFrames = 0
		}
	}

	for len(v.history) > lineCount {
		v.evictOldest()
	}
}

func (v *Waveform) evictOldest() {
	v.history[0] = nil
	v.history = v.history[1:]
	if len(v.history) == 0 {
		v.history = nil
	}
}

func (v *Waveform) drawRipples(c ports.Canvas, scheme domain.ColorScheme, wc domain.WaveformConfig, freq []byte, cx, cy, mainRadius, maxRadius float64) {
	count := len(v.history)
	if count == 0 {
		return
	}

	var bandColor domain.RGB
	if wc.ColorMode == domain.ColorModeFrequency {
		bass, mids, treble := BandLevels(freq)
		bandColor = domain.RGB{R: Channel(bass * 255), G: Channel(mids * 255), B: Channel(treble * 255)}
	}
	spread := wc.AmplitudeScale * wc.LineSpacing * waveAmplitudeFactor

	for idx, snapshot := range v.history {
		progress := RippleProgress(idx, count)
		baseRadius := progress * maxRadius * wc.RippleSpeed
		alpha := RippleAlpha(progress, baseRadius, mainRadius, maxRadius)
		if alpha <= 0 {
			continue
		}
		thickness := wc.LineWidth * (1 + progress*3)
		brightness := 0.4 + progress*0.6

		var col domain.RGB
		switch wc.ColorMode {
		case domain.ColorModeSolid:
			col = scheme.Primary
		case domain.ColorModeFrequency:
			col = bandColor
		default:
			col = Lerp(scheme.Primary, scheme.Secondary, 1-progress)
		}

		if progress > 0.3 && idx%2 == 0 {
			shift := progress * 4
			c.StrokePolyline(v.contour(snapshot, cx+shift, cy+shift, baseRadius, spread), true, ports.Stroke{
				Paint: solid(black, alpha*0.4*progress),
				Width: thickness * 1.2,
				Cap:   ports.CapRound,
			})
		}

		c.StrokePolyline(v.contour(snapshot, cx, cy, baseRadius, spread), true, ports.Stroke{
			Paint: solid(Scale(col, brightness), alpha),
			Width: thickness,
			Cap:   ports.CapRound,
		})

		if progress > 0.5 && idx%3 == 0 {
			c.StrokePolyline(v.contour(snapshot, cx+waveHighlightOffset, cy+waveHighlightOffset, baseRadius, spread), true, ports.Stroke{
				Paint: solid(white, alpha*progress*0.4),
				Width: thickness * 0.3,
				Cap:   ports.CapRound,
			})
		}

		if wc.FillContours && idx < count-1 {
			nextRadius := RippleProgress(idx+1, count) * maxRadius * wc.RippleSpeed
			c.FillPolygon(v.contourBand(snapshot, v.history[idx+1], cx, cy, baseRadius, nextRadius, spread), solid(col, alpha*0.1))
		}
	}
}

// contour returns the closed ripple outline for a snapshot. The returned
// slice is reused by the next call.
func (v *Waveform) contour(snapshot []byte, cx, cy, baseRadius, spread float64) []ports.Point {
	v.points = appendContour(v.points[:0], snapshot, cx, cy, baseRadius, spread, false)
	return v.points
}

// contourBand returns the closed outer contour followed by the closed,
// reversed inner contour. Both loops start at angle 0 so the bridge edges
// cancel and the path fills as a ring under the non-zero rule.
func (v *Waveform) contourBand(outer, inner []byte, cx, cy, outerRadius, innerRadius, spread float64) []ports.Point {
	v.band = appendContour(v.band[:0], outer, cx, cy, outerRadius, spread, false)
	v.band = append(v.band, v.band[0])
	innerStart := len(v.band)
	v.band = appendContour(v.band, inner, cx, cy, innerRadius, spread, true)
	v.band = append(v.band, v.band[innerStart])
	return v.band
}

func appendContour(dst []ports.Point, snapshot []byte, cx, cy, baseRadius, spread float64, reverse bool) []ports.Point {
	n := len(snapshot)
	for k := 0; k < n; k++ {
		i := k
		if reverse {
			i = (n - k) % n
		}
		angle := float64(i) / float64(n) * 2 * math.Pi
		r := baseRadius + Amplitude(snapshot[i])*spread
		dst = append(dst, ports.Point{X: cx + math.Cos(angle)*r, Y: cy + math.Sin(angle)*r})
	}
	return dst
}
