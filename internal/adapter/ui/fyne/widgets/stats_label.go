package widgets

import (
	"fmt"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

// Ensure StatsLabel implements DoubleTappable interface
var _ fyneapp.DoubleTappable = (*StatsLabel)(nil)

// StatsLabel is the "stats for nerds" overlay. It is a monospaced label
// that hides itself when double-tapped.
type StatsLabel struct {
	widget.Label
	doubleTapped func()
}

// NewStatsLabel creates a hidden stats label. doubleTapped may be nil.
func NewStatsLabel(doubleTapped func()) *StatsLabel {
	label := &StatsLabel{doubleTapped: doubleTapped}
	label.TextStyle = fyneapp.TextStyle{Monospace: true}
	label.ExtendBaseWidget(label)
	label.Hide()
	return label
}

// DoubleTapped implements the fyne.DoubleTappable interface.
func (l *StatsLabel) DoubleTapped(_ *fyneapp.PointEvent) {
	if l.doubleTapped != nil {
		l.doubleTapped()
	}
}

// SetStats replaces the label text with the formatted stats.
func (l *StatsLabel) SetStats(stats domain.FrameStats) {
	l.SetText(FormatStats(stats))
}

// FormatStats renders frame statistics as the overlay text.
func FormatStats(stats domain.FrameStats) string {
	smoothing := "off"
	if stats.Smoothing {
		smoothing = "on"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FPS:       %d\n", stats.FPS)
	fmt.Fprintf(&b, "Shape:     %s\n", stats.Shape)
	fmt.Fprintf(&b, "FFT size:  %d\n", stats.FFTSize)
	fmt.Fprintf(&b, "Avg:       %d\n", stats.AvgMagnitude)
	fmt.Fprintf(&b, "Peak:      %d\n", stats.PeakMagnitude)
	fmt.Fprintf(&b, "Bass:      %d\n", stats.BassLevel)
	fmt.Fprintf(&b, "Smoothing: %s", smoothing)
	if stats.Skipped > 0 || stats.Failed > 0 {
		fmt.Fprintf(&b, "\nSkipped:   %d\nFailed:    %d", stats.Skipped, stats.Failed)
	}
	return b.String()
}
