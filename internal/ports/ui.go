// Package ports define the UI interface for view abstraction.
// This interface allows the presenter to update the UI without depending on Fyne directly.
package ports

import (
	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

// UI is the interface for the window around the visualization surface.
//
// The presenter receives events from the event bus and calls these methods.
//
// Thread-safety: Implementations marshal calls onto the UI thread themselves,
// so the presenter may call them from any goroutine.
type UI interface {
	// SetSourceInfo shows what is currently being visualized.
	SetSourceInfo(info domain.SourceInfo)

	// SetStatus shows a one line status message (shape, preset, hints).
	SetStatus(message string)

	// SetStats updates the stats overlay.
	SetStats(stats domain.FrameStats)

	// SetStatsVisible shows or hides the stats overlay.
	SetStatsVisible(visible bool)

	// ShowError displays an error to the user.
	ShowError(title, message string)

	// Run starts the UI event loop. Blocks until the window closes.
	Run()

	// Close closes the window.
	Close()
}
