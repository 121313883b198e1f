// Package widgets provides custom Fyne widgets for the vizwave window.
package widgets

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/raster"
)

// SurfaceView shows a raster.Surface and keeps it sized to the widget.
//
// The render loop paints into the surface on its own goroutine. Every
// Present schedules a refresh on the UI thread, and the raster generator
// copies the latest presented frame out under the surface lock.
type SurfaceView struct {
	widget.BaseWidget

	surface *raster.Surface
	raster  *canvas.Raster

	mu    sync.Mutex
	frame *image.RGBA
}

// NewSurfaceView creates a widget showing surface.
func NewSurfaceView(surface *raster.Surface) *SurfaceView {
	v := &SurfaceView{surface: surface}
	v.raster = canvas.NewRaster(v.generate)
	v.raster.ScaleMode = canvas.ImageScaleFastest
	v.ExtendBaseWidget(v)

	surface.OnPresent(func() {
		fyne.Do(v.raster.Refresh)
	})
	return v
}

// Surface returns the surface being displayed.
func (v *SurfaceView) Surface() *raster.Surface {
	return v.surface
}

// CreateRenderer implements fyne.Widget.
func (v *SurfaceView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns a minimal size so the surface fills the window.
func (v *SurfaceView) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// generate runs on the UI thread with the size in device pixels.
func (v *SurfaceView) generate(w, h int) image.Image {
	v.surface.Resize(w, h)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = v.surface.CopyTo(v.frame)
	return v.frame
}
