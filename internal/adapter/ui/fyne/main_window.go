package fyne

import (
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/raster"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
	"github.com/tejashwikalptaru/vizwave/res"
)

// WindowConfig sizes and titles the main window.
type WindowConfig struct {
	Title      string
	Width      float32
	Height     float32
	Extensions []string // audio file extensions offered by the open dialog
}

// MainWindow is the main UI window implementing the ports.UI interface.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - Keys and menu items are forwarded to the Presenter
//
// Every ports.UI method may be called from any goroutine; widget updates are
// marshalled onto the UI thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger
	config WindowConfig

	// UI components
	surface    *widgets.SurfaceView
	stats      *widgets.StatsLabel
	sourceInfo *widget.Label
	status     *widget.Label

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window showing surface.
func NewMainWindow(app fyneapp.App, logger *slog.Logger, surface *raster.Surface, config WindowConfig) *MainWindow {
	w := &MainWindow{
		app:    app,
		logger: logger,
		config: config,
	}

	// Create a window
	w.window = app.NewWindow(config.Title)

	// Build UI
	w.buildUI(surface)

	// Set window properties
	w.window.Resize(fyneapp.NewSize(config.Width, config.Height))
	w.window.SetPadded(false)

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI(surface *raster.Surface) {
	w.surface = widgets.NewSurfaceView(surface)

	w.stats = widgets.NewStatsLabel(func() {
		if w.presenter != nil {
			w.presenter.OnToggleStats()
		}
	})

	// Source info label
	w.sourceInfo = widget.NewLabel("No source")
	w.sourceInfo.Truncation = fyneapp.TextTruncateEllipsis
	w.sourceInfo.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}

	w.status = widget.NewLabel("")
	w.status.Alignment = fyneapp.TextAlignTrailing

	shade := canvas.NewRectangle(color.NRGBA{A: 160})
	statusBar := container.NewStack(shade, container.NewBorder(nil, nil, w.sourceInfo, w.status))

	overlay := container.NewBorder(container.NewHBox(w.stats), statusBar, nil, nil)
	w.window.SetContent(container.NewStack(w.surface, overlay))

	// Menu
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	openFile := fyneapp.NewMenuItem("Open", w.handleOpenFile)
	stop := fyneapp.NewMenuItem("Stop", func() {
		if w.presenter != nil {
			w.presenter.OnStopSource()
		}
	})
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})
	fileMenu := fyneapp.NewMenu("File", openFile, stop, fyneapp.NewMenuItemSeparator(), exitMenu)

	keys := fyneapp.NewMenuItem("Keyboard", func() {
		dialog.ShowCustom("Keyboard", "Close", widget.NewRichTextFromMarkdown(res.KeysContent), w.window)
	})
	about := fyneapp.NewMenuItem("About", func() {
		dialog.ShowCustom("About "+w.config.Title, "Close", widget.NewRichTextFromMarkdown(res.AboutContent), w.window)
	})
	helpMenu := fyneapp.NewMenu("Help", keys, about)

	return []*fyneapp.Menu{fileMenu, helpMenu}
}

// handleOpenFile handles the "Open" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	// Errors are reported through the source error event
	d := NewFileDialog(w.window, func(filePath string) {
		_ = w.presenter.OnFileOpened(filePath)
	}, w.config.Extensions, w.logger)
	d.Show()
}

// keyCommands maps plain key presses to presenter commands.
func keyCommands(p *Presenter, openFile func()) map[fyneapp.KeyName]func() {
	return map[fyneapp.KeyName]func(){
		fyneapp.KeySpace:  p.OnNextShape,
		fyneapp.KeyC:      p.OnNextPreset,
		fyneapp.KeyS:      p.OnToggleSmoothing,
		fyneapp.KeyI:      p.OnToggleStats,
		fyneapp.KeyR:      p.OnResetDefaults,
		fyneapp.KeyEscape: p.OnStopSource,
		fyneapp.KeyUp:     p.OnFadeUp,
		fyneapp.KeyDown:   p.OnFadeDown,
		fyneapp.KeyO:      openFile,
	}
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	commands := keyCommands(w.presenter, w.handleOpenFile)
	w.window.Canvas().SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if cmd, ok := commands[ev.Name]; ok {
			cmd()
		}
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyO,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.handleOpenFile()
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyQ,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		w.window.Close()
	})
}

// Run shows the window and runs the application. Blocks until the window
// closes.
func (w *MainWindow) Run() {
	w.window.ShowAndRun()
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		fyneapp.Do(w.window.Close)
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// ports.UI implementation

// SetSourceInfo updates the source label.
func (w *MainWindow) SetSourceInfo(info domain.SourceInfo) {
	text := info.DisplayName()
	if info.Kind == domain.SourceFile && info.Format != "" {
		text = fmt.Sprintf("%s [%s]", text, info.Format)
	}
	fyneapp.Do(func() {
		w.sourceInfo.SetText(text)
	})
}

// SetStatus updates the status label.
func (w *MainWindow) SetStatus(message string) {
	fyneapp.Do(func() {
		w.status.SetText(message)
	})
}

// SetStats updates the stats overlay.
func (w *MainWindow) SetStats(stats domain.FrameStats) {
	fyneapp.Do(func() {
		w.stats.SetStats(stats)
	})
}

// SetStatsVisible shows or hides the stats overlay.
func (w *MainWindow) SetStatsVisible(visible bool) {
	fyneapp.Do(func() {
		if visible {
			w.stats.Show()
		} else {
			w.stats.Hide()
		}
	})
}

// ShowError displays an error dialog.
func (w *MainWindow) ShowError(title, message string) {
	fyneapp.Do(func() {
		dialog.ShowInformation(title, message, w.window)
	})
}

// Verify ports.UI implementation
var _ ports.UI = (*MainWindow)(nil)
