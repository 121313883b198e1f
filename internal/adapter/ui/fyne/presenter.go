// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
	"github.com/tejashwikalptaru/vizwave/internal/service"
	"github.com/tejashwikalptaru/vizwave/internal/visualizer"
)

// fadeStep is how much one fade key press changes the trail fade.
const fadeStep = 0.05

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to UI updates
// - Translate keyboard and menu commands to service method calls
// - Maintain presentation state (stats overlay visibility)
//
// Thread-safety: All operations are thread-safe via sync.RWMutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	configService *service.ConfigService
	sourceService *service.SourceService
	renderLoop    *service.RenderLoop

	eventBus ports.EventBus

	// UI view
	view ports.UI

	// Presentation state
	statsVisible  bool
	subscriptions []domain.SubscriptionID

	// Concurrency control
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter.
func NewPresenter(
	logger *slog.Logger,
	configService *service.ConfigService,
	sourceService *service.SourceService,
	renderLoop *service.RenderLoop,
	eventBus ports.EventBus,
	view ports.UI,
) *Presenter {
	p := &Presenter{
		logger:        logger,
		configService: configService,
		sourceService: sourceService,
		renderLoop:    renderLoop,
		eventBus:      eventBus,
		view:          view,
	}

	// Subscribe to events
	p.subscribeToEvents()

	// Sync UI with current state
	p.syncInitialState()

	return p
}

// subscribeToEvents subscribes to all relevant events from the event bus.
func (p *Presenter) subscribeToEvents() {
	subscriptions := map[domain.EventType]domain.EventHandler{
		// Source events
		domain.EventSourceOpened: p.onSourceOpened,
		domain.EventSourceClosed: p.onSourceClosed,
		domain.EventSourceError:  p.onSourceError,

		// Render loop events
		domain.EventShapeChanged: p.onShapeChanged,
		domain.EventFrameStats:   p.onFrameStats,
		domain.EventRenderError:  p.onRenderError,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, handler := range subscriptions {
		p.subscriptions = append(p.subscriptions, p.eventBus.Subscribe(eventType, handler))
	}
}

// syncInitialState synchronizes the UI with the current application state.
func (p *Presenter) syncInitialState() {
	cfg := p.configService.Config()
	p.view.SetStatus(fmt.Sprintf("%s | %s", ShapeName(cfg.Shape), cfg.ColorScheme.Name))
	p.view.SetStatsVisible(false)

	if info, ok := p.sourceService.Current(); ok {
		p.view.SetSourceInfo(info)
	}
}

// ShapeName returns the display name of a shape.
func ShapeName(shape domain.Shape) string {
	for _, t := range visualizer.GetTypes() {
		if t.Shape == shape {
			return t.Name
		}
	}
	return string(shape)
}

// Event handlers

func (p *Presenter) onSourceOpened(event domain.Event) {
	e, ok := event.(domain.SourceOpenedEvent)
	if !ok {
		return
	}
	p.view.SetSourceInfo(e.Info)
}

func (p *Presenter) onSourceClosed(event domain.Event) {
	e, ok := event.(domain.SourceClosedEvent)
	if !ok || !e.Ended {
		return
	}
	p.view.SetStatus(fmt.Sprintf("Finished: %s", e.Info.DisplayName()))
}

func (p *Presenter) onSourceError(event domain.Event) {
	e, ok := event.(domain.SourceErrorEvent)
	if !ok {
		return
	}

	title := "Playback Error"
	if errors.Is(e.Error, domain.ErrUnsupportedFormat) {
		title = "Unsupported File"
	}
	p.view.ShowError(title, fmt.Sprintf("%s: %v", e.Path, e.Error))
}

func (p *Presenter) onShapeChanged(event domain.Event) {
	e, ok := event.(domain.ShapeChangedEvent)
	if !ok {
		return
	}
	p.view.SetStatus(fmt.Sprintf("Shape: %s", ShapeName(e.Current)))
}

func (p *Presenter) onFrameStats(event domain.Event) {
	e, ok := event.(domain.FrameStatsEvent)
	if !ok {
		return
	}

	p.mu.RLock()
	visible := p.statsVisible
	p.mu.RUnlock()

	if visible {
		p.view.SetStats(e.Stats)
	}
}

func (p *Presenter) onRenderError(event domain.Event) {
	e, ok := event.(domain.RenderErrorEvent)
	if !ok {
		return
	}
	p.view.SetStatus(fmt.Sprintf("Render error in %s: %v", ShapeName(e.Shape), e.Error))
}

// UI Command handlers (called by UI)

// OnNextShape cycles to the next renderer.
func (p *Presenter) OnNextShape() {
	if _, err := p.configService.NextShape(); err != nil {
		p.reportConfigError("shape change", err)
	}
}

// OnNextPreset cycles to the next color preset.
func (p *Presenter) OnNextPreset() {
	scheme, err := p.configService.NextPreset()
	if err != nil {
		p.reportConfigError("preset change", err)
		return
	}
	p.view.SetStatus(fmt.Sprintf("Preset: %s", scheme.Name))
}

// OnToggleSmoothing flips neighbor smoothing.
func (p *Presenter) OnToggleSmoothing() {
	on, err := p.configService.ToggleSmoothing()
	if err != nil {
		p.reportConfigError("smoothing toggle", err)
		return
	}
	if on {
		p.view.SetStatus("Smoothing on")
	} else {
		p.view.SetStatus("Smoothing off")
	}
}

// OnToggleStats shows or hides the stats overlay.
func (p *Presenter) OnToggleStats() {
	p.mu.Lock()
	p.statsVisible = !p.statsVisible
	visible := p.statsVisible
	p.mu.Unlock()

	p.view.SetStatsVisible(visible)
	if visible {
		p.view.SetStats(p.renderLoop.Stats())
	}
}

// StatsVisible reports whether the stats overlay is shown.
func (p *Presenter) StatsVisible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.statsVisible
}

// OnFadeUp makes trails shorter.
func (p *Presenter) OnFadeUp() {
	p.changeFade(fadeStep)
}

// OnFadeDown makes trails longer.
func (p *Presenter) OnFadeDown() {
	p.changeFade(-fadeStep)
}

func (p *Presenter) changeFade(delta float64) {
	current := p.configService.Config().FadeAmount
	// rounded to the step so repeated presses land on even values
	next := math.Round((current+delta)/fadeStep) * fadeStep
	next = math.Max(fadeStep, math.Min(1, next))
	if next == current {
		return
	}
	if err := p.configService.SetFadeAmount(next); err != nil {
		p.reportConfigError("fade change", err)
		return
	}
	p.view.SetStatus(fmt.Sprintf("Fade: %.2f", next))
}

// OnFileOpened starts visualizing the file at path.
func (p *Presenter) OnFileOpened(path string) error {
	if _, err := p.sourceService.OpenFile(path); err != nil {
		// the source error event has already informed the user
		p.logger.Error("open file failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	return nil
}

// OnStopSource stops the current source. The renderers fall back to
// their idle frames.
func (p *Presenter) OnStopSource() {
	err := p.sourceService.Stop()
	switch {
	case err == nil:
		p.view.SetStatus("Stopped")
	case errors.Is(err, domain.ErrNotRunning):
	default:
		p.logger.Error("stop source failed", slog.Any("error", err))
		p.view.ShowError("Playback Error", fmt.Sprintf("Failed to stop: %v", err))
	}
}

// OnResetDefaults restores the default configuration.
func (p *Presenter) OnResetDefaults() {
	if err := p.configService.ResetToDefaults(); err != nil {
		p.reportConfigError("reset", err)
		return
	}
	p.view.SetStatus("Settings reset to defaults")
}

// reportConfigError shows validation problems; persistence failures are
// only logged because the new config is already live.
func (p *Presenter) reportConfigError(action string, err error) {
	p.logger.Error(action+" failed", slog.Any("error", err))

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		p.view.ShowError("Settings Error", err.Error())
	}
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		ids := p.subscriptions
		p.subscriptions = nil
		p.mu.Unlock()

		for _, id := range ids {
			p.eventBus.Unsubscribe(id)
		}
	})
}
