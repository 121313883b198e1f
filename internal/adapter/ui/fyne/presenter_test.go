package fyne

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/analyser"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/audio"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/recorder"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
	"github.com/tejashwikalptaru/vizwave/internal/service"
)

// fakeView records what the presenter asks the window to show.
type fakeView struct {
	mu           sync.Mutex
	statuses     []string
	errors       []string
	stats        []domain.FrameStats
	source       domain.SourceInfo
	statsVisible bool
}

func (v *fakeView) SetSourceInfo(info domain.SourceInfo) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.source = info
}

func (v *fakeView) SetStatus(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statuses = append(v.statuses, message)
}

func (v *fakeView) SetStats(stats domain.FrameStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = append(v.stats, stats)
}

func (v *fakeView) SetStatsVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statsVisible = visible
}

func (v *fakeView) ShowError(title, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, title+": "+message)
}

func (v *fakeView) Run()   {}
func (v *fakeView) Close() {}

func (v *fakeView) lastStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.statuses) == 0 {
		return ""
	}
	return v.statuses[len(v.statuses)-1]
}

func (v *fakeView) errorCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.errors)
}

var _ ports.UI = (*fakeView)(nil)

type presenterFixture struct {
	presenter *Presenter
	view      *fakeView
	config    *service.ConfigService
	sources   *service.SourceService
	loop      *service.RenderLoop
	clock     *scheduler.Manual
	bus       *eventbus.SyncEventBus
}

func newPresenterFixture(t *testing.T) *presenterFixture {
	t.Helper()
	app := test.NewTempApp(t)
	log := logger.NewTestLogger()

	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	a, err := analyser.New(analyser.DefaultConfig())
	require.NoError(t, err)

	repo := memory.NewPreferencesRepository(app.Preferences())
	configService := service.NewConfigService(log, repo, bus)
	sourceService := service.NewSourceService(log, audio.NewFileOpener(log), audio.NewPaced(log, 512), a, repo, bus)
	t.Cleanup(func() { _ = sourceService.Close() })

	clock := scheduler.NewManual(time.Unix(0, 0))
	canvas := recorder.New(64, 64)
	loop := service.NewRenderLoop(log, clock, service.HostFuncs{
		SourceFunc: func() ports.AnalysisSource { return a },
		CanvasFunc: func() ports.Canvas { return canvas },
		ConfigFunc: configService.Config,
	}, bus)
	bus.Subscribe(domain.EventConfigChanged, func(event domain.Event) {
		_ = loop.SetShape(event.(domain.ConfigChangedEvent).Config.Shape)
	})
	require.NoError(t, loop.Start())
	t.Cleanup(loop.Stop)

	view := &fakeView{}
	p := NewPresenter(log, configService, sourceService, loop, bus, view)
	t.Cleanup(p.Shutdown)

	return &presenterFixture{
		presenter: p,
		view:      view,
		config:    configService,
		sources:   sourceService,
		loop:      loop,
		clock:     clock,
		bus:       bus,
	}
}

func TestPresenter_InitialState(t *testing.T) {
	f := newPresenterFixture(t)

	assert.Equal(t, "Circular | White", f.view.lastStatus())
	assert.False(t, f.view.statsVisible)
	assert.False(t, f.presenter.StatsVisible())
}

func TestPresenter_NextShapeReportsNewRenderer(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnNextShape()
	assert.Equal(t, domain.ShapeBars, f.loop.Shape())
	assert.Equal(t, "Shape: Edge Bars", f.view.lastStatus())

	f.presenter.OnNextShape()
	assert.Equal(t, "Shape: Ripple Waveform", f.view.lastStatus())
}

func TestPresenter_ConfigCommands(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnNextPreset()
	next := domain.NextPreset(domain.DefaultColorScheme().Name)
	assert.Equal(t, "Preset: "+next.Name, f.view.lastStatus())
	assert.Equal(t, next.Name, f.config.Config().ColorScheme.Name)

	f.presenter.OnToggleSmoothing()
	assert.Equal(t, "Smoothing off", f.view.lastStatus())
	f.presenter.OnToggleSmoothing()
	assert.Equal(t, "Smoothing on", f.view.lastStatus())

	f.presenter.OnResetDefaults()
	assert.Equal(t, domain.DefaultConfig(), f.config.Config())
	assert.Equal(t, "Settings reset to defaults", f.view.lastStatus())
}

func TestPresenter_FadeIsClamped(t *testing.T) {
	f := newPresenterFixture(t)

	f.presenter.OnFadeUp()
	assert.InDelta(t, 0.55, f.config.Config().FadeAmount, 1e-9)
	assert.Equal(t, "Fade: 0.55", f.view.lastStatus())

	for range 30 {
		f.presenter.OnFadeUp()
	}
	assert.InDelta(t, 1.0, f.config.Config().FadeAmount, 1e-9)

	for range 40 {
		f.presenter.OnFadeDown()
	}
	assert.InDelta(t, fadeStep, f.config.Config().FadeAmount, 1e-9)
	assert.Zero(t, f.view.errorCount())
}

func TestPresenter_StatsOnlyWhenVisible(t *testing.T) {
	f := newPresenterFixture(t)

	f.bus.Publish(domain.NewFrameStatsEvent(domain.FrameStats{FPS: 60}))
	assert.Empty(t, f.view.stats)

	f.presenter.OnToggleStats()
	assert.True(t, f.view.statsVisible)
	require.Len(t, f.view.stats, 1, "showing the overlay fills it immediately")

	f.bus.Publish(domain.NewFrameStatsEvent(domain.FrameStats{FPS: 60}))
	require.Len(t, f.view.stats, 2)
	assert.Equal(t, 60, f.view.stats[1].FPS)

	f.presenter.OnToggleStats()
	assert.False(t, f.view.statsVisible)
}

func TestPresenter_SourceEvents(t *testing.T) {
	f := newPresenterFixture(t)

	info := domain.SourceInfo{Kind: domain.SourceFile, Path: "/a.mp3", Title: "Song", Artist: "Band"}
	f.bus.Publish(domain.NewSourceOpenedEvent(info))
	assert.Equal(t, info, f.view.source)

	f.bus.Publish(domain.NewSourceClosedEvent(info, false))
	assert.NotContains(t, f.view.lastStatus(), "Finished")
	f.bus.Publish(domain.NewSourceClosedEvent(info, true))
	assert.Equal(t, "Finished: Band - Song", f.view.lastStatus())

	f.bus.Publish(domain.NewSourceErrorEvent("/a.mp3", fmt.Errorf("decode: %w", domain.ErrUnsupportedFormat)))
	require.Equal(t, 1, f.view.errorCount())
	assert.Contains(t, f.view.errors[0], "Unsupported File")

	f.bus.Publish(domain.NewRenderErrorEvent(domain.ShapeBars, errors.New("boom")))
	assert.Equal(t, "Render error in Edge Bars: boom", f.view.lastStatus())
}

func TestPresenter_OpenAndStop(t *testing.T) {
	f := newPresenterFixture(t)

	err := f.presenter.OnFileOpened("/nowhere/missing.wav")
	require.Error(t, err)
	assert.Equal(t, 1, f.view.errorCount(), "the failure reaches the user once")

	f.presenter.OnStopSource()
	assert.Equal(t, 1, f.view.errorCount(), "stopping while idle is quiet")

	tone, err := audio.NewTone(audio.DefaultToneConfig())
	require.NoError(t, err)
	require.NoError(t, f.sources.StartStream(tone, tone.Info()))
	assert.Equal(t, domain.SourceTone, f.view.source.Kind)

	f.presenter.OnStopSource()
	assert.Equal(t, "Stopped", f.view.lastStatus())
}

func TestPresenter_ShutdownUnsubscribes(t *testing.T) {
	f := newPresenterFixture(t)
	before := f.bus.SubscriberCount()

	f.presenter.Shutdown()
	f.presenter.Shutdown()
	assert.Equal(t, before-6, f.bus.SubscriberCount())

	f.bus.Publish(domain.NewRenderErrorEvent(domain.ShapeBars, errors.New("late")))
	assert.NotContains(t, f.view.lastStatus(), "late")
}
