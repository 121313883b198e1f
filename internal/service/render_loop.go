package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
	"github.com/tejashwikalptaru/vizwave/internal/visualizer"
)

// statsWindow is how often frame statistics are published.
const statsWindow = time.Second

// FrameHost supplies what a tick needs. The loop asks on every tick, so the
// host may swap sources or canvases at any time.
type FrameHost interface {
	// AnalysisSource returns the active source, or nil when there is none.
	AnalysisSource() ports.AnalysisSource

	// Canvas returns the surface to paint, or nil when there is none.
	Canvas() ports.Canvas

	// Config returns a private copy of the configuration for this tick.
	Config() domain.Config
}

// HostFuncs adapts three functions to a FrameHost. Nil functions report
// nothing available and the default config.
type HostFuncs struct {
	SourceFunc func() ports.AnalysisSource
	CanvasFunc func() ports.Canvas
	ConfigFunc func() domain.Config
}

// AnalysisSource implements FrameHost.
func (h HostFuncs) AnalysisSource() ports.AnalysisSource {
	if h.SourceFunc == nil {
		return nil
	}
	return h.SourceFunc()
}

// Canvas implements FrameHost.
func (h HostFuncs) Canvas() ports.Canvas {
	if h.CanvasFunc == nil {
		return nil
	}
	return h.CanvasFunc()
}

// Config implements FrameHost.
func (h HostFuncs) Config() domain.Config {
	if h.ConfigFunc == nil {
		return domain.DefaultConfig()
	}
	return h.ConfigFunc()
}

// transformResetter is implemented by canvases that can drop a transform
// stack left unbalanced by a failed frame.
type transformResetter interface {
	ResetTransform()
}

// RenderLoop drives the active renderer from a frame scheduler: one paint
// pass and one Present per tick, then it asks for the next tick.
//
// Exactly one renderer exists at a time. Switching shapes or stopping drops
// the renderer and its runtime state; a tick scheduled under an older
// generation finds the generation changed and does nothing.
//
// Thread-safety: all methods may be called from any goroutine. Ticks run on
// the scheduler's goroutine.
type RenderLoop struct {
	// Dependencies (injected)
	logger    *slog.Logger
	scheduler ports.FrameScheduler
	host      FrameHost
	bus       ports.EventBus

	mu         sync.Mutex
	running    bool
	generation uint64
	pending    ports.FrameID
	renderer   visualizer.Renderer
	shape      domain.Shape

	freq []byte
	td   []byte

	failing bool // inside a burst of failing frames
	stats   frameStats
	last    domain.FrameStats
}

// NewRenderLoop creates a stopped render loop.
func NewRenderLoop(
	logger *slog.Logger,
	scheduler ports.FrameScheduler,
	host FrameHost,
	bus ports.EventBus,
) *RenderLoop {
	logger.Debug("render loop initialized")
	return &RenderLoop{
		logger:    logger,
		scheduler: scheduler,
		host:      host,
		bus:       bus,
	}
}

// Start creates the renderer for the configured shape and requests the
// first frame. Later shape changes go through SetShape; the loop does not
// watch the config for them.
func (l *RenderLoop) Start() error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	shape := l.host.Config().Shape
	if err := l.activateLocked(shape); err != nil {
		l.mu.Unlock()
		return domain.NewServiceError("RenderLoop", "Start", "cannot create renderer", err)
	}
	l.running = true
	l.generation++
	l.stats = frameStats{}
	l.scheduleLocked(l.generation)
	l.mu.Unlock()

	l.logger.Info("visualization started", slog.String("shape", string(shape)))
	l.bus.Publish(domain.NewVisualizationStartedEvent(shape))
	return nil
}

// Stop cancels the pending frame and drops the renderer. It is idempotent.
func (l *RenderLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.cancelLocked()
	l.running = false
	l.generation++
	shape := l.shape
	painted := l.stats.painted
	l.renderer = nil
	l.mu.Unlock()

	l.logger.Info("visualization stopped", slog.String("shape", string(shape)), slog.Uint64("frames", painted))
	l.bus.Publish(domain.NewVisualizationStoppedEvent(shape, painted))
}

// IsRunning reports whether frames are being requested.
func (l *RenderLoop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Shape returns the shape of the active renderer, or "" before Start.
func (l *RenderLoop) Shape() domain.Shape {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shape
}

// Stats returns the statistics of the last completed window.
func (l *RenderLoop) Stats() domain.FrameStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// SetShape switches the renderer. The pending tick is cancelled before the
// old renderer is dropped, so no tick paints with both. Setting the active
// shape again is a no-op.
func (l *RenderLoop) SetShape(shape domain.Shape) error {
	if !shape.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownShape, shape)
	}
	l.mu.Lock()
	prev, err := l.switchLocked(shape)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	if prev != shape {
		l.bus.Publish(domain.NewShapeChangedEvent(prev, shape))
	}
	return nil
}

// switchLocked replaces the renderer and, when running, restarts the
// frame chain under a new generation. It returns the previous shape.
func (l *RenderLoop) switchLocked(shape domain.Shape) (domain.Shape, error) {
	prev := l.shape
	if shape == prev && l.renderer != nil {
		return prev, nil
	}
	if l.running {
		l.cancelLocked()
	}
	if err := l.activateLocked(shape); err != nil {
		return prev, err
	}
	if l.running {
		l.generation++
		l.scheduleLocked(l.generation)
	}
	l.logger.Debug("renderer switched", slog.String("from", string(prev)), slog.String("to", string(shape)))
	return prev, nil
}

func (l *RenderLoop) activateLocked(shape domain.Shape) error {
	r, err := visualizer.Factory(shape)
	if err != nil {
		return err
	}
	l.renderer = r
	l.shape = shape
	l.failing = false
	return nil
}

func (l *RenderLoop) scheduleLocked(gen uint64) {
	l.pending = l.scheduler.RequestFrame(func(now time.Time) {
		l.tick(gen, now)
	})
}

func (l *RenderLoop) cancelLocked() {
	if l.pending != 0 {
		l.scheduler.CancelFrame(l.pending)
		l.pending = 0
	}
}

// tick paints one frame and requests the next one.
func (l *RenderLoop) tick(gen uint64, now time.Time) {
	var events []domain.Event

	l.mu.Lock()
	if !l.running || gen != l.generation {
		l.mu.Unlock()
		return
	}
	l.pending = 0

	cfg := l.host.Config()
	if stats, ok := l.stats.roll(now, l.shape, cfg.Smoothing, len(l.freq)*2); ok {
		l.last = stats
		events = append(events, domain.NewFrameStatsEvent(stats))
	}
	events = append(events, l.paintLocked(cfg)...)
	l.scheduleLocked(gen)
	l.mu.Unlock()

	l.publish(events)
}

// paintLocked runs the renderer once. It returns the events to publish.
func (l *RenderLoop) paintLocked(cfg domain.Config) []domain.Event {
	src := l.host.AnalysisSource()
	canvas := l.host.Canvas()
	if src == nil || canvas == nil {
		l.stats.skipped++
		return nil
	}
	if w, h := canvas.Size(); w <= 0 || h <= 0 {
		l.stats.skipped++
		return nil
	}
	n := src.BufferLength()
	if n <= 0 {
		l.stats.skipped++
		return nil
	}

	if len(l.freq) != n {
		l.freq = make([]byte, n)
		l.td = make([]byte, n)
	}
	src.FrequencyMagnitudes(l.freq)
	src.TimeDomainSamples(l.td)

	err := l.renderSafely(canvas, cfg)
	canvas.Present()
	if err != nil {
		l.stats.failed++
		if rt, ok := canvas.(transformResetter); ok {
			rt.ResetTransform()
		}
		if l.failing {
			return nil
		}
		l.failing = true
		l.logger.Error("frame failed", slog.String("shape", string(l.shape)), slog.Any("error", err))
		return []domain.Event{domain.NewRenderErrorEvent(l.shape, err)}
	}

	l.failing = false
	l.stats.observe(l.freq)
	return nil
}

func (l *RenderLoop) renderSafely(canvas ports.Canvas, cfg domain.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer %s panicked: %v", l.shape, r)
		}
	}()
	l.renderer.Render(canvas, visualizer.Frame{Frequency: l.freq, TimeDomain: l.td}, cfg)
	return nil
}

func (l *RenderLoop) publish(events []domain.Event) {
	for _, e := range events {
		l.bus.Publish(e)
	}
}

// frameStats accumulates one statistics window.
type frameStats struct {
	start   time.Time
	frames  int
	sumAvg  float64
	sumBass float64
	peak    byte

	painted uint64
	skipped uint64
	failed  uint64
}

func (s *frameStats) observe(freq []byte) {
	s.frames++
	s.painted++
	s.sumAvg += visualizer.MeanLevel(freq)
	s.sumBass += visualizer.BassLevel(freq)
	s.peak = max(s.peak, visualizer.Peak(freq))
}

// roll closes the window once it spans statsWindow. The first call only
// opens it.
func (s *frameStats) roll(now time.Time, shape domain.Shape, smoothing bool, fftSize int) (domain.FrameStats, bool) {
	if s.start.IsZero() {
		s.start = now
		return domain.FrameStats{}, false
	}
	elapsed := now.Sub(s.start)
	if elapsed < statsWindow {
		return domain.FrameStats{}, false
	}

	out := domain.FrameStats{
		FFTSize:   fftSize,
		Shape:     shape,
		Smoothing: smoothing,
		Painted:   s.painted,
		Skipped:   s.skipped,
		Failed:    s.failed,
	}
	if s.frames > 0 {
		out.FPS = int(float64(s.frames)/elapsed.Seconds() + 0.5)
		out.AvgMagnitude = int(s.sumAvg / float64(s.frames) * 255)
		out.BassLevel = int(s.sumBass / float64(s.frames) * 255)
		out.PeakMagnitude = int(s.peak)
	}

	s.start = now
	s.frames = 0
	s.sumAvg = 0
	s.sumBass = 0
	s.peak = 0
	return out, true
}
