package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/recorder"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// fakeSource returns constant buffers.
type fakeSource struct {
	n     int
	level byte
}

func (s *fakeSource) BufferLength() int { return s.n }

func (s *fakeSource) FrequencyMagnitudes(dst []byte) {
	for i := range dst[:min(len(dst), s.n)] {
		dst[i] = s.level
	}
}

func (s *fakeSource) TimeDomainSamples(dst []byte) {
	for i := range dst[:min(len(dst), s.n)] {
		dst[i] = 128
	}
}

// panickingCanvas fails every fill.
type panickingCanvas struct {
	*recorder.Canvas
}

func (c panickingCanvas) FillRect(x, y, w, h float64, p ports.Paint) {
	panic("fill exploded")
}

// eventLog collects published events.
type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func newEventLog(bus ports.EventBus) *eventLog {
	l := &eventLog{}
	bus.SubscribeAll(func(e domain.Event) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.events = append(l.events, e)
	})
	return l
}

func (l *eventLog) ofType(t domain.EventType) []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Event
	for _, e := range l.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

type loopFixture struct {
	loop   *RenderLoop
	clock  *scheduler.Manual
	canvas *recorder.Canvas
	source *fakeSource
	events *eventLog

	mu        sync.Mutex
	noSource  bool
	noCanvas  bool
	cfg       domain.Config
	paintWith ports.Canvas
}

func newLoopFixture(t *testing.T) *loopFixture {
	t.Helper()
	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	f := &loopFixture{
		clock:  scheduler.NewManual(time.Unix(1000, 0)),
		canvas: recorder.New(320, 240),
		source: &fakeSource{n: 256, level: 200},
		events: newEventLog(bus),
		cfg:    domain.DefaultConfig(),
	}
	f.paintWith = f.canvas
	f.loop = NewRenderLoop(logger.NewTestLogger(), f.clock, HostFuncs{
		SourceFunc: func() ports.AnalysisSource {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.noSource {
				return nil
			}
			return f.source
		},
		CanvasFunc: func() ports.Canvas {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.noCanvas {
				return nil
			}
			return f.paintWith
		},
		ConfigFunc: func() domain.Config {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.cfg.Clone()
		},
	}, bus)
	t.Cleanup(f.loop.Stop)
	return f
}

func TestRenderLoop_StartPaintsOncePerTick(t *testing.T) {
	f := newLoopFixture(t)

	require.NoError(t, f.loop.Start())
	assert.True(t, f.loop.IsRunning())
	assert.Equal(t, domain.ShapeCircular, f.loop.Shape())
	assert.Equal(t, 1, f.clock.Pending())
	assert.Zero(t, f.canvas.Presents(), "nothing paints before the first tick")

	for i := 1; i <= 5; i++ {
		assert.Equal(t, 1, f.clock.Step(16*time.Millisecond))
		assert.Equal(t, i, f.canvas.Presents())
		assert.Equal(t, 1, f.clock.Pending(), "each tick requests exactly one more")
	}
	assert.Zero(t, f.canvas.Depth(), "renderers leave the transform stack balanced")

	assert.ErrorIs(t, f.loop.Start(), domain.ErrAlreadyRunning)
	assert.Len(t, f.events.ofType(domain.EventVisualizationStarted), 1)
}

func TestRenderLoop_StopCancelsPendingTick(t *testing.T) {
	f := newLoopFixture(t)

	// stopping a loop that never started is fine
	f.loop.Stop()

	require.NoError(t, f.loop.Start())
	f.clock.Step(16 * time.Millisecond)
	require.Equal(t, 1, f.clock.Pending())

	f.loop.Stop()
	assert.False(t, f.loop.IsRunning())
	assert.Zero(t, f.clock.Pending())
	assert.Zero(t, f.clock.Run(3, 16*time.Millisecond))
	assert.Equal(t, 1, f.canvas.Presents())

	f.loop.Stop()
	stopped := f.events.ofType(domain.EventVisualizationStopped)
	require.Len(t, stopped, 1)
	assert.Equal(t, uint64(1), stopped[0].(domain.VisualizationStoppedEvent).Frames)

	// restart after stop
	require.NoError(t, f.loop.Start())
	f.clock.Step(16 * time.Millisecond)
	assert.Equal(t, 2, f.canvas.Presents())
}

func TestRenderLoop_SkipsUnavailableDependencies(t *testing.T) {
	f := newLoopFixture(t)
	require.NoError(t, f.loop.Start())

	f.mu.Lock()
	f.noSource = true
	f.mu.Unlock()
	f.clock.Run(3, 16*time.Millisecond)
	assert.Zero(t, f.canvas.Presents())
	assert.Equal(t, 1, f.clock.Pending(), "a skipped tick still reschedules")

	f.mu.Lock()
	f.noSource = false
	f.noCanvas = true
	f.mu.Unlock()
	f.clock.Run(2, 16*time.Millisecond)
	assert.Zero(t, f.canvas.Presents())

	f.mu.Lock()
	f.noCanvas = false
	f.mu.Unlock()
	f.canvas.SetSize(0, 240)
	f.clock.Step(16 * time.Millisecond)
	assert.Zero(t, f.canvas.Presents())

	f.source.n = 0
	f.canvas.SetSize(320, 240)
	f.clock.Step(16 * time.Millisecond)
	assert.Zero(t, f.canvas.Presents())

	f.source.n = 256
	f.clock.Step(16 * time.Millisecond)
	assert.Equal(t, 1, f.canvas.Presents(), "painting resumes once everything is back")
	assert.True(t, f.loop.IsRunning())
}

func TestRenderLoop_SetShape(t *testing.T) {
	f := newLoopFixture(t)

	assert.ErrorIs(t, f.loop.SetShape("spiral"), domain.ErrUnknownShape)

	require.NoError(t, f.loop.Start())
	f.clock.Step(16 * time.Millisecond)

	require.NoError(t, f.loop.SetShape(domain.ShapeBars))
	assert.Equal(t, domain.ShapeBars, f.loop.Shape())
	assert.Equal(t, 1, f.clock.Pending(), "the old tick is replaced, not doubled")

	assert.Equal(t, 1, f.clock.Step(16*time.Millisecond))
	assert.Equal(t, 2, f.canvas.Presents())

	// same shape again is a no-op
	require.NoError(t, f.loop.SetShape(domain.ShapeBars))
	assert.Equal(t, 1, f.clock.Pending())

	changed := f.events.ofType(domain.EventShapeChanged)
	require.Len(t, changed, 1)
	e := changed[0].(domain.ShapeChangedEvent)
	assert.Equal(t, domain.ShapeCircular, e.Previous)
	assert.Equal(t, domain.ShapeBars, e.Current)
}

func TestRenderLoop_RecoversFromPanickingFrames(t *testing.T) {
	f := newLoopFixture(t)
	f.mu.Lock()
	f.paintWith = panickingCanvas{Canvas: f.canvas}
	f.mu.Unlock()

	require.NoError(t, f.loop.Start())
	f.clock.Run(3, 16*time.Millisecond)

	assert.True(t, f.loop.IsRunning(), "a panicking frame does not kill the loop")
	assert.Equal(t, 3, f.canvas.Presents())
	assert.Equal(t, 1, f.clock.Pending())
	assert.Zero(t, f.canvas.Depth(), "transform stack is reset after a failed frame")
	assert.Len(t, f.events.ofType(domain.EventRenderError), 1, "one error per burst of failures")

	// a good frame ends the burst, the next failure reports again
	f.mu.Lock()
	f.paintWith = f.canvas
	f.mu.Unlock()
	f.clock.Step(16 * time.Millisecond)
	f.mu.Lock()
	f.paintWith = panickingCanvas{Canvas: f.canvas}
	f.mu.Unlock()
	f.clock.Step(16 * time.Millisecond)
	assert.Len(t, f.events.ofType(domain.EventRenderError), 2)
}

func TestRenderLoop_FrameStats(t *testing.T) {
	f := newLoopFixture(t)
	require.NoError(t, f.loop.Start())

	f.clock.Run(10, 100*time.Millisecond)
	assert.Empty(t, f.events.ofType(domain.EventFrameStats), "no stats before a full window")

	f.clock.Step(100 * time.Millisecond)
	published := f.events.ofType(domain.EventFrameStats)
	require.Len(t, published, 1)

	stats := published[0].(domain.FrameStatsEvent).Stats
	assert.Equal(t, 10, stats.FPS)
	assert.Equal(t, 512, stats.FFTSize)
	assert.Equal(t, domain.ShapeCircular, stats.Shape)
	assert.True(t, stats.Smoothing)
	assert.Equal(t, 200, stats.PeakMagnitude)
	assert.InDelta(t, 200, stats.AvgMagnitude, 1)
	assert.InDelta(t, 200, stats.BassLevel, 1)
	assert.Equal(t, uint64(10), stats.Painted)
	assert.Equal(t, stats, f.loop.Stats())
}
