// Package scheduler provides ports.FrameScheduler implementations: a
// wall-clock ticker for the desktop window and a manual clock for tests and
// offline export.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// DefaultFPS is the display rate used when none is configured.
const DefaultFPS = 60

// queue holds pending frame requests in the order they were made.
// It is shared by both schedulers.
type queue struct {
	mu      sync.Mutex
	lastID  ports.FrameID
	pending map[ports.FrameID]ports.FrameCallback
	order   []ports.FrameID
}

func newQueue() *queue {
	return &queue{pending: make(map[ports.FrameID]ports.FrameCallback)}
}

func (q *queue) request(cb ports.FrameCallback) ports.FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.lastID++
	q.pending[q.lastID] = cb
	q.order = append(q.order, q.lastID)
	return q.lastID
}

func (q *queue) cancel(id ports.FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// take removes and returns the callback for id, if still pending.
func (q *queue) take(id ports.FrameID) (ports.FrameCallback, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cb, ok := q.pending[id]
	delete(q.pending, id)
	return cb, ok
}

// due returns the ids requested so far and starts a new batch. Requests
// made while the batch runs land in the next one.
func (q *queue) due() []ports.FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := q.order
	q.order = nil
	return ids
}

// fire runs one batch and returns how many callbacks ran. A frame cancelled
// by an earlier callback in the same batch does not run.
func (q *queue) fire(now time.Time, logger *slog.Logger) int {
	ran := 0
	for _, id := range q.due() {
		cb, ok := q.take(id)
		if !ok {
			continue
		}
		ran++
		runCallback(cb, now, logger)
	}
	return ran
}

func runCallback(cb ports.FrameCallback, now time.Time, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("frame callback panicked", slog.Any("panic", r))
		}
	}()
	cb(now)
}

// Ticker fires pending frames on a wall-clock ticker, one batch per tick,
// from a single goroutine.
//
// Thread-safety: RequestFrame and CancelFrame may be called from any
// goroutine, including from inside a callback.
type Ticker struct {
	logger   *slog.Logger
	interval time.Duration
	q        *queue

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

var _ ports.FrameScheduler = (*Ticker)(nil)

// NewTicker creates a ticker clock running at fps frames per second and
// starts its goroutine. Non-positive fps selects DefaultFPS. Call Close to
// stop it.
func NewTicker(logger *slog.Logger, fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	t := &Ticker{
		logger:   logger,
		interval: time.Second / time.Duration(fps),
		q:        newQueue(),
		stop:     make(chan struct{}),
	}
	t.start()
	return t
}

// Interval returns the time between ticks.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// RequestFrame schedules cb for the next tick.
func (t *Ticker) RequestFrame(cb ports.FrameCallback) ports.FrameID {
	return t.q.request(cb)
}

// CancelFrame drops a pending request. Unknown ids are ignored.
func (t *Ticker) CancelFrame(id ports.FrameID) {
	t.q.cancel(id)
}

// Pending returns the number of requests waiting for a tick.
func (t *Ticker) Pending() int {
	return t.q.len()
}

func (t *Ticker) start() {
	t.mu.Lock()
	t.running = true
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case now := <-ticker.C:
				t.q.fire(now, t.logger)
			}
		}
	}()
}

// Close stops the clock and waits for the goroutine to exit. Pending
// requests never fire. Must not be called from inside a callback.
func (t *Ticker) Close() error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = false
	close(t.stop)
	t.mu.Unlock()

	t.wg.Wait()
	return nil
}
