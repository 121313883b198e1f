package scheduler

import (
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Manual is a clock that only advances when told to. Callbacks run on the
// goroutine that calls Step.
type Manual struct {
	q   *queue
	now time.Time
}

var _ ports.FrameScheduler = (*Manual)(nil)

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{q: newQueue(), now: start}
}

// RequestFrame schedules cb for the next Step.
func (m *Manual) RequestFrame(cb ports.FrameCallback) ports.FrameID {
	return m.q.request(cb)
}

// CancelFrame drops a pending request. Unknown ids are ignored.
func (m *Manual) CancelFrame(id ports.FrameID) {
	m.q.cancel(id)
}

// Pending returns the number of requests waiting for a Step.
func (m *Manual) Pending() int {
	return m.q.len()
}

// Now returns the current clock time.
func (m *Manual) Now() time.Time {
	return m.now
}

// Step advances the clock by dt and fires every request made before the
// call. It returns how many callbacks ran.
func (m *Manual) Step(dt time.Duration) int {
	m.now = m.now.Add(dt)
	return m.q.fire(m.now, nil)
}

// Run steps n times and returns the total number of callbacks run.
func (m *Manual) Run(n int, dt time.Duration) int {
	total := 0
	for i := 0; i < n; i++ {
		total += m.Step(dt)
	}
	return total
}
