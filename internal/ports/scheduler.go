package ports

import "time"

// FrameID identifies a requested frame. The zero value is never issued.
type FrameID uint64

// FrameCallback runs once for a requested frame with the frame timestamp.
type FrameCallback func(now time.Time)

// FrameScheduler is the display clock.
//
// RequestFrame asks for cb to run once on the next display tick. Callbacks
// run serially on one goroutine, in the order their frames were requested.
// CancelFrame drops a pending request; cancelling an unknown, fired or
// already cancelled frame is a no-op.
type FrameScheduler interface {
	RequestFrame(cb FrameCallback) FrameID
	CancelFrame(id FrameID)
}
