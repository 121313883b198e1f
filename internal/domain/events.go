// Package domain defines events for the event-driven architecture.
// Events let the UI, persistence and logging follow the render loop without
// the loop knowing about them.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Visualization lifecycle events
	EventVisualizationStarted EventType = "visualization.started"
	EventVisualizationStopped EventType = "visualization.stopped"
	EventShapeChanged         EventType = "visualization.shape_changed"
	EventFrameStats           EventType = "visualization.frame_stats"
	EventRenderError          EventType = "visualization.render_error"

	// Configuration events
	EventConfigChanged EventType = "config.changed"

	// Source events
	EventSourceOpened EventType = "source.opened"
	EventSourceClosed EventType = "source.closed"
	EventSourceError  EventType = "source.error"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// VisualizationStartedEvent is published when the render loop starts painting.
type VisualizationStartedEvent struct {
	baseEvent
	Shape Shape
}

// Type returns the event type.
func (e VisualizationStartedEvent) Type() EventType {
	return EventVisualizationStarted
}

// NewVisualizationStartedEvent creates a new VisualizationStartedEvent.
func NewVisualizationStartedEvent(shape Shape) VisualizationStartedEvent {
	return VisualizationStartedEvent{
		baseEvent: newBaseEvent(),
		Shape:     shape,
	}
}

// VisualizationStoppedEvent is published when the render loop stops.
type VisualizationStoppedEvent struct {
	baseEvent
	Shape  Shape
	Frames uint64 // Frames painted during the run
}

// Type returns the event type.
func (e VisualizationStoppedEvent) Type() EventType {
	return EventVisualizationStopped
}

// NewVisualizationStoppedEvent creates a new VisualizationStoppedEvent.
func NewVisualizationStoppedEvent(shape Shape, frames uint64) VisualizationStoppedEvent {
	return VisualizationStoppedEvent{
		baseEvent: newBaseEvent(),
		Shape:     shape,
		Frames:    frames,
	}
}

// ShapeChangedEvent is published after the active renderer was swapped.
type ShapeChangedEvent struct {
	baseEvent
	Previous Shape
	Current  Shape
}

// Type returns the event type.
func (e ShapeChangedEvent) Type() EventType {
	return EventShapeChanged
}

// NewShapeChangedEvent creates a new ShapeChangedEvent.
func NewShapeChangedEvent(previous, current Shape) ShapeChangedEvent {
	return ShapeChangedEvent{
		baseEvent: newBaseEvent(),
		Previous:  previous,
		Current:   current,
	}
}

// FrameStatsEvent carries the once-per-second render statistics.
type FrameStatsEvent struct {
	baseEvent
	Stats FrameStats
}

// Type returns the event type.
func (e FrameStatsEvent) Type() EventType {
	return EventFrameStats
}

// NewFrameStatsEvent creates a new FrameStatsEvent.
func NewFrameStatsEvent(stats FrameStats) FrameStatsEvent {
	return FrameStatsEvent{
		baseEvent: newBaseEvent(),
		Stats:     stats,
	}
}

// RenderErrorEvent is published when a frame failed to paint.
// The loop keeps running; this is informational.
type RenderErrorEvent struct {
	baseEvent
	Shape Shape
	Error error
}

// Type returns the event type.
func (e RenderErrorEvent) Type() EventType {
	return EventRenderError
}

// NewRenderErrorEvent creates a new RenderErrorEvent.
func NewRenderErrorEvent(shape Shape, err error) RenderErrorEvent {
	return RenderErrorEvent{
		baseEvent: newBaseEvent(),
		Shape:     shape,
		Error:     err,
	}
}

// ConfigChangedEvent is published when a new configuration was stored.
type ConfigChangedEvent struct {
	baseEvent
	Config Config
}

// Type returns the event type.
func (e ConfigChangedEvent) Type() EventType {
	return EventConfigChanged
}

// NewConfigChangedEvent creates a new ConfigChangedEvent.
func NewConfigChangedEvent(cfg Config) ConfigChangedEvent {
	return ConfigChangedEvent{
		baseEvent: newBaseEvent(),
		Config:    cfg,
	}
}

// SourceOpenedEvent is published when an audio source starts feeding the analyser.
type SourceOpenedEvent struct {
	baseEvent
	Info SourceInfo
}

// Type returns the event type.
func (e SourceOpenedEvent) Type() EventType {
	return EventSourceOpened
}

// NewSourceOpenedEvent creates a new SourceOpenedEvent.
func NewSourceOpenedEvent(info SourceInfo) SourceOpenedEvent {
	return SourceOpenedEvent{
		baseEvent: newBaseEvent(),
		Info:      info,
	}
}

// SourceClosedEvent is published when a source is closed or runs out of data.
type SourceClosedEvent struct {
	baseEvent
	Info  SourceInfo
	Ended bool // True when the stream finished on its own
}

// Type returns the event type.
func (e SourceClosedEvent) Type() EventType {
	return EventSourceClosed
}

// NewSourceClosedEvent creates a new SourceClosedEvent.
func NewSourceClosedEvent(info SourceInfo, ended bool) SourceClosedEvent {
	return SourceClosedEvent{
		baseEvent: newBaseEvent(),
		Info:      info,
		Ended:     ended,
	}
}

// SourceErrorEvent is published when opening or streaming a source failed.
type SourceErrorEvent struct {
	baseEvent
	Path  string
	Error error
}

// Type returns the event type.
func (e SourceErrorEvent) Type() EventType {
	return EventSourceError
}

// NewSourceErrorEvent creates a new SourceErrorEvent.
func NewSourceErrorEvent(path string, err error) SourceErrorEvent {
	return SourceErrorEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
		Error:     err,
	}
}
