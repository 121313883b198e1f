// Package domain defines domain-specific errors.
// These errors represent visualizer failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services and adapters can return.
var (
	// ErrSourceUnavailable is returned when no analysis source is attached.
	ErrSourceUnavailable = errors.New("analysis source unavailable")

	// ErrCanvasUnavailable is returned when no drawing surface is attached.
	ErrCanvasUnavailable = errors.New("canvas unavailable")

	// ErrUnknownShape is returned when a shape name does not match any renderer.
	ErrUnknownShape = errors.New("unknown visualizer shape")

	// ErrUnknownPreset is returned when a color preset name is not in the catalogue.
	ErrUnknownPreset = errors.New("unknown color preset")

	// ErrInvalidColor is returned when a color string is not in #RRGGBB form.
	ErrInvalidColor = errors.New("invalid color: expected #RRGGBB")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnsupportedSource is returned for source kinds this build cannot open
	// (live microphone, tab or system capture).
	ErrUnsupportedSource = errors.New("unsupported source kind")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrNotRunning is returned when an operation needs an active render loop.
	ErrNotRunning = errors.New("render loop not running")

	// ErrAlreadyRunning is returned when starting something that is already started.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrSourceEnded is returned by sources once their stream is exhausted.
	ErrSourceEnded = errors.New("source ended")
)

// SourceError represents a failure to open or read an audio source.
// It wraps decoder and device errors with the path and operation involved.
type SourceError struct {
	Op      string // Operation that failed (e.g., "open", "decode", "play")
	Path    string // File path (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("source %s failed for '%s': %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("source %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, path, message string, err error) *SourceError {
	return &SourceError{
		Op:      op,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load", "clear")
	Type    string // Repository type (e.g., "preferences", "toml")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a configuration value outside its allowed range.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "RenderLoop", "SourceService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
