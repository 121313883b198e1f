// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

// ConfigRepository persists the visualizer configuration and the last used
// source between runs.
//
// Thread-safety: Implementations must be thread-safe.
type ConfigRepository interface {
	// SaveConfig persists the whole configuration.
	//
	// Returns an error if saving fails.
	SaveConfig(cfg domain.Config) error

	// LoadConfig retrieves the saved configuration.
	// Fields that were never saved, or that fail to parse, fall back to
	// their defaults individually; a repository with nothing saved returns
	// domain.DefaultConfig().
	LoadConfig() (domain.Config, error)

	// SaveSourcePath remembers the last opened audio file.
	SaveSourcePath(path string) error

	// LoadSourcePath returns the last opened audio file, or "" if none.
	LoadSourcePath() (string, error)

	// Clear removes everything this repository stored.
	Clear() error
}
