// Package service provides the application logic of vizwave: the render
// loop driver, configuration, audio sources and offline export.
package service

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// ConfigService owns the live visualizer configuration.
//
// Readers call Config, which never blocks: the current value sits behind an
// atomic pointer and is replaced wholesale on every change, so the render
// loop sees either the old or the new config, never a mix. Writers are
// serialized and persist through the repository.
type ConfigService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.ConfigRepository
	bus        ports.EventBus

	current atomic.Pointer[domain.Config]

	// Serializes writers
	mu sync.Mutex
}

// NewConfigService creates a config service, loading the saved
// configuration. A repository error leaves the defaults in place.
func NewConfigService(
	logger *slog.Logger,
	repository ports.ConfigRepository,
	bus ports.EventBus,
) *ConfigService {
	s := &ConfigService{
		logger:     logger,
		repository: repository,
		bus:        bus,
	}

	cfg, err := repository.LoadConfig()
	if err != nil {
		logger.Warn("failed to load saved config, using defaults", slog.Any("error", err))
		cfg = domain.DefaultConfig()
	}
	cfg = cfg.WithDefaults()
	s.current.Store(&cfg)

	logger.Debug("config service initialized",
		slog.String("shape", string(cfg.Shape)),
		slog.String("scheme", cfg.ColorScheme.Name))
	return s
}

// Config returns a private copy of the current configuration.
func (s *ConfigService) Config() domain.Config {
	return s.current.Load().Clone()
}

// Update applies fn to a copy of the current configuration, validates the
// result, publishes it and saves it. An invalid result is rejected and the
// current config is kept. A save failure is returned after the new config
// is already live.
func (s *ConfigService) Update(fn func(cfg *domain.Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	next = next.WithDefaults()
	s.current.Store(&next)

	s.bus.Publish(domain.NewConfigChangedEvent(next.Clone()))

	if err := s.repository.SaveConfig(next); err != nil {
		s.logger.Warn("failed to save config", slog.Any("error", err))
		return err
	}
	return nil
}

// Set replaces the whole configuration.
func (s *ConfigService) Set(cfg domain.Config) error {
	return s.Update(func(c *domain.Config) { *c = cfg.Clone() })
}

// SetShape selects the active renderer.
func (s *ConfigService) SetShape(shape domain.Shape) error {
	if !shape.IsValid() {
		return domain.NewValidationError("shape", shape, "unknown shape")
	}
	return s.Update(func(c *domain.Config) { c.Shape = shape })
}

// NextShape cycles to the next renderer and returns it.
func (s *ConfigService) NextShape() (domain.Shape, error) {
	var shape domain.Shape
	err := s.Update(func(c *domain.Config) {
		c.Shape = c.Shape.Next()
		shape = c.Shape
	})
	return shape, err
}

// SetPreset switches to a named color preset.
func (s *ConfigService) SetPreset(name string) error {
	scheme, err := domain.PresetByName(name)
	if err != nil {
		return err
	}
	return s.Update(func(c *domain.Config) { c.ColorScheme = scheme })
}

// NextPreset cycles through the preset catalogue and returns the new scheme.
func (s *ConfigService) NextPreset() (domain.ColorScheme, error) {
	var scheme domain.ColorScheme
	err := s.Update(func(c *domain.Config) {
		c.ColorScheme = domain.NextPreset(c.ColorScheme.Name)
		scheme = c.ColorScheme
	})
	return scheme, err
}

// ToggleSmoothing flips neighbor smoothing and returns the new state.
func (s *ConfigService) ToggleSmoothing() (bool, error) {
	var on bool
	err := s.Update(func(c *domain.Config) {
		c.Smoothing = !c.Smoothing
		on = c.Smoothing
	})
	return on, err
}

// SetFadeAmount changes the trail fade.
func (s *ConfigService) SetFadeAmount(amount float64) error {
	return s.Update(func(c *domain.Config) { c.FadeAmount = amount })
}

// ResetToDefaults clears the repository and restores the defaults.
func (s *ConfigService) ResetToDefaults() error {
	if err := s.repository.Clear(); err != nil {
		s.logger.Warn("failed to clear saved config", slog.Any("error", err))
	}
	return s.Set(domain.DefaultConfig())
}
