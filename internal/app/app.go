// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/analyser"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/audio"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/raster"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/repository/file"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/scheduler"
	fyneui "github.com/tejashwikalptaru/vizwave/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
	"github.com/tejashwikalptaru/vizwave/internal/service"
)

// Special values of Config.Source.
const (
	SourceResume = ""     // reopen the last file, if any
	SourceTone   = "tone" // the built-in test tone
	SourceNone   = "none" // start idle
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App
	config  Config

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	analyser *analyser.Analyser
	output   ports.AudioOutput
	ticker   *scheduler.Ticker
	surface  *raster.Surface

	// Repositories
	configRepo ports.ConfigRepository

	// Services
	configService *service.ConfigService
	sourceService *service.SourceService
	renderLoop    *service.RenderLoop

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shapeSub     domain.SubscriptionID
	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// Width and Height are the initial window (or export) size in pixels
	Width  int
	Height int

	// FPS is the frame rate of the render loop
	FPS int

	// ConfigPath selects a TOML settings file; empty keeps settings in the
	// Fyne preferences store
	ConfigPath string

	// Shape and Preset override the saved settings when not empty
	Shape  string
	Preset string

	// Source is a file path, SourceTone, SourceNone or SourceResume
	Source string

	// Mute visualizes without playing sound
	Mute bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// LogFormat is "text" or "json"
	LogFormat string

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:     "com.vizwave.app",
		AppName:   "vizwave",
		Width:     960,
		Height:    640,
		FPS:       60,
		Source:    SourceResume,
		LogLevel:  loggerCfg.Level,
		LogFormat: loggerCfg.Format,
	}
}

// Validate checks the parts of the config that have no safe fallback.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0:
		return domain.NewValidationError("width", c.Width, "must be positive")
	case c.Height <= 0:
		return domain.NewValidationError("height", c.Height, "must be positive")
	case c.FPS <= 0 || c.FPS > 240:
		return domain.NewValidationError("fps", c.FPS, "must be between 1 and 240")
	}
	return checkSource(c.Source)
}

// checkSource rejects the live capture kinds, which have no backend here.
func checkSource(source string) error {
	switch domain.SourceKind(strings.ToLower(source)) {
	case domain.SourceMicrophone, domain.SourceTab, domain.SourceSystem:
		return fmt.Errorf("source %q: %w", source, domain.ErrUnsupportedSource)
	}
	return nil
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	app := &Application{config: config}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 2: Create logger
	app.logger = newLogger(config)
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 3: Create an event bus
	app.eventBus = newEventBus(app.logger)

	// Step 4: Create the analyser and the audio output
	a, err := analyser.New(analyser.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create analyser: %w", err)
	}
	app.analyser = a
	app.output = newOutput(app.logger, config.Mute)

	// Step 5: Create repositories
	if config.ConfigPath != "" {
		app.configRepo = file.NewTOMLRepository(config.ConfigPath, logger.Component(app.logger, "config-file"))
	} else {
		app.configRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())
	}

	// Step 6: Create services (with dependency injection)
	app.configService = service.NewConfigService(
		app.logger.With(slog.String("service", "config")),
		app.configRepo,
		app.eventBus,
	)
	if err := app.applyOverrides(); err != nil {
		_ = app.closeInfrastructure()
		return nil, err
	}

	opener := audio.NewFileOpener(logger.Component(app.logger, "opener"))
	app.sourceService = service.NewSourceService(
		app.logger.With(slog.String("service", "source")),
		opener,
		app.output,
		app.analyser,
		app.configRepo,
		app.eventBus,
	)

	// Step 7: Create the render loop on the display clock
	app.surface = raster.New(config.Width, config.Height)
	app.ticker = scheduler.NewTicker(logger.Component(app.logger, "ticker"), config.FPS)
	app.renderLoop = service.NewRenderLoop(
		app.logger.With(slog.String("service", "render")),
		app.ticker,
		service.HostFuncs{
			SourceFunc: app.sourceService.ActiveSource,
			CanvasFunc: func() ports.Canvas { return app.surface },
			ConfigFunc: app.configService.Config,
		},
		app.eventBus,
	)
	app.shapeSub = followShape(app.eventBus, app.renderLoop, app.logger)

	// Step 8: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, logger.Component(app.logger, "window"), app.surface, fyneui.WindowConfig{
		Title:      config.AppName,
		Width:      float32(config.Width),
		Height:     float32(config.Height),
		Extensions: opener.Extensions(),
	})

	// Step 9: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.configService,
		app.sourceService,
		app.renderLoop,
		app.eventBus,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	return app, nil
}

func newLogger(config Config) *slog.Logger {
	return logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
	})
}

func newEventBus(log *slog.Logger) *eventbus.SyncEventBus {
	bus := eventbus.NewSyncEventBus()
	bus.SetLogger(logger.Component(log, "eventbus"))
	return bus
}

// newOutput opens the sound card, falling back to the muted output when
// there is none.
func newOutput(log *slog.Logger, mute bool) ports.AudioOutput {
	paced := func() ports.AudioOutput {
		return audio.NewPaced(logger.Component(log, "paced-output"), audio.DefaultBlockFrames)
	}
	if mute {
		return paced()
	}
	playback, err := audio.NewPlayback(logger.Component(log, "playback"))
	if err != nil {
		log.Warn("no audio device, visualizing muted", slog.Any("error", err))
		return paced()
	}
	return playback
}

// followShape keeps the render loop on the configured shape.
func followShape(bus ports.EventBus, loop *service.RenderLoop, log *slog.Logger) domain.SubscriptionID {
	return bus.Subscribe(domain.EventConfigChanged, func(event domain.Event) {
		e, ok := event.(domain.ConfigChangedEvent)
		if !ok {
			return
		}
		if err := loop.SetShape(e.Config.Shape); err != nil {
			log.Error("failed to switch renderer", slog.Any("error", err))
		}
	})
}

// applyOverrides writes the --shape and --preset choices into the live
// config.
func (a *Application) applyOverrides() error {
	if a.config.Shape == "" && a.config.Preset == "" {
		return nil
	}
	cfg := a.configService.Config()
	if err := applyOverrides(&cfg, a.config.Shape, a.config.Preset); err != nil {
		return err
	}
	if err := a.configService.Set(cfg); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		// persisted later or never; the override is live
		a.logger.Warn("failed to save overrides", slog.Any("error", err))
	}
	return nil
}

func applyOverrides(cfg *domain.Config, shape, preset string) error {
	if shape != "" {
		s, err := domain.ParseShape(shape)
		if err != nil {
			return err
		}
		cfg.Shape = s
	}
	if preset != "" {
		scheme, err := domain.PresetByName(preset)
		if err != nil {
			return err
		}
		cfg.ColorScheme = scheme
	}
	return nil
}

// startSource opens the configured source. Failures are reported through
// the event bus and leave the visualizer idle.
func (a *Application) startSource() {
	var err error
	switch strings.ToLower(a.config.Source) {
	case SourceNone:
		return
	case SourceResume:
		_, err = a.sourceService.ResumeLast()
		if errors.Is(err, domain.ErrSourceUnavailable) {
			a.logger.Debug("no previous source to resume")
			return
		}
	case SourceTone:
		var tone *audio.ToneStream
		tone, err = audio.NewTone(audio.DefaultToneConfig())
		if err == nil {
			err = a.sourceService.StartStream(tone, tone.Info())
		}
	default:
		_, err = a.sourceService.OpenFile(a.config.Source)
	}
	if err != nil {
		a.logger.Warn("failed to start source", slog.String("source", a.config.Source), slog.Any("error", err))
	}
}

// Start begins rendering and opens the configured source without showing
// the window.
func (a *Application) Start() error {
	if err := a.renderLoop.Start(); err != nil && !errors.Is(err, domain.ErrAlreadyRunning) {
		return fmt.Errorf("failed to start render loop: %w", err)
	}
	a.startSource()
	return nil
}

// Run starts the application.
// This is called from main.go after the application is created.
func (a *Application) Run() error {
	if err := a.Start(); err != nil {
		return err
	}
	a.logger.Info("vizwave started",
		slog.String("shape", string(a.configService.Config().Shape)),
		slog.Int("fps", a.config.FPS))

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.Run()
	return nil
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		// Stop painting before the source goes away
		if a.renderLoop != nil {
			a.renderLoop.Stop()
		}
		a.eventBus.Unsubscribe(a.shapeSub)

		var errs []error
		if a.sourceService != nil {
			if err := a.sourceService.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close source service: %w", err))
			}
		}
		errs = append(errs, a.closeInfrastructure())

		a.shutdownErr = errors.Join(errs...)
		if a.shutdownErr != nil {
			a.logger.Warn("shutdown finished with errors", slog.Any("error", a.shutdownErr))
		}
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}

// closeInfrastructure releases the clock, the output and the bus.
func (a *Application) closeInfrastructure() error {
	var errs []error
	if a.ticker != nil {
		if err := a.ticker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ticker: %w", err))
		}
	}
	// the source service closes the output when it exists
	if a.sourceService == nil && a.output != nil {
		if err := a.output.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audio output: %w", err))
		}
	}
	if err := a.eventBus.Close(); err != nil && !errors.Is(err, eventbus.ErrClosed) {
		errs = append(errs, fmt.Errorf("close event bus: %w", err))
	}
	return errors.Join(errs...)
}

// GetServices returns the application services.
func (a *Application) GetServices() (*service.ConfigService, *service.SourceService, *service.RenderLoop) {
	return a.configService, a.sourceService, a.renderLoop
}

// GetEventBus returns the event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetSurface returns the surface the render loop paints on.
func (a *Application) GetSurface() *raster.Surface {
	return a.surface
}
