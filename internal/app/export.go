package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/analyser"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/audio"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/raster"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/repository/file"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
	"github.com/tejashwikalptaru/vizwave/internal/service"
)

// ExportOptions selects what a headless export writes.
type ExportOptions struct {
	Dir     string
	Frames  int
	Prefix  string
	Workers int // 0 uses one encoder per CPU
}

// Export renders opts.Frames frames of config.Source without a window and
// writes them as PNG files. SourceResume and SourceNone render the test
// tone, since there is nothing to resume without saved state.
func Export(ctx context.Context, config Config, opts ExportOptions) (service.ExportResult, error) {
	if err := config.Validate(); err != nil {
		return service.ExportResult{}, err
	}
	log := newLogger(config)
	bus := newEventBus(log)
	defer func() { _ = bus.Close() }()

	cfg, err := loadExportConfig(config, log)
	if err != nil {
		return service.ExportResult{}, err
	}

	a, err := analyser.New(analyser.DefaultConfig())
	if err != nil {
		return service.ExportResult{}, fmt.Errorf("failed to create analyser: %w", err)
	}

	stream, info, err := openExportSource(config.Source, log)
	if err != nil {
		return service.ExportResult{}, err
	}
	defer func() { _ = stream.Close() }()
	stream = audio.Resample(stream, a.SampleRate())

	log.Info("exporting",
		slog.String("source", info.DisplayName()),
		slog.String("dir", opts.Dir),
		slog.Int("frames", opts.Frames))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	exporter := service.NewExportService(log.With(slog.String("service", "export")), bus)
	return exporter.Export(ctx, service.ExportJob{
		Config:    cfg,
		Scheduler: scheduler.NewManual(time.Unix(0, 0)),
		Canvas:    raster.New(config.Width, config.Height),
		Source:    a,
		Audio:     audio.NewFeeder(stream, a, max(1, stream.Format().SampleRate/config.FPS)),
		Dir:       opts.Dir,
		Prefix:    opts.Prefix,
		Frames:    opts.Frames,
		FPS:       config.FPS,
		Workers:   workers,
	})
}

// loadExportConfig reads the TOML settings, if any, and applies the
// overrides. The preferences store is not consulted headless.
func loadExportConfig(config Config, log *slog.Logger) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if config.ConfigPath != "" {
		loaded, err := file.NewTOMLRepository(config.ConfigPath, logger.Component(log, "config-file")).LoadConfig()
		if err != nil {
			log.Warn("failed to load config file, using defaults", slog.Any("error", err))
		} else {
			cfg = loaded
		}
	}
	if err := applyOverrides(&cfg, config.Shape, config.Preset); err != nil {
		return domain.Config{}, err
	}
	cfg = cfg.WithDefaults()
	return cfg, cfg.Validate()
}

func openExportSource(source string, log *slog.Logger) (ports.PCMStream, domain.SourceInfo, error) {
	switch strings.ToLower(source) {
	case SourceResume, SourceNone, SourceTone:
		tone, err := audio.NewTone(audio.DefaultToneConfig())
		if err != nil {
			return nil, domain.SourceInfo{}, err
		}
		return tone, tone.Info(), nil
	}
	return audio.NewFileOpener(logger.Component(log, "opener")).Open(source)
}
