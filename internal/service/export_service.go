package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// SteppingScheduler is a frame clock advanced by hand. Step fires the
// pending frames on the calling goroutine.
type SteppingScheduler interface {
	ports.FrameScheduler
	Step(dt time.Duration) int
}

// SnapshotCanvas is a canvas whose presented pixels can be copied out.
type SnapshotCanvas interface {
	ports.Canvas
	Snapshot() *image.RGBA
}

// AudioStepper pushes one frame's worth of audio into the analyser per
// Step. It returns domain.ErrSourceEnded or io.EOF once the audio is
// exhausted.
type AudioStepper interface {
	Step() error
}

// ExportJob is everything one export needs.
type ExportJob struct {
	Config    domain.Config
	Scheduler SteppingScheduler
	Canvas    SnapshotCanvas
	Source    ports.AnalysisSource
	Audio     AudioStepper // nil renders the source as it is

	Dir     string
	Prefix  string // file name prefix, "frame" if empty
	Frames  int
	FPS     int
	Workers int // PNG encoders, 1 if not positive
}

// ExportResult reports what an export wrote.
type ExportResult struct {
	Frames int
	Dir    string
	Ended  bool // audio ran out before Frames were rendered
}

// ExportService renders frames offline, as fast as the machine allows, and
// writes them as numbered PNG files. Audio is fed one frame interval per
// frame so the pictures match what would have been heard.
type ExportService struct {
	// Dependencies (injected)
	logger *slog.Logger
	bus    ports.EventBus
}

// NewExportService creates an export service.
func NewExportService(logger *slog.Logger, bus ports.EventBus) *ExportService {
	logger.Debug("export service initialized")
	return &ExportService{logger: logger, bus: bus}
}

type exportFrame struct {
	index int
	img   *image.RGBA
}

// Export runs job. Rendering happens on the calling goroutine through the
// job's scheduler; encoding runs on job.Workers goroutines.
func (s *ExportService) Export(ctx context.Context, job ExportJob) (ExportResult, error) {
	if err := job.validate(); err != nil {
		return ExportResult{}, err
	}
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("create export directory: %w", err)
	}
	prefix := job.Prefix
	if prefix == "" {
		prefix = "frame"
	}
	workers := max(job.Workers, 1)
	dt := time.Second / time.Duration(job.FPS)

	cfg := job.Config.Clone()
	loop := NewRenderLoop(s.logger, job.Scheduler, HostFuncs{
		SourceFunc: func() ports.AnalysisSource { return job.Source },
		CanvasFunc: func() ports.Canvas { return job.Canvas },
		ConfigFunc: func() domain.Config { return cfg.Clone() },
	}, s.bus)

	s.logger.Info("export started",
		slog.String("dir", job.Dir),
		slog.Int("frames", job.Frames),
		slog.String("shape", string(cfg.Shape)))

	var written atomic.Int64
	var ended bool

	g, gctx := errgroup.WithContext(ctx)
	frames := make(chan exportFrame, workers)

	for range workers {
		g.Go(func() error {
			for f := range frames {
				path := filepath.Join(job.Dir, fmt.Sprintf("%s_%05d.png", prefix, f.index))
				if err := writePNG(path, f.img); err != nil {
					return err
				}
				written.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(frames)

		if err := loop.Start(); err != nil {
			return err
		}
		defer loop.Stop()

		for i := range job.Frames {
			if err := gctx.Err(); err != nil {
				return err
			}
			if job.Audio != nil {
				if err := job.Audio.Step(); err != nil {
					if errors.Is(err, domain.ErrSourceEnded) || errors.Is(err, io.EOF) {
						ended = true
						return nil
					}
					return fmt.Errorf("feed audio for frame %d: %w", i, err)
				}
			}
			job.Scheduler.Step(dt)

			select {
			case frames <- exportFrame{index: i, img: job.Canvas.Snapshot()}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	result := ExportResult{Frames: int(written.Load()), Dir: job.Dir, Ended: ended}
	if err != nil {
		s.logger.Error("export failed", slog.Int("written", result.Frames), slog.Any("error", err))
		return result, err
	}

	s.logger.Info("export finished", slog.Int("frames", result.Frames), slog.Bool("audio_ended", ended))
	return result, nil
}

func (j ExportJob) validate() error {
	switch {
	case j.Scheduler == nil:
		return domain.NewValidationError("scheduler", nil, "required")
	case j.Canvas == nil:
		return domain.NewServiceError("ExportService", "Export", "no canvas", domain.ErrCanvasUnavailable)
	case j.Source == nil:
		return domain.NewServiceError("ExportService", "Export", "no analysis source", domain.ErrSourceUnavailable)
	case j.Dir == "":
		return domain.NewValidationError("dir", j.Dir, "required")
	case j.Frames <= 0:
		return domain.NewValidationError("frames", j.Frames, "must be positive")
	case j.FPS <= 0:
		return domain.NewValidationError("fps", j.FPS, "must be positive")
	}
	if w, h := j.Canvas.Size(); w <= 0 || h <= 0 {
		return domain.NewServiceError("ExportService", "Export",
			fmt.Sprintf("canvas is %dx%d", w, h), domain.ErrCanvasUnavailable)
	}
	return j.Config.Validate()
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
