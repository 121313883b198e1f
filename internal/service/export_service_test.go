package service

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/analyser"
	audioadapter "github.com/tejashwikalptaru/vizwave/internal/adapter/audio"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/raster"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/vizwave/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
	"github.com/tejashwikalptaru/vizwave/internal/testutil"
)

func newExportJob(t *testing.T, stream *audioadapter.ToneStream, frames int) ExportJob {
	t.Helper()
	a, err := analyser.New(analyser.DefaultConfig())
	require.NoError(t, err)

	const fps = 30
	return ExportJob{
		Config:    domain.DefaultConfig(),
		Scheduler: scheduler.NewManual(time.Unix(0, 0)),
		Canvas:    raster.New(96, 64),
		Source:    a,
		Audio:     audioadapter.NewFeeder(stream, a, stream.Format().SampleRate/fps),
		Dir:       filepath.Join(t.TempDir(), "frames"),
		Frames:    frames,
		FPS:       fps,
		Workers:   2,
	}
}

func newTestExportService(t *testing.T) (*ExportService, *eventLog) {
	t.Helper()
	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })
	return NewExportService(logger.NewTestLogger(), bus), newEventLog(bus)
}

func TestExportService_WritesNumberedFrames(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	service, events := newTestExportService(t)

	tone, err := audioadapter.NewTone(audioadapter.DefaultToneConfig())
	require.NoError(t, err)
	job := newExportJob(t, tone, 5)

	result, err := service.Export(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Frames)
	assert.False(t, result.Ended)

	entries, err := os.ReadDir(job.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "frame_00000.png", entries[0].Name())
	assert.Equal(t, "frame_00004.png", entries[4].Name())

	f, err := os.Open(filepath.Join(job.Dir, "frame_00004.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 96, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	stopped := events.ofType(domain.EventVisualizationStopped)
	require.Len(t, stopped, 1)
	assert.Equal(t, uint64(5), stopped[0].(domain.VisualizationStoppedEvent).Frames)
}

func TestExportService_StopsWhenAudioEnds(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	service, _ := newTestExportService(t)

	cfg := audioadapter.DefaultToneConfig()
	cfg.Duration = 100 * time.Millisecond
	tone, err := audioadapter.NewTone(cfg)
	require.NoError(t, err)
	job := newExportJob(t, tone, 30)
	job.Prefix = "wave"

	result, err := service.Export(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, result.Ended)
	assert.Equal(t, 3, result.Frames, "a tenth of a second at 30 fps")

	matches, err := filepath.Glob(filepath.Join(job.Dir, "wave_*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestExportService_Cancelled(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)
	service, _ := newTestExportService(t)

	tone, err := audioadapter.NewTone(audioadapter.DefaultToneConfig())
	require.NoError(t, err)
	job := newExportJob(t, tone, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := service.Export(ctx, job)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, result.Frames, 1000)
}

func TestExportService_RejectsBadJobs(t *testing.T) {
	service, _ := newTestExportService(t)
	tone, err := audioadapter.NewTone(audioadapter.DefaultToneConfig())
	require.NoError(t, err)

	job := newExportJob(t, tone, 0)
	_, err = service.Export(context.Background(), job)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	job = newExportJob(t, tone, 1)
	job.Source = nil
	_, err = service.Export(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	job = newExportJob(t, tone, 1)
	job.Canvas = raster.New(0, 0)
	_, err = service.Export(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrCanvasUnavailable)

	job = newExportJob(t, tone, 1)
	job.Config.Shape = "spiral"
	_, err = service.Export(context.Background(), job)
	assert.Error(t, err)
}
