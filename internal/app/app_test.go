package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/testutil"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	config := DefaultConfig()
	config.TestFyneApp = test.NewTempApp(t)
	config.Mute = true
	config.Source = SourceNone
	config.LogLevel = slog.LevelError
	config.Width = 160
	config.Height = 120
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "com.vizwave.app", config.AppID)
	assert.Equal(t, "vizwave", config.AppName)
	assert.Equal(t, 60, config.FPS)
	assert.Equal(t, SourceResume, config.Source)
	assert.False(t, config.Mute)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig()
	config.FPS = 0
	var verr *domain.ValidationError
	assert.ErrorAs(t, config.Validate(), &verr)

	config = DefaultConfig()
	config.Width = -1
	assert.ErrorAs(t, config.Validate(), &verr)

	_, err := NewApplication(config)
	assert.Error(t, err)
}

func TestNewApplication(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify all services were created
	config, source, loop := app.GetServices()
	assert.NotNil(t, config)
	assert.NotNil(t, source)
	assert.NotNil(t, loop)

	assert.NotNil(t, app.GetEventBus())
	assert.NotNil(t, app.GetFyneApp())
	w, h := app.GetSurface().Size()
	assert.Equal(t, 160, w)
	assert.Equal(t, 120, h)

	assert.NoError(t, app.Shutdown())
}

func TestApplicationLifecycle(t *testing.T) {
	cfg := testConfig(t)
	defer testutil.VerifyNoLeaks(t, append(testutil.IgnoreFyneGoroutines(), goleak.IgnoreCurrent())...)

	app, err := NewApplication(cfg)
	require.NoError(t, err)

	require.NoError(t, app.Start())
	require.NoError(t, app.Start(), "starting twice is harmless")

	_, _, loop := app.GetServices()
	assert.True(t, loop.IsRunning())

	require.NoError(t, app.Shutdown())
	assert.False(t, loop.IsRunning())

	// Shutdown again should not panic
	assert.NoError(t, app.Shutdown())
}

func TestApplication_RendererFollowsConfig(t *testing.T) {
	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	defer app.Shutdown()
	require.NoError(t, app.Start())

	config, _, loop := app.GetServices()
	assert.Equal(t, domain.ShapeCircular, loop.Shape())

	require.NoError(t, config.SetShape(domain.ShapeWaveform))
	assert.Equal(t, domain.ShapeWaveform, loop.Shape())
}

func TestApplication_OverridesAndConfigFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConfigPath = filepath.Join(t.TempDir(), "vizwave.toml")
	cfg.Shape = "Bars"
	cfg.Preset = domain.ColorPresets()[3].Name

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Start())

	config, _, loop := app.GetServices()
	assert.Equal(t, domain.ShapeBars, config.Config().Shape)
	assert.Equal(t, domain.ShapeBars, loop.Shape())
	assert.Equal(t, cfg.Preset, config.Config().ColorScheme.Name)
	require.NoError(t, app.Shutdown())

	// the overrides were saved to the file
	cfg.Shape = ""
	cfg.Preset = ""
	cfg.TestFyneApp = test.NewTempApp(t)
	again, err := NewApplication(cfg)
	require.NoError(t, err)
	defer again.Shutdown()
	config, _, _ = again.GetServices()
	assert.Equal(t, domain.ShapeBars, config.Config().Shape)
}

func TestApplication_RejectsUnknownOverrides(t *testing.T) {
	cfg := testConfig(t)
	cfg.Shape = "spiral"
	_, err := NewApplication(cfg)
	assert.ErrorIs(t, err, domain.ErrUnknownShape)

	cfg = testConfig(t)
	cfg.Preset = "Not A Preset"
	_, err = NewApplication(cfg)
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)
}

func TestApplication_RejectsLiveCaptureSources(t *testing.T) {
	for _, source := range []string{"microphone", "Tab", "system"} {
		cfg := testConfig(t)
		cfg.Source = source
		_, err := NewApplication(cfg)
		assert.ErrorIs(t, err, domain.ErrUnsupportedSource, source)

		_, err = Export(context.Background(), cfg, ExportOptions{Dir: t.TempDir(), Frames: 1})
		assert.ErrorIs(t, err, domain.ErrUnsupportedSource, source)
	}
}

func TestApplication_StartsToneSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source = SourceTone

	app, err := NewApplication(cfg)
	require.NoError(t, err)
	defer app.Shutdown()
	require.NoError(t, app.Start())

	_, source, _ := app.GetServices()
	info, ok := source.Current()
	require.True(t, ok)
	assert.Equal(t, domain.SourceTone, info.Kind)
	assert.NotNil(t, source.ActiveSource())
}

func TestExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.TestFyneApp = nil
	cfg.Source = SourceTone
	cfg.Shape = "waveform"
	cfg.FPS = 30

	dir := filepath.Join(t.TempDir(), "out")
	result, err := Export(context.Background(), cfg, ExportOptions{Dir: dir, Frames: 3, Prefix: "viz", Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Frames)

	files, err := filepath.Glob(filepath.Join(dir, "viz_*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestExport_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source = filepath.Join(t.TempDir(), "missing.mp3")
	_, err := Export(context.Background(), cfg, ExportOptions{Dir: t.TempDir(), Frames: 1})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Preset = "Not A Preset"
	_, err = Export(context.Background(), cfg, ExportOptions{Dir: t.TempDir(), Frames: 1})
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)

	cfg = testConfig(t)
	_, err = Export(context.Background(), cfg, ExportOptions{Dir: t.TempDir(), Frames: 0})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
