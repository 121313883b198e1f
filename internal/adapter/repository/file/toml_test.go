package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
)

func newRepo(t *testing.T) *TOMLRepository {
	t.Helper()
	return NewTOMLRepository(filepath.Join(t.TempDir(), "nested", DefaultFileName), logger.NewTestLogger())
}

func TestTOMLRepository_MissingFileGivesDefaults(t *testing.T) {
	repo := newRepo(t)

	cfg, err := repo.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)

	path, err := repo.LoadSourcePath()
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestTOMLRepository_RoundTrip(t *testing.T) {
	repo := newRepo(t)

	scheme, err := domain.PresetByName("Blade Runner")
	require.NoError(t, err)
	cfg := domain.DefaultConfig()
	cfg.Shape = domain.ShapeBars
	cfg.ColorScheme = scheme
	cfg.FadeAmount = 0.35
	cfg.Bars.MirrorMode = true
	cfg.Bars.FrequencyRange = domain.RangeHighs
	cfg.Waveform.ColorMode = domain.ColorModeFrequency

	require.NoError(t, repo.SaveSourcePath("/music/a.ogg"))
	require.NoError(t, repo.SaveConfig(cfg))

	loaded, err := repo.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	path, err := repo.LoadSourcePath()
	require.NoError(t, err)
	assert.Equal(t, "/music/a.ogg", path, "saving the config keeps the source path")
}

func TestTOMLRepository_PartialFileKeepsDefaults(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0o755))
	require.NoError(t, os.WriteFile(repo.Path(), []byte(`
[visualizer]
shape = "waveform"

[visualizer.color_scheme]
primary = "#FF0000"

[visualizer.waveform]
line_count = 12
speaker_pattern = "radial"

[visualizer.bars]
poles = 40
`), 0o600))

	cfg, err := repo.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, domain.ShapeWaveform, cfg.Shape)
	assert.Equal(t, domain.RGB{R: 255}, cfg.ColorScheme.Primary)
	assert.Equal(t, domain.DefaultColorScheme().Secondary, cfg.ColorScheme.Secondary)
	assert.Equal(t, 0.5, cfg.FadeAmount)
	assert.True(t, cfg.Smoothing)

	want := domain.DefaultWaveformConfig()
	want.LineCount = 12
	want.SpeakerPattern = domain.SpeakerRadial
	assert.Equal(t, want, *cfg.Waveform)

	assert.Equal(t, domain.DefaultBarsConfig(), *cfg.Bars, "out of range section resets")
	assert.Equal(t, domain.DefaultCircularConfig(), *cfg.Circular)
}

func TestTOMLRepository_CorruptFile(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(repo.Path()), 0o755))
	require.NoError(t, os.WriteFile(repo.Path(), []byte("[visualizer\nshape = "), 0o600))

	cfg, err := repo.LoadConfig()
	require.Error(t, err)
	var repoErr *domain.RepositoryError
	assert.ErrorAs(t, err, &repoErr)
	assert.Equal(t, domain.DefaultConfig(), cfg)

	// saving over a corrupt file replaces it
	require.NoError(t, repo.SaveConfig(domain.DefaultConfig()))
	_, err = repo.LoadConfig()
	assert.NoError(t, err)
}

func TestTOMLRepository_Clear(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.SaveSourcePath("/x.wav"))
	_, err := os.Stat(repo.Path())
	require.NoError(t, err)

	require.NoError(t, repo.Clear())
	require.NoError(t, repo.Clear())
	_, err = os.Stat(repo.Path())
	assert.True(t, os.IsNotExist(err))
}
