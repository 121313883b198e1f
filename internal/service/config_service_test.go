package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/logger"
)

// Mock config repository for testing
type mockConfigRepository struct {
	mu      sync.RWMutex
	cfg     *domain.Config
	path    string
	saves   int
	cleared int
	loadErr error
	saveErr error
}

func newMockConfigRepository() *mockConfigRepository {
	return &mockConfigRepository{}
}

func (m *mockConfigRepository) SaveConfig(cfg domain.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	c := cfg.Clone()
	m.cfg = &c
	m.saves++
	return nil
}

func (m *mockConfigRepository) LoadConfig() (domain.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadErr != nil {
		return domain.Config{}, m.loadErr
	}
	if m.cfg == nil {
		return domain.DefaultConfig(), nil
	}
	return m.cfg.Clone(), nil
}

func (m *mockConfigRepository) SaveSourcePath(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = path
	return nil
}

func (m *mockConfigRepository) LoadSourcePath() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path, nil
}

func (m *mockConfigRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = nil
	m.path = ""
	m.cleared++
	return nil
}

func (m *mockConfigRepository) saved() (domain.Config, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg == nil {
		return domain.Config{}, m.saves
	}
	return m.cfg.Clone(), m.saves
}

func newTestConfigService(t *testing.T, repo *mockConfigRepository) (*ConfigService, *eventLog) {
	t.Helper()
	bus := eventbus.NewSyncEventBus()
	t.Cleanup(func() { _ = bus.Close() })
	events := newEventLog(bus)
	return NewConfigService(logger.NewTestLogger(), repo, bus), events
}

func TestConfigService_LoadsSavedConfig(t *testing.T) {
	repo := newMockConfigRepository()
	cfg := domain.DefaultConfig()
	cfg.Shape = domain.ShapeWaveform
	cfg.FadeAmount = 0.2
	require.NoError(t, repo.SaveConfig(cfg))

	service, _ := newTestConfigService(t, repo)
	assert.Equal(t, cfg, service.Config())
}

func TestConfigService_LoadErrorFallsBackToDefaults(t *testing.T) {
	repo := newMockConfigRepository()
	repo.loadErr = errors.New("disk on fire")

	service, _ := newTestConfigService(t, repo)
	assert.Equal(t, domain.DefaultConfig(), service.Config())
}

func TestConfigService_ConfigIsACopy(t *testing.T) {
	service, _ := newTestConfigService(t, newMockConfigRepository())

	cfg := service.Config()
	cfg.Circular.BarCount = 3
	cfg.Shape = domain.ShapeBars

	fresh := service.Config()
	assert.Equal(t, domain.DefaultCircularConfig().BarCount, fresh.Circular.BarCount)
	assert.Equal(t, domain.ShapeCircular, fresh.Shape)
}

func TestConfigService_UpdatePublishesAndSaves(t *testing.T) {
	repo := newMockConfigRepository()
	service, events := newTestConfigService(t, repo)

	require.NoError(t, service.SetFadeAmount(0.3))

	assert.Equal(t, 0.3, service.Config().FadeAmount)
	saved, saves := repo.saved()
	assert.Equal(t, 1, saves)
	assert.Equal(t, 0.3, saved.FadeAmount)

	changed := events.ofType(domain.EventConfigChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, 0.3, changed[0].(domain.ConfigChangedEvent).Config.FadeAmount)
}

func TestConfigService_RejectsInvalidUpdate(t *testing.T) {
	repo := newMockConfigRepository()
	service, events := newTestConfigService(t, repo)

	err := service.SetFadeAmount(1.5)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	err = service.Update(func(c *domain.Config) { c.Bars.Poles = 99 })
	require.Error(t, err)

	assert.Equal(t, domain.DefaultConfig(), service.Config())
	_, saves := repo.saved()
	assert.Zero(t, saves)
	assert.Empty(t, events.ofType(domain.EventConfigChanged))

	assert.Error(t, service.SetShape("spiral"))
	assert.ErrorIs(t, service.SetPreset("No Such Preset"), domain.ErrUnknownPreset)
}

func TestConfigService_SaveErrorKeepsNewConfig(t *testing.T) {
	repo := newMockConfigRepository()
	repo.saveErr = errors.New("read-only")
	service, _ := newTestConfigService(t, repo)

	require.Error(t, service.SetShape(domain.ShapeBars))
	assert.Equal(t, domain.ShapeBars, service.Config().Shape)
}

func TestConfigService_Cycling(t *testing.T) {
	service, _ := newTestConfigService(t, newMockConfigRepository())

	shape, err := service.NextShape()
	require.NoError(t, err)
	assert.Equal(t, domain.ShapeBars, shape)
	shape, err = service.NextShape()
	require.NoError(t, err)
	assert.Equal(t, domain.ShapeWaveform, shape)
	shape, err = service.NextShape()
	require.NoError(t, err)
	assert.Equal(t, domain.ShapeCircular, shape)

	presets := domain.ColorPresets()
	require.NoError(t, service.SetPreset(presets[0].Name))
	scheme, err := service.NextPreset()
	require.NoError(t, err)
	assert.Equal(t, presets[1], scheme)
	assert.Equal(t, presets[1], service.Config().ColorScheme)

	on, err := service.ToggleSmoothing()
	require.NoError(t, err)
	assert.False(t, on)
	on, err = service.ToggleSmoothing()
	require.NoError(t, err)
	assert.True(t, on)
}

func TestConfigService_ResetToDefaults(t *testing.T) {
	repo := newMockConfigRepository()
	service, _ := newTestConfigService(t, repo)

	require.NoError(t, service.SetShape(domain.ShapeWaveform))
	require.NoError(t, repo.SaveSourcePath("/a.wav"))

	require.NoError(t, service.ResetToDefaults())
	assert.Equal(t, domain.DefaultConfig(), service.Config())
	assert.Equal(t, 1, repo.cleared)
	path, _ := repo.LoadSourcePath()
	assert.Empty(t, path)
}

func TestConfigService_ConcurrentReadersSeeWholeConfigs(t *testing.T) {
	service, _ := newTestConfigService(t, newMockConfigRepository())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			fade := 0.1
			if i%2 == 1 {
				fade = 0.9
			}
			_ = service.Update(func(c *domain.Config) {
				c.FadeAmount = fade
				c.Circular.BarCount = int(fade * 100)
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			cfg := service.Config()
			if cfg.FadeAmount == 0.1 || cfg.FadeAmount == 0.9 {
				assert.Equal(t, int(cfg.FadeAmount*100), cfg.Circular.BarCount)
			}
		}
	}()
	wg.Wait()
}
