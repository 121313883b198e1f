// Package memory implements ports.ConfigRepository on top of the Fyne
// preferences store, which lives in the app's settings directory.
package memory

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// Preference keys. Every top-level field is stored on its own so that one
// bad value only resets that field.
const (
	keyShape       = "visualizer.shape"
	keyColorScheme = "visualizer.color_scheme"
	keyFadeAmount  = "visualizer.fade_amount"
	keySmoothing   = "visualizer.smoothing"
	keyCircular    = "visualizer.circular"
	keyBars        = "visualizer.bars"
	keyWaveform    = "visualizer.waveform"
	keySourcePath  = "source.last_path"
)

var allKeys = []string{
	keyShape, keyColorScheme, keyFadeAmount, keySmoothing,
	keyCircular, keyBars, keyWaveform, keySourcePath,
}

// PreferencesRepository implements ports.ConfigRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveConfig persists every field of cfg. Absent sub-configs are removed so
// they load as defaults.
func (r *PreferencesRepository) SaveConfig(cfg domain.Config) error {
	scheme, err := json.Marshal(cfg.ColorScheme)
	if err != nil {
		return domain.NewRepositoryError("save", "preferences", "failed to marshal color scheme", err)
	}
	subs := map[string]any{
		keyCircular: cfg.Circular,
		keyBars:     cfg.Bars,
		keyWaveform: cfg.Waveform,
	}
	encoded := make(map[string]string, len(subs))
	for key, sub := range subs {
		if isNilSub(sub) {
			continue
		}
		data, err := json.Marshal(sub)
		if err != nil {
			return domain.NewRepositoryError("save", "preferences", "failed to marshal "+key, err)
		}
		encoded[key] = string(data)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyShape, string(cfg.Shape))
	r.prefs.SetString(keyColorScheme, string(scheme))
	r.prefs.SetFloat(keyFadeAmount, cfg.FadeAmount)
	r.prefs.SetBool(keySmoothing, cfg.Smoothing)
	for key := range subs {
		if data, ok := encoded[key]; ok {
			r.prefs.SetString(key, data)
		} else {
			r.prefs.RemoveValue(key)
		}
	}
	return nil
}

// LoadConfig rebuilds the configuration field by field. A field that was
// never saved, does not parse, or fails validation takes its default;
// sub-configs are decoded over their defaults so fields added later keep
// default values.
func (r *PreferencesRepository) LoadConfig() (domain.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def := domain.DefaultConfig()
	cfg := def

	if shape, err := domain.ParseShape(r.prefs.StringWithFallback(keyShape, string(def.Shape))); err == nil {
		cfg.Shape = shape
	}

	if data := r.prefs.String(keyColorScheme); data != "" {
		scheme := def.ColorScheme
		if err := json.Unmarshal([]byte(data), &scheme); err == nil {
			cfg.ColorScheme = scheme
		}
	}

	if fade := r.prefs.FloatWithFallback(keyFadeAmount, def.FadeAmount); fade > 0 && fade <= 1 {
		cfg.FadeAmount = fade
	}
	cfg.Smoothing = r.prefs.BoolWithFallback(keySmoothing, def.Smoothing)

	circular := domain.DefaultCircularConfig()
	if r.decode(keyCircular, &circular) && circular.Validate() == nil {
		cfg.Circular = &circular
	}
	bars := domain.DefaultBarsConfig()
	if r.decode(keyBars, &bars) && bars.Validate() == nil {
		cfg.Bars = &bars
	}
	waveform := domain.DefaultWaveformConfig()
	if r.decode(keyWaveform, &waveform) && waveform.Validate() == nil {
		cfg.Waveform = &waveform
	}

	return cfg, nil
}

// decode unmarshals the JSON stored under key into v. It reports false when
// nothing is stored or the data is corrupt. Must be called with r.mu held.
func (r *PreferencesRepository) decode(key string, v any) bool {
	data := r.prefs.String(key)
	if data == "" {
		return false
	}
	return json.Unmarshal([]byte(data), v) == nil
}

// SaveSourcePath remembers the last opened file.
func (r *PreferencesRepository) SaveSourcePath(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keySourcePath, path)
	return nil
}

// LoadSourcePath returns the last opened file, or "".
func (r *PreferencesRepository) LoadSourcePath() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(keySourcePath), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range allKeys {
		r.prefs.RemoveValue(key)
	}
	return nil
}

func isNilSub(v any) bool {
	switch s := v.(type) {
	case *domain.CircularConfig:
		return s == nil
	case *domain.BarsConfig:
		return s == nil
	case *domain.WaveformConfig:
		return s == nil
	}
	return v == nil
}

// Verify interface implementation
var _ ports.ConfigRepository = (*PreferencesRepository)(nil)
