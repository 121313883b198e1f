package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRGB(t *testing.T) {
	c, err := ParseRGB("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 255, G: 128, B: 0}, c)
	assert.Equal(t, "#ff8000", c.Hex())

	c, err = ParseRGB("0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 10, G: 11, B: 12}, c)

	for _, bad := range []string{"", "#fff", "#gggggg", "#1234567"} {
		_, err := ParseRGB(bad)
		assert.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}

func TestRGBText(t *testing.T) {
	var c RGB
	require.NoError(t, c.UnmarshalText([]byte("#00d4ff")))
	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#00d4ff", string(text))
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape(" Bars ")
	require.NoError(t, err)
	assert.Equal(t, ShapeBars, s)

	_, err = ParseShape("spiral")
	assert.ErrorIs(t, err, ErrUnknownShape)

	assert.Equal(t, ShapeBars, ShapeCircular.Next())
	assert.Equal(t, ShapeCircular, ShapeWaveform.Next())
}

func TestPresets(t *testing.T) {
	presets := ColorPresets()
	require.Len(t, presets, 34)

	groups := map[string]int{}
	names := map[string]bool{}
	for _, p := range presets {
		groups[p.Group]++
		assert.False(t, names[p.Name], "duplicate preset %s", p.Name)
		names[p.Name] = true
	}
	assert.Equal(t, 8, groups[GroupClassic])
	assert.Equal(t, 14, groups[GroupExotic])
	assert.Equal(t, 12, groups[GroupLegendary])

	p, err := PresetByName("blade runner")
	require.NoError(t, err)
	assert.Equal(t, "#ff6e00", p.Primary.Hex())
	assert.Equal(t, "#00ffff", p.Secondary.Hex())

	_, err = PresetByName("nope")
	assert.ErrorIs(t, err, ErrUnknownPreset)

	assert.Equal(t, "Electric Blue", NextPreset("White").Name)
	assert.Equal(t, "White", NextPreset("Mad Max Fury").Name)

	// Mutating the returned slice must not leak into the catalogue.
	presets[0].Name = "changed"
	assert.Equal(t, "White", DefaultColorScheme().Name)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ShapeCircular, cfg.Shape)
	assert.Equal(t, "White", cfg.ColorScheme.Name)
	assert.InDelta(t, 0.5, cfg.FadeAmount, 1e-9)
	assert.True(t, cfg.Smoothing)
}

func TestDefaultsAreFreshValues(t *testing.T) {
	a := DefaultConfig()
	a.Circular.BarCount = 1
	b := DefaultConfig()
	assert.Equal(t, 360, b.Circular.BarCount)
	assert.Equal(t, DefaultCircularConfig(), Config{}.CircularOrDefault())
	assert.Equal(t, DefaultBarsConfig(), Config{}.BarsOrDefault())
	assert.Equal(t, DefaultWaveformConfig(), Config{}.WaveformOrDefault())
}

func TestCloneIsDeep(t *testing.T) {
	a := DefaultConfig()
	b := a.Clone()
	b.Bars.BarCount = 8
	b.Waveform.LineCount = 3
	assert.Equal(t, 256, a.Bars.BarCount)
	assert.Equal(t, 50, a.Waveform.LineCount)
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Shape: "bogus", Bars: &BarsConfig{Poles: 3, BarCount: 10, BarLength: 0.5}}
	out := cfg.WithDefaults()

	assert.Equal(t, ShapeCircular, out.Shape)
	assert.Equal(t, DefaultColorScheme(), out.ColorScheme)
	assert.InDelta(t, 0.5, out.FadeAmount, 1e-9)
	require.NotNil(t, out.Circular)
	require.NotNil(t, out.Waveform)
	assert.Equal(t, 3, out.Bars.Poles)
	assert.Equal(t, RangeFull, out.Bars.FrequencyRange)
	assert.Empty(t, cfg.Bars.FrequencyRange, "input must not be modified")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"fade zero", func(c *Config) { c.FadeAmount = 0 }, "fadeAmount"},
		{"fade above one", func(c *Config) { c.FadeAmount = 1.5 }, "fadeAmount"},
		{"shape", func(c *Config) { c.Shape = "x" }, "shape"},
		{"circular bars", func(c *Config) { c.Circular.BarCount = 0 }, "circular.barCount"},
		{"circular radii", func(c *Config) { c.Circular.BaseRadiusMax = 0.05 }, "circular.baseRadiusMax"},
		{"bars poles", func(c *Config) { c.Bars.Poles = 13 }, "bars.poles"},
		{"bars range", func(c *Config) { c.Bars.FrequencyRange = "sub" }, "bars.frequencyRange"},
		{"waveform points", func(c *Config) { c.Waveform.LinePoints = 4 }, "waveform.linePoints"},
		{"waveform pattern", func(c *Config) { c.Waveform.SpeakerPattern = "cube" }, "waveform.speakerPattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("absent sub-configs are valid", func(t *testing.T) {
		cfg := Config{Shape: ShapeWaveform, FadeAmount: 1}
		assert.NoError(t, cfg.Validate())
	})
}

func TestFrequencyRangeBounds(t *testing.T) {
	start, end := RangeMids.Bounds()
	assert.InDelta(t, 0.15, start, 1e-9)
	assert.InDelta(t, 0.5, end, 1e-9)

	start, end = FrequencyRange("").Bounds()
	assert.Zero(t, start)
	assert.InDelta(t, 1, end, 1e-9)
}
