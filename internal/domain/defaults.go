package domain

// Canonical defaults. Every place that needs a default sub-config goes
// through these functions; they return fresh values so callers can modify
// their copy freely.

// DefaultCircularConfig returns the default circular renderer tunables.
func DefaultCircularConfig() CircularConfig {
	return CircularConfig{
		Poles:              2,
		BaseRadiusMin:      0.1,
		BaseRadiusMax:      0.25,
		MaxBarHeight:       0.35,
		BarCount:           360,
		RotationOffset:     130,
		BassResponseCircle: true,
		AutoRotate:         false,
		RotationSpeed:      0.1,
		JaggedCircle:       false,
	}
}

// DefaultBarsConfig returns the default edge/bars renderer tunables.
func DefaultBarsConfig() BarsConfig {
	return BarsConfig{
		Poles:          2,
		BarCount:       256,
		BarLength:      0.75,
		ReactiveFade:   false,
		Gradient:       false,
		BassPulse:      false,
		MirrorMode:     false,
		FrequencyRange: RangeFull,
		CullThreshold:  0.03,
	}
}

// DefaultWaveformConfig returns the default ripple renderer tunables.
func DefaultWaveformConfig() WaveformConfig {
	return WaveformConfig{
		LineCount:        50,
		LinePoints:       256,
		LineSpacing:      8,
		LineWidth:        2,
		AmplitudeScale:   1,
		ViewAngle:        315,
		CameraTilt:       0.5,
		DepthCompression: 0.5,
		RippleSpeed:      1,
		BassThreshold:    0.15,
		SizeScaling:      0.5,
		ColorMode:        ColorModeGradient,
		SpeakerPattern:   SpeakerRings,
		FillContours:     false,
	}
}

// DefaultConfig returns the complete default configuration with every
// sub-config populated.
func DefaultConfig() Config {
	circular := DefaultCircularConfig()
	bars := DefaultBarsConfig()
	waveform := DefaultWaveformConfig()
	return Config{
		Shape:       ShapeCircular,
		ColorScheme: DefaultColorScheme(),
		FadeAmount:  0.5,
		Smoothing:   true,
		Circular:    &circular,
		Bars:        &bars,
		Waveform:    &waveform,
	}
}

// WithDefaults fills every absent sub-config with its default and replaces
// zero-valued top-level fields. Stored configs from older versions go
// through this before use.
func (c Config) WithDefaults() Config {
	out := c.Clone()
	def := DefaultConfig()
	if !out.Shape.IsValid() {
		out.Shape = def.Shape
	}
	if out.ColorScheme == (ColorScheme{}) {
		out.ColorScheme = def.ColorScheme
	}
	if out.FadeAmount <= 0 || out.FadeAmount > 1 {
		out.FadeAmount = def.FadeAmount
	}
	if out.Circular == nil {
		out.Circular = def.Circular
	}
	if out.Bars == nil {
		out.Bars = def.Bars
	}
	if out.Waveform == nil {
		out.Waveform = def.Waveform
	}
	if !out.Bars.FrequencyRange.IsValid() {
		out.Bars.FrequencyRange = RangeFull
	}
	if !out.Waveform.ColorMode.IsValid() {
		out.Waveform.ColorMode = ColorModeGradient
	}
	if !out.Waveform.SpeakerPattern.IsValid() {
		out.Waveform.SpeakerPattern = SpeakerRings
	}
	return out
}
