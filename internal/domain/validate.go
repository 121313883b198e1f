package domain

import "math"

// Validate checks every field against the ranges the settings controls allow.
// It returns the first *ValidationError found. Absent sub-configs are valid;
// renderers fall back to defaults for them.
func (c Config) Validate() error {
	if !c.Shape.IsValid() {
		return NewValidationError("shape", c.Shape, "unknown shape")
	}
	if !(c.FadeAmount > 0 && c.FadeAmount <= 1) {
		return NewValidationError("fadeAmount", c.FadeAmount, "must be in (0, 1]")
	}
	if c.Circular != nil {
		if err := c.Circular.Validate(); err != nil {
			return err
		}
	}
	if c.Bars != nil {
		if err := c.Bars.Validate(); err != nil {
			return err
		}
	}
	if c.Waveform != nil {
		if err := c.Waveform.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the circular tunables.
func (c CircularConfig) Validate() error {
	switch {
	case c.Poles < 1 || c.Poles > 10:
		return NewValidationError("circular.poles", c.Poles, "must be between 1 and 10")
	case !inRange(c.BaseRadiusMin, 0, 1):
		return NewValidationError("circular.baseRadiusMin", c.BaseRadiusMin, "must be between 0 and 1")
	case !inRange(c.BaseRadiusMax, 0, 1):
		return NewValidationError("circular.baseRadiusMax", c.BaseRadiusMax, "must be between 0 and 1")
	case c.BaseRadiusMax < c.BaseRadiusMin:
		return NewValidationError("circular.baseRadiusMax", c.BaseRadiusMax, "must not be below baseRadiusMin")
	case !inRange(c.MaxBarHeight, 0.01, 1):
		return NewValidationError("circular.maxBarHeight", c.MaxBarHeight, "must be between 0.01 and 1")
	case c.BarCount < 1 || c.BarCount > 720:
		return NewValidationError("circular.barCount", c.BarCount, "must be between 1 and 720")
	case !inRange(c.RotationOffset, 0, 360):
		return NewValidationError("circular.rotationOffset", c.RotationOffset, "must be between 0 and 360")
	case !inRange(c.RotationSpeed, 0, 1):
		return NewValidationError("circular.rotationSpeed", c.RotationSpeed, "must be between 0 and 1")
	}
	return nil
}

// Validate checks the bars tunables.
func (c BarsConfig) Validate() error {
	switch {
	case c.Poles < 1 || c.Poles > 12:
		return NewValidationError("bars.poles", c.Poles, "must be between 1 and 12")
	case c.BarCount < 1 || c.BarCount > 256:
		return NewValidationError("bars.barCount", c.BarCount, "must be between 1 and 256")
	case !inRange(c.BarLength, 0.05, 1):
		return NewValidationError("bars.barLength", c.BarLength, "must be between 0.05 and 1")
	case !c.FrequencyRange.IsValid():
		return NewValidationError("bars.frequencyRange", c.FrequencyRange, "unknown frequency range")
	case !inRange(c.CullThreshold, 0, 1):
		return NewValidationError("bars.cullThreshold", c.CullThreshold, "must be between 0 and 1")
	}
	return nil
}

// Validate checks the ripple tunables.
func (c WaveformConfig) Validate() error {
	switch {
	case c.LineCount < 1 || c.LineCount > 100:
		return NewValidationError("waveform.lineCount", c.LineCount, "must be between 1 and 100")
	case c.LinePoints < 8 || c.LinePoints > 512:
		return NewValidationError("waveform.linePoints", c.LinePoints, "must be between 8 and 512")
	case !inRange(c.LineSpacing, 1, 20):
		return NewValidationError("waveform.lineSpacing", c.LineSpacing, "must be between 1 and 20")
	case !inRange(c.LineWidth, 0.5, 5):
		return NewValidationError("waveform.lineWidth", c.LineWidth, "must be between 0.5 and 5")
	case !inRange(c.AmplitudeScale, 0.1, 2):
		return NewValidationError("waveform.amplitudeScale", c.AmplitudeScale, "must be between 0.1 and 2")
	case !inRange(c.ViewAngle, 0, 360):
		return NewValidationError("waveform.viewAngle", c.ViewAngle, "must be between 0 and 360")
	case !inRange(c.CameraTilt, 0.1, 1):
		return NewValidationError("waveform.cameraTilt", c.CameraTilt, "must be between 0.1 and 1")
	case !inRange(c.DepthCompression, 0.1, 1):
		return NewValidationError("waveform.depthCompression", c.DepthCompression, "must be between 0.1 and 1")
	case !inRange(c.RippleSpeed, 0.1, 3):
		return NewValidationError("waveform.rippleSpeed", c.RippleSpeed, "must be between 0.1 and 3")
	case !inRange(c.BassThreshold, 0, 1):
		return NewValidationError("waveform.bassThreshold", c.BassThreshold, "must be between 0 and 1")
	case !inRange(c.SizeScaling, 0, 2):
		return NewValidationError("waveform.sizeScaling", c.SizeScaling, "must be between 0 and 2")
	case !c.ColorMode.IsValid():
		return NewValidationError("waveform.colorMode", c.ColorMode, "unknown color mode")
	case !c.SpeakerPattern.IsValid():
		return NewValidationError("waveform.speakerPattern", c.SpeakerPattern, "unknown speaker pattern")
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
