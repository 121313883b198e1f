// Package domain contains the core visualizer model.
// These types are independent of infrastructure (fyne, rasterx, decoders) and
// describe what is drawn, not how.
package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Shape selects exactly one active renderer.
type Shape string

// Supported shapes.
const (
	ShapeCircular Shape = "circular"
	ShapeBars     Shape = "bars"
	ShapeWaveform Shape = "waveform"
)

// Shapes returns all supported shapes in display order.
func Shapes() []Shape {
	return []Shape{ShapeCircular, ShapeBars, ShapeWaveform}
}

// IsValid reports whether s names a known renderer.
func (s Shape) IsValid() bool {
	switch s {
	case ShapeCircular, ShapeBars, ShapeWaveform:
		return true
	}
	return false
}

// Next returns the shape after s, wrapping around.
func (s Shape) Next() Shape {
	shapes := Shapes()
	for i, shape := range shapes {
		if shape == s {
			return shapes[(i+1)%len(shapes)]
		}
	}
	return ShapeCircular
}

// ParseShape converts a user supplied name into a Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	return s, nil
}

// RGB is an 8-bit per channel color.
// It marshals to and from the "#rrggbb" form so it round-trips through TOML and JSON.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses a "#RRGGBB" string. The leading '#' is optional and case is ignored.
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex returns the lowercase "#rrggbb" form.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseRGB(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ColorScheme is the primary/secondary pair every gradient and blend is computed from.
type ColorScheme struct {
	Name      string `json:"name" toml:"name"`
	Group     string `json:"group" toml:"group"`
	Primary   RGB    `json:"primary" toml:"primary"`
	Secondary RGB    `json:"secondary" toml:"secondary"`
}

// FrequencyRange restricts which part of the spectrum the bars renderer reads.
type FrequencyRange string

// Frequency ranges as fractions of the bin count.
const (
	RangeFull  FrequencyRange = "full"  // 0-100%
	RangeBass  FrequencyRange = "bass"  // 0-15%
	RangeMids  FrequencyRange = "mids"  // 15-50%
	RangeHighs FrequencyRange = "highs" // 50-100%
)

// Bounds returns the [start, end) fractions of the spectrum covered by r.
// Unknown values behave like RangeFull.
func (r FrequencyRange) Bounds() (start, end float64) {
	switch r {
	case RangeBass:
		return 0, 0.15
	case RangeMids:
		return 0.15, 0.5
	case RangeHighs:
		return 0.5, 1
	default:
		return 0, 1
	}
}

// IsValid reports whether r is a known range.
func (r FrequencyRange) IsValid() bool {
	switch r {
	case RangeFull, RangeBass, RangeMids, RangeHighs:
		return true
	}
	return false
}

// ColorMode selects how ripple strokes are colored.
type ColorMode string

// Ripple color modes.
const (
	ColorModeSolid     ColorMode = "solid"
	ColorModeFrequency ColorMode = "frequency"
	ColorModeGradient  ColorMode = "gradient"
)

// IsValid reports whether m is a known color mode.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorModeSolid, ColorModeFrequency, ColorModeGradient:
		return true
	}
	return false
}

// SpeakerPattern selects the emblem drawn at the center of the ripple renderer.
type SpeakerPattern string

// Speaker patterns.
const (
	SpeakerRings  SpeakerPattern = "rings"
	SpeakerRadial SpeakerPattern = "radial"
	SpeakerPulse  SpeakerPattern = "pulse"
	SpeakerStar   SpeakerPattern = "star"
)

// IsValid reports whether p is a known pattern.
func (p SpeakerPattern) IsValid() bool {
	switch p {
	case SpeakerRings, SpeakerRadial, SpeakerPulse, SpeakerStar:
		return true
	}
	return false
}

// CircularConfig holds the tunables of the circular renderer.
// Radii and heights are fractions of min(width, height).
type CircularConfig struct {
	Poles              int     `json:"poles" toml:"poles"`
	BaseRadiusMin      float64 `json:"baseRadiusMin" toml:"base_radius_min"`
	BaseRadiusMax      float64 `json:"baseRadiusMax" toml:"base_radius_max"`
	MaxBarHeight       float64 `json:"maxBarHeight" toml:"max_bar_height"`
	BarCount           int     `json:"barCount" toml:"bar_count"`
	RotationOffset     float64 `json:"rotationOffset" toml:"rotation_offset"` // degrees
	BassResponseCircle bool    `json:"bassResponseCircle" toml:"bass_response_circle"`
	AutoRotate         bool    `json:"autoRotate" toml:"auto_rotate"`
	RotationSpeed      float64 `json:"rotationSpeed" toml:"rotation_speed"` // degrees per frame
	JaggedCircle       bool    `json:"jaggedCircle" toml:"jagged_circle"`
}

// BarsConfig holds the tunables of the edge/bars renderer.
type BarsConfig struct {
	Poles          int            `json:"poles" toml:"poles"`
	BarCount       int            `json:"barCount" toml:"bar_count"` // per pole
	BarLength      float64        `json:"barLength" toml:"bar_length"`
	ReactiveFade   bool           `json:"reactiveFade" toml:"reactive_fade"`
	Gradient       bool           `json:"gradient" toml:"gradient"`
	BassPulse      bool           `json:"bassPulse" toml:"bass_pulse"`
	MirrorMode     bool           `json:"mirrorMode" toml:"mirror_mode"`
	FrequencyRange FrequencyRange `json:"frequencyRange" toml:"frequency_range"`
	CullThreshold  float64        `json:"cullThreshold" toml:"cull_threshold"`
}

// WaveformConfig holds the tunables of the ripple/waveform renderer.
type WaveformConfig struct {
	LineCount        int            `json:"lineCount" toml:"line_count"`
	LinePoints       int            `json:"linePoints" toml:"line_points"`
	LineSpacing      float64        `json:"lineSpacing" toml:"line_spacing"`
	LineWidth        float64        `json:"lineWidth" toml:"line_width"`
	AmplitudeScale   float64        `json:"amplitudeScale" toml:"amplitude_scale"`
	ViewAngle        float64        `json:"viewAngle" toml:"view_angle"` // degrees
	CameraTilt       float64        `json:"cameraTilt" toml:"camera_tilt"`
	DepthCompression float64        `json:"depthCompression" toml:"depth_compression"`
	RippleSpeed      float64        `json:"rippleSpeed" toml:"ripple_speed"`
	BassThreshold    float64        `json:"bassThreshold" toml:"bass_threshold"`
	SizeScaling      float64        `json:"sizeScaling" toml:"size_scaling"`
	ColorMode        ColorMode      `json:"colorMode" toml:"color_mode"`
	SpeakerPattern   SpeakerPattern `json:"speakerPattern" toml:"speaker_pattern"`
	FillContours     bool           `json:"fillContours" toml:"fill_contours"`
}

// Config is the complete visualizer configuration.
// A Config is treated as a value: renderers receive a copy per frame and
// never write to it.
type Config struct {
	Shape       Shape       `json:"shape" toml:"shape"`
	ColorScheme ColorScheme `json:"colorScheme" toml:"color_scheme"`
	FadeAmount  float64     `json:"fadeAmount" toml:"fade_amount"`
	Smoothing   bool        `json:"smoothing" toml:"smoothing"`

	Circular *CircularConfig `json:"circularConfig,omitempty" toml:"circular,omitempty"`
	Bars     *BarsConfig     `json:"barsConfig,omitempty" toml:"bars,omitempty"`
	Waveform *WaveformConfig `json:"waveformConfig,omitempty" toml:"waveform,omitempty"`
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	out := c
	if c.Circular != nil {
		v := *c.Circular
		out.Circular = &v
	}
	if c.Bars != nil {
		v := *c.Bars
		out.Bars = &v
	}
	if c.Waveform != nil {
		v := *c.Waveform
		out.Waveform = &v
	}
	return out
}

// CircularOrDefault returns the circular sub-config, or the canonical default when absent.
func (c Config) CircularOrDefault() CircularConfig {
	if c.Circular == nil {
		return DefaultCircularConfig()
	}
	return *c.Circular
}

// BarsOrDefault returns the bars sub-config, or the canonical default when absent.
func (c Config) BarsOrDefault() BarsConfig {
	if c.Bars == nil {
		return DefaultBarsConfig()
	}
	return *c.Bars
}

// WaveformOrDefault returns the waveform sub-config, or the canonical default when absent.
func (c Config) WaveformOrDefault() WaveformConfig {
	if c.Waveform == nil {
		return DefaultWaveformConfig()
	}
	return *c.Waveform
}

// SourceKind identifies where analysed audio comes from.
type SourceKind string

// Source kinds. Only file and tone can be opened by this build.
const (
	SourceFile       SourceKind = "file"
	SourceTone       SourceKind = "tone"
	SourceMicrophone SourceKind = "microphone"
	SourceTab        SourceKind = "tab"
	SourceSystem     SourceKind = "system"
)

// SourceInfo describes an opened audio source.
type SourceInfo struct {
	Kind       SourceKind
	Path       string
	Title      string
	Artist     string
	Album      string
	Format     string
	SampleRate int
	Channels   int
	Duration   time.Duration // Zero when unknown or unbounded
}

// DisplayName returns the best human readable label for the source.
func (s SourceInfo) DisplayName() string {
	switch {
	case s.Title != "" && s.Artist != "":
		return s.Artist + " - " + s.Title
	case s.Title != "":
		return s.Title
	case s.Path != "":
		return s.Path
	default:
		return string(s.Kind)
	}
}

// FrameStats is the data behind the stats overlay.
type FrameStats struct {
	FPS           int
	AvgMagnitude  int // 0..255
	PeakMagnitude int // 0..255
	BassLevel     int // 0..255
	FFTSize       int
	Shape         Shape
	Smoothing     bool

	Painted uint64
	Skipped uint64
	Failed  uint64
}
