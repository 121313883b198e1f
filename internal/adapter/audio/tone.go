package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// ToneConfig describes a synthetic test signal: a sum of sine partials whose
// loudness pulses at PulseHz, so bass-triggered effects have something to
// react to.
type ToneConfig struct {
	SampleRate  int
	Channels    int
	Frequencies []float64 // Hz
	Amplitude   float64   // peak of the mixed signal, 0..1
	PulseHz     float64   // 0 keeps the level constant
	Duration    time.Duration
}

// DefaultToneConfig returns an endless four partial tone pulsing twice a second.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		SampleRate:  44100,
		Channels:    2,
		Frequencies: []float64{55, 220, 880, 3520},
		Amplitude:   0.8,
		PulseHz:     2,
	}
}

// Validate checks the settings.
func (c ToneConfig) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return domain.NewValidationError("tone.sample_rate", c.SampleRate, "must be positive")
	case c.Channels < 1:
		return domain.NewValidationError("tone.channels", c.Channels, "must be at least 1")
	case len(c.Frequencies) == 0:
		return domain.NewValidationError("tone.frequencies", c.Frequencies, "need at least one partial")
	case c.Amplitude < 0 || c.Amplitude > 1:
		return domain.NewValidationError("tone.amplitude", c.Amplitude, "must be in [0, 1]")
	case c.PulseHz < 0:
		return domain.NewValidationError("tone.pulse_hz", c.PulseHz, "must not be negative")
	case c.Duration < 0:
		return domain.NewValidationError("tone.duration", c.Duration, "must not be negative")
	}
	for _, f := range c.Frequencies {
		if f <= 0 || f >= float64(c.SampleRate)/2 {
			return domain.NewValidationError("tone.frequencies", f, "partials must be below the Nyquist rate")
		}
	}
	return nil
}

// ToneStream generates a ToneConfig signal. It is a ports.PCMStream, so it
// plays through the same outputs as decoded files.
type ToneStream struct {
	cfg    ToneConfig
	frame  int64
	frames int64 // 0 means endless
	closed bool
}

var _ ports.PCMStream = (*ToneStream)(nil)

// NewTone creates a tone stream.
func NewTone(cfg ToneConfig) (*ToneStream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Frequencies = append([]float64(nil), cfg.Frequencies...)
	return &ToneStream{
		cfg:    cfg,
		frames: int64(cfg.Duration.Seconds() * float64(cfg.SampleRate)),
	}, nil
}

// Info describes the tone as a source.
func (t *ToneStream) Info() domain.SourceInfo {
	return domain.SourceInfo{
		Kind:       domain.SourceTone,
		Title:      fmt.Sprintf("Test tone (%d partials)", len(t.cfg.Frequencies)),
		Format:     "tone",
		SampleRate: t.cfg.SampleRate,
		Channels:   t.cfg.Channels,
		Duration:   t.cfg.Duration,
	}
}

func (t *ToneStream) Format() ports.StreamFormat {
	return ports.StreamFormat{SampleRate: t.cfg.SampleRate, Channels: t.cfg.Channels}
}

func (t *ToneStream) Duration() time.Duration { return t.cfg.Duration }

func (t *ToneStream) Close() error {
	t.closed = true
	return nil
}

func (t *ToneStream) Read(dst []float64) (int, error) {
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	ch := t.cfg.Channels
	frames := int64(len(dst) / ch)
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	if t.frames > 0 {
		frames = min(frames, t.frames-t.frame)
		if frames <= 0 {
			return 0, io.EOF
		}
	}

	rate := float64(t.cfg.SampleRate)
	gain := t.cfg.Amplitude / float64(len(t.cfg.Frequencies))
	for f := range frames {
		ts := float64(t.frame+f) / rate
		v := 0.0
		for _, freq := range t.cfg.Frequencies {
			v += math.Sin(2 * math.Pi * freq * ts)
		}
		v *= gain
		if t.cfg.PulseHz > 0 {
			v *= 0.55 + 0.45*math.Sin(2*math.Pi*t.cfg.PulseHz*ts)
		}
		base := int(f) * ch
		for c := range ch {
			dst[base+c] = v
		}
	}
	t.frame += frames
	return int(frames) * ch, nil
}
