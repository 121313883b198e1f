// Package analyser turns a stream of PCM samples into the byte-quantized
// spectrum and waveform buffers the renderers read, with the same scaling
// as a browser AnalyserNode: Blackman window, 1/N magnitude, exponential
// smoothing over time and a decibel range mapped onto 0..255.
package analyser

import (
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/noriah/catnip/fft"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// FFT size limits.
const (
	MinFFTSize = 32
	MaxFFTSize = 32768
)

// Config holds analyser settings.
type Config struct {
	FFTSize    int     // power of two in [MinFFTSize, MaxFFTSize]
	SampleRate int     // rate of the samples written in, for labelling bins
	Smoothing  float64 // time constant in [0, 1); 0 disables smoothing
	MinDB      float64 // maps to 0
	MaxDB      float64 // maps to 255
}

// DefaultConfig matches the browser defaults the visualizer was tuned with.
func DefaultConfig() Config {
	return Config{
		FFTSize:    2048,
		SampleRate: 44100,
		Smoothing:  0.8,
		MinDB:      -100,
		MaxDB:      -30,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.FFTSize < MinFFTSize || c.FFTSize > MaxFFTSize || bits.OnesCount(uint(c.FFTSize)) != 1 {
		return fmt.Errorf("fft size %d: must be a power of two in [%d, %d]", c.FFTSize, MinFFTSize, MaxFFTSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate %d: must be positive", c.SampleRate)
	}
	if math.IsNaN(c.Smoothing) || c.Smoothing < 0 || c.Smoothing >= 1 {
		return fmt.Errorf("smoothing %v: must be in [0, 1)", c.Smoothing)
	}
	if !(c.MinDB < c.MaxDB) {
		return fmt.Errorf("decibel range [%v, %v] is empty", c.MinDB, c.MaxDB)
	}
	return nil
}

// Analyser keeps the last FFTSize samples in a ring and analyses them on
// demand. BufferLength is FFTSize/2.
//
// Thread-safety: WriteSamples may run on an audio goroutine while the render
// goroutine reads; all state is behind one mutex.
type Analyser struct {
	cfg Config

	mu       sync.Mutex
	ring     []float64
	pos      int
	input    []float64
	spectrum []complex128
	plan     *fft.Plan
	coeffs   []float64
	smoothed []float64
}

var _ ports.Analyser = (*Analyser)(nil)

// New creates an analyser.
func New(cfg Config) (*Analyser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.FFTSize
	a := &Analyser{
		cfg:      cfg,
		ring:     make([]float64, n),
		input:    make([]float64, n),
		spectrum: make([]complex128, n/2+1),
		smoothed: make([]float64, n/2),
		coeffs:   make([]float64, n),
	}
	for i := range a.coeffs {
		a.coeffs[i] = 1
	}
	window.Blackman(a.coeffs)
	fft.InitPlan(&a.plan, a.input, a.spectrum)
	return a, nil
}

// BufferLength returns the number of frequency bins (FFTSize/2).
func (a *Analyser) BufferLength() int {
	return a.cfg.FFTSize / 2
}

// SampleRate returns the configured input rate.
func (a *Analyser) SampleRate() int {
	return a.cfg.SampleRate
}

// BinFrequency returns the center frequency of bin i in Hz.
func (a *Analyser) BinFrequency(i int) float64 {
	return float64(i) * float64(a.cfg.SampleRate) / float64(a.cfg.FFTSize)
}

// WriteSamples appends mono samples to the ring, dropping the oldest.
func (a *Analyser) WriteSamples(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.ring)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	for len(samples) > 0 {
		c := copy(a.ring[a.pos:], samples)
		samples = samples[c:]
		a.pos = (a.pos + c) % n
	}
}

// FrequencyMagnitudes analyses the newest FFTSize samples and writes the
// quantized magnitudes into dst.
func (a *Analyser) FrequencyMagnitudes(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.unroll(a.input)
	for i, c := range a.coeffs {
		a.input[i] *= c
	}
	a.plan.Execute()

	scale := 1 / float64(a.cfg.FFTSize)
	tau := a.cfg.Smoothing
	dbRange := a.cfg.MaxDB - a.cfg.MinDB
	for k := range a.smoothed {
		re, im := real(a.spectrum[k]), imag(a.spectrum[k])
		mag := math.Sqrt(re*re+im*im) * scale
		v := tau*a.smoothed[k] + (1-tau)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
		if k < len(dst) {
			dst[k] = quantizeDB(20*math.Log10(v), a.cfg.MinDB, dbRange)
		}
	}
}

// TimeDomainSamples writes the newest BufferLength samples into dst,
// 128 being silence.
func (a *Analyser) TimeDomainSamples(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.ring)
	m := min(len(dst), a.BufferLength())
	start := a.pos - a.BufferLength()
	for i := 0; i < m; i++ {
		dst[i] = quantizeSample(a.ring[((start+i)%n+n)%n])
	}
}

// Reset clears the sample ring and the smoothing history.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.ring)
	clear(a.smoothed)
	a.pos = 0
}

// unroll copies the ring into dst oldest first.
func (a *Analyser) unroll(dst []float64) {
	c := copy(dst, a.ring[a.pos:])
	copy(dst[c:], a.ring[:a.pos])
}

func quantizeDB(db, minDB, dbRange float64) byte {
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return 0
	}
	v := math.Floor(255 / dbRange * (db - minDB))
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}

func quantizeSample(s float64) byte {
	if math.IsNaN(s) {
		return 128
	}
	v := math.Floor(128 * (s + 1))
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}
