package analyser

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, rate, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func argmax(b []byte) int {
	best := 0
	for i, v := range b {
		if v > b[best] {
			best = i
		}
	}
	return best
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	for _, mutate := range []func(*Config){
		func(c *Config) { c.FFTSize = 1000 },
		func(c *Config) { c.FFTSize = 16 },
		func(c *Config) { c.FFTSize = 65536 },
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.Smoothing = 1 },
		func(c *Config) { c.Smoothing = -0.1 },
		func(c *Config) { c.MinDB = -30 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate())
		_, err := New(cfg)
		assert.Error(t, err)
	}
}

func TestSilence(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1024, a.BufferLength())

	freq := make([]byte, a.BufferLength())
	td := make([]byte, a.BufferLength())
	a.FrequencyMagnitudes(freq)
	a.TimeDomainSamples(td)

	for i := range freq {
		require.Zero(t, freq[i])
		require.Equal(t, byte(128), td[i])
	}
}

func TestSinePeak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 48000
	cfg.Smoothing = 0
	a, err := New(cfg)
	require.NoError(t, err)

	const bin = 64
	f := a.BinFrequency(bin)
	assert.InDelta(t, 1500, f, 1e-9)

	a.WriteSamples(sine(cfg.FFTSize, f, 48000, 0.01))
	freq := make([]byte, a.BufferLength())
	a.FrequencyMagnitudes(freq)

	assert.Equal(t, bin, argmax(freq))
	assert.Greater(t, freq[bin], byte(100))
	assert.Zero(t, freq[400], "far bins stay under the floor")
}

func TestSmoothingDecays(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	freq := make([]byte, a.BufferLength())

	a.WriteSamples(sine(2048, a.BinFrequency(32), 44100, 0.01))
	for i := 0; i < 20; i++ {
		a.FrequencyMagnitudes(freq)
	}
	loud := freq[32]
	require.NotZero(t, loud)

	a.WriteSamples(make([]float64, 2048))
	a.FrequencyMagnitudes(freq)
	assert.NotZero(t, freq[32], "smoothing keeps some energy for a frame")
	assert.Less(t, freq[32], loud)

	for i := 0; i < 200; i++ {
		a.FrequencyMagnitudes(freq)
	}
	assert.Zero(t, freq[32])
}

func TestTimeDomainNewestSamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FFTSize = 32
	a, err := New(cfg)
	require.NoError(t, err)

	ramp := make([]float64, 40)
	for i := range ramp {
		ramp[i] = float64(i)/20 - 1
	}
	a.WriteSamples(ramp[:7])
	a.WriteSamples(ramp[7:])

	td := make([]byte, a.BufferLength())
	a.TimeDomainSamples(td)
	for i := range td {
		assert.Equal(t, quantizeSample(ramp[40-16+i]), td[i], "index %d", i)
	}

	// short destinations get the oldest part of the window
	short := make([]byte, 4)
	a.TimeDomainSamples(short)
	assert.Equal(t, td[:4], short)
}

func TestQuantizeSample(t *testing.T) {
	assert.Equal(t, byte(128), quantizeSample(0))
	assert.Equal(t, byte(255), quantizeSample(1))
	assert.Equal(t, byte(0), quantizeSample(-1))
	assert.Equal(t, byte(255), quantizeSample(4))
	assert.Equal(t, byte(0), quantizeSample(-4))
	assert.Equal(t, byte(192), quantizeSample(0.5))
	assert.Equal(t, byte(128), quantizeSample(math.NaN()))
}

func TestQuantizeDB(t *testing.T) {
	assert.Zero(t, quantizeDB(math.Inf(-1), -100, 70))
	assert.Zero(t, quantizeDB(-120, -100, 70))
	assert.Equal(t, byte(255), quantizeDB(-30, -100, 70))
	assert.Equal(t, byte(255), quantizeDB(0, -100, 70))
	assert.Equal(t, byte(127), quantizeDB(-65, -100, 70))
}

func TestReset(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	a.WriteSamples(sine(4096, 440, 44100, 0.5))

	a.Reset()
	td := make([]byte, a.BufferLength())
	a.TimeDomainSamples(td)
	for _, v := range td {
		require.Equal(t, byte(128), v)
	}
}

func TestConcurrentWriteAndRead(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)

	block := sine(512, 440, 44100, 0.8)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			a.WriteSamples(block)
		}
	}()

	freq := make([]byte, a.BufferLength())
	td := make([]byte, a.BufferLength())
	for i := 0; i < 50; i++ {
		a.FrequencyMagnitudes(freq)
		a.TimeDomainSamples(td)
	}
	wg.Wait()
}
