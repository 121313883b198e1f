package visualizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/adapter/canvas/recorder"
	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// uniformFrame returns a frame whose bins all hold freq and whose waveform
// alternates around 128 by swing.
func uniformFrame(n int, freq byte, swing int) Frame {
	f := Frame{Frequency: make([]byte, n), TimeDomain: make([]byte, n)}
	for i := 0; i < n; i++ {
		f.Frequency[i] = freq
		if i%2 == 0 {
			f.TimeDomain[i] = byte(128 + swing)
		} else {
			f.TimeDomain[i] = byte(128 - swing)
		}
	}
	return f
}

func loudFrame(n int) Frame {
	return uniformFrame(n, 255, 100)
}

func silentFrame(n int) Frame {
	return uniformFrame(n, 0, 0)
}

func solidAlpha(t *testing.T, p ports.Paint) uint8 {
	t.Helper()
	s, ok := p.(ports.Solid)
	require.True(t, ok, "expected solid paint, got %T", p)
	return s.Color.A
}

func TestFactory(t *testing.T) {
	for _, info := range GetTypes() {
		r, err := Factory(info.Shape)
		require.NoError(t, err)
		assert.Equal(t, info.Shape, r.Shape())
	}

	_, err := Factory("spiral")
	assert.ErrorIs(t, err, domain.ErrUnknownShape)
}

// TestDefaultSubstitutionIsIdempotent renders each shape twice with its
// sub-config absent and expects identical output both times.
func TestDefaultSubstitutionIsIdempotent(t *testing.T) {
	for _, shape := range domain.Shapes() {
		t.Run(string(shape), func(t *testing.T) {
			cfg := domain.Config{Shape: shape, ColorScheme: domain.DefaultColorScheme(), FadeAmount: 0.4, Smoothing: true}
			frame := loudFrame(512)

			first := recorder.New(640, 480)
			r1, err := Factory(shape)
			require.NoError(t, err)
			r1.Render(first, frame, cfg)

			second := recorder.New(640, 480)
			r2, err := Factory(shape)
			require.NoError(t, err)
			r2.Render(second, frame, cfg)

			assert.NotEmpty(t, first.DrawCalls())
			assert.Equal(t, first.Calls(), second.Calls())
			assert.Nil(t, cfg.Circular)
			assert.Nil(t, cfg.Bars)
			assert.Nil(t, cfg.Waveform)

			// The same as passing the defaults explicitly.
			explicit := recorder.New(640, 480)
			r3, err := Factory(shape)
			require.NoError(t, err)
			full := domain.DefaultConfig()
			full.Shape, full.FadeAmount = shape, 0.4
			r3.Render(explicit, frame, full)
			assert.Equal(t, first.Calls(), explicit.Calls())
		})
	}
}

func TestRenderersSkipEmptyCanvas(t *testing.T) {
	for _, shape := range domain.Shapes() {
		r, err := Factory(shape)
		require.NoError(t, err)
		c := recorder.New(0, 0)
		r.Render(c, loudFrame(256), domain.DefaultConfig())
		assert.Empty(t, c.Calls(), shape)
	}
}

func TestRenderersTolerateEmptyFrame(t *testing.T) {
	for _, shape := range domain.Shapes() {
		r, err := Factory(shape)
		require.NoError(t, err)
		c := recorder.New(320, 240)
		assert.NotPanics(t, func() { r.Render(c, Frame{}, domain.DefaultConfig()) }, shape)
		assert.False(t, c.NonFinite(), shape)
		assert.Zero(t, c.Depth(), shape)
	}
}

// TestSingleBarGeometry drives every shape at its smallest count.
func TestSingleBarGeometry(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Circular.BarCount = 1
	cfg.Bars.BarCount = 1
	cfg.Waveform.LineCount = 1
	cfg.Waveform.LinePoints = 8

	for _, shape := range domain.Shapes() {
		t.Run(string(shape), func(t *testing.T) {
			r, err := Factory(shape)
			require.NoError(t, err)
			c := recorder.New(400, 300)
			for i := 0; i < 5; i++ {
				r.Render(c, loudFrame(64), cfg)
			}
			assert.False(t, c.NonFinite())
			assert.Zero(t, c.Depth())
		})
	}
}
