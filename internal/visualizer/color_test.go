package visualizer

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

const hexDigits = "0123456789abcdef"

// TestHexRoundTrip walks every 24-bit color through hex -> RGB -> rgba string.
func TestHexRoundTrip(t *testing.T) {
	step := 1
	if testing.Short() {
		step = 257
	}

	hex := []byte("#000000")
	for v := 0; v < 1<<24; v += step {
		for i := 0; i < 6; i++ {
			hex[6-i] = hexDigits[(v>>(4*i))&0xf]
		}
		c, err := ParseHex(string(hex))
		if err != nil {
			t.Fatalf("ParseHex(%s): %v", hex, err)
		}

		r, g, b := v>>16, (v>>8)&0xff, v&0xff
		want := "rgba(" + strconv.Itoa(r) + ", " + strconv.Itoa(g) + ", " + strconv.Itoa(b) + ", 1)"
		if got := RGBA(c, 1); got != want {
			t.Fatalf("RGBA(%s) = %s, want %s", hex, got, want)
		}
	}
}

func TestRGBAAlpha(t *testing.T) {
	c := domain.RGB{R: 1, G: 2, B: 3}
	assert.Equal(t, "rgba(1, 2, 3, 0.5)", RGBA(c, 0.5))
	assert.Equal(t, "rgba(1, 2, 3, 0)", RGBA(c, -2))
	assert.Equal(t, "rgba(1, 2, 3, 1)", RGBA(c, 7))
}

func TestMustParseHexPanics(t *testing.T) {
	assert.Equal(t, domain.RGB{R: 0xab, G: 0xcd, B: 0xef}, MustParseHex("#ABCDEF"))
	assert.Panics(t, func() { MustParseHex("#abc") })
}

func TestChannel(t *testing.T) {
	assert.Equal(t, uint8(0), Channel(-3))
	assert.Equal(t, uint8(255), Channel(300))
	assert.Equal(t, uint8(128), Channel(127.5))
	assert.Equal(t, uint8(127), Channel(127.4))
}

func TestToNRGBA(t *testing.T) {
	c := domain.RGB{R: 10, G: 20, B: 30}
	got := ToNRGBA(c, 0.5)
	assert.Equal(t, uint8(10), got.R)
	assert.Equal(t, uint8(128), got.A)

	assert.Equal(t, uint8(255), ToNRGBA(c, 1).A)
	assert.Equal(t, uint8(0), ToNRGBA(c, 0).A)
	assert.Equal(t, uint8(1), ToNRGBA(c, 0.0001).A, "positive alpha must stay visible")
}

// TestFadeAlphaBounds checks every fade amount in (0, 1] yields a usable alpha.
func TestFadeAlphaBounds(t *testing.T) {
	for i := 1; i <= 10000; i++ {
		fade := float64(i) / 10000
		a := ToNRGBA(black, fade).A
		require.GreaterOrEqual(t, a, uint8(1), "fade %v", fade)
		require.LessOrEqual(t, a, uint8(255), "fade %v", fade)
	}
}

func TestLerp(t *testing.T) {
	a := domain.RGB{}
	b := domain.RGB{R: 255, G: 255, B: 255}

	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))
	assert.Equal(t, domain.RGB{R: 128, G: 128, B: 128}, Lerp(a, b, 0.5))
	assert.Equal(t, a, Lerp(a, b, -1), "t is clamped")
	assert.Equal(t, b, Lerp(a, b, 2), "t is clamped")

	red := domain.RGB{R: 255}
	blue := domain.RGB{B: 255}
	mid := LerpAlpha(red, blue, 0.25, 0.4)
	assert.Equal(t, uint8(191), mid.R)
	assert.Equal(t, uint8(64), mid.B)
	assert.Equal(t, uint8(102), mid.A)
}

func TestScale(t *testing.T) {
	c := domain.RGB{R: 200, G: 100, B: 10}
	assert.Equal(t, domain.RGB{R: 100, G: 50, B: 5}, Scale(c, 0.5))
	assert.Equal(t, domain.RGB{R: 255, G: 200, B: 20}, Scale(c, 2))
	assert.Equal(t, domain.RGB{}, Scale(c, -1))
}

func TestBlendTable(t *testing.T) {
	a := domain.RGB{R: 255, G: 32}
	b := domain.RGB{G: 200, B: 255}
	table := NewBlendTable(a, b)

	for i := 0; i < 256; i++ {
		assert.Equal(t, Lerp(a, b, float64(i)/255), table[i])
	}
	assert.Equal(t, a, table.At(0))
	assert.Equal(t, b, table.At(1))
	assert.Equal(t, a, table.At(math.NaN()))
	assert.Equal(t, b, table.At(3))
	assert.Equal(t, table[128], table.At(0.5))
}
