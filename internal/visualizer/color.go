package visualizer

import (
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
)

// ParseHex converts "#RRGGBB" into a channel triplet.
func ParseHex(hex string) (domain.RGB, error) {
	return domain.ParseRGB(hex)
}

// MustParseHex is ParseHex for constants. It panics on malformed input.
func MustParseHex(hex string) domain.RGB {
	c, err := ParseHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// RGBA renders c as a CSS-style "rgba(r, g, b, a)" string.
// Alpha is clamped to [0, 1].
func RGBA(c domain.RGB, alpha float64) string {
	buf := make([]byte, 0, 32)
	buf = append(buf, "rgba("...)
	buf = strconv.AppendUint(buf, uint64(c.R), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendUint(buf, uint64(c.G), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendUint(buf, uint64(c.B), 10)
	buf = append(buf, ", "...)
	buf = strconv.AppendFloat(buf, Clamp01(alpha), 'f', -1, 64)
	buf = append(buf, ')')
	return string(buf)
}

// Channel rounds v to the nearest integer and clamps it to 0..255.
func Channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ToNRGBA converts c with the given alpha into a paintable color.
// A positive alpha never rounds down to fully transparent.
func ToNRGBA(c domain.RGB, alpha float64) color.NRGBA {
	alpha = Clamp01(alpha)
	a := Channel(alpha * 255)
	if a == 0 && alpha > 0 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Scale multiplies every channel by f (brightness), rounding and clamping.
func Scale(c domain.RGB, f float64) domain.RGB {
	return domain.RGB{
		R: Channel(float64(c.R) * f),
		G: Channel(float64(c.G) * f),
		B: Channel(float64(c.B) * f),
	}
}

// Lerp interpolates between a and b in RGB space. t is clamped to [0, 1].
func Lerp(a, b domain.RGB, t float64) domain.RGB {
	t = Clamp01(t)
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	r, g, bl := toColorful(a).BlendRgb(toColorful(b), t).Clamped().RGB255()
	return domain.RGB{R: r, G: g, B: bl}
}

// LerpAlpha is Lerp with an independent alpha.
func LerpAlpha(a, b domain.RGB, t, alpha float64) color.NRGBA {
	return ToNRGBA(Lerp(a, b, t), alpha)
}

// BlendTable holds Lerp(a, b, i/255) for every byte step i, so a frame
// with many bars blends each color once.
type BlendTable [256]domain.RGB

// NewBlendTable precomputes the blend from a to b.
func NewBlendTable(a, b domain.RGB) *BlendTable {
	t := new(BlendTable)
	for i := range t {
		t[i] = Lerp(a, b, float64(i)/255)
	}
	return t
}

// At returns the blend for t in [0, 1], quantized to a byte step.
func (bt *BlendTable) At(t float64) domain.RGB {
	return bt[Channel(Clamp01(t)*255)]
}

func toColorful(c domain.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

var (
	black = domain.RGB{}
	white = domain.RGB{R: 255, G: 255, B: 255}
)
