package terrain

import (
	"math"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// fallbackGrey is used when a catalog colour fails to parse.
var fallbackGrey = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

var parsed sync.Map // string -> colorful.Color

// ParseColor parses a #RRGGBB string, caching the result. Malformed input
// yields mid grey rather than an error: the catalog is closed and a bad entry
// should degrade, not stop rendering.
func ParseColor(hex string) colorful.Color {
	if c, ok := parsed.Load(hex); ok {
		return c.(colorful.Color)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		c = fallbackGrey
	}
	parsed.Store(hex, c)
	return c
}

// OffsetHSL shifts a colour in HSL space. dh is in turns (1 = full circle);
// hue wraps while saturation and lightness are clamped to [0, 1].
func OffsetHSL(c colorful.Color, dh, ds, dl float64) colorful.Color {
	h, s, l := c.Hsl()
	h = math.Mod(h+dh*360, 360)
	if h < 0 {
		h += 360
	}
	return colorful.Hsl(h, clamp01(s+ds), clamp01(l+dl))
}

// Scale multiplies each channel, clamping the result.
func Scale(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: clamp01(c.R * k), G: clamp01(c.G * k), B: clamp01(c.B * k)}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("terrain: bad colour literal " + s)
	}
	return c
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
