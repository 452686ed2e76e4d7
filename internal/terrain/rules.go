package terrain

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
)

// Shoreline constants of the temperate rule. Raw elevations below
// ShorelineClamp are flattened to SeaFloor, and anything at or below
// ShorelineThreshold is treated as submerged.
const (
	ShorelineThreshold = 1.5
	ShorelineClamp     = 3.0
	SeaFloor           = 1.0

	snowLine = 25.0
	rockLine = 15.0
)

var (
	craterGrey = mustHex("#5c5c5c")
	sand       = mustHex("#C2B280")
	vegetation = mustHex("#2d4c1e")
	bareRock   = mustHex("#666666")
	snow       = mustHex("#ffffff")
	rust       = mustHex("#8a3b1c")

	// lava runs from dark basalt in the lowlands to light brown highlands.
	lava = mustGradient("#3d1e08", "#8B4513")
)

// Exported palette entries for callers that classify colours.
var (
	SandColor       = sand
	VegetationColor = vegetation
	RockColor       = bareRock
	SnowColor       = snow
)

func genericHeight(c *Context, x, z float64) float64 {
	return c.n(x, z, 0.01) * 10
}

func genericColor(_ *Context, _, _, _ float64, b catalog.Body) colorful.Color {
	return ParseColor(b.GroundColor())
}

func gaseousHeight(c *Context, x, z float64) float64 {
	return c.n(x, z, 0.01) * 5
}

func gaseousColor(c *Context, _, x, z float64, b catalog.Body) colorful.Color {
	n := c.n(x, z, 0.05)
	return OffsetHSL(ParseColor(b.GroundColor()), 0, 0, n*0.1)
}

// crateredHeight inverts and squares the base noise so zero crossings become
// sharp rims, then roughens the result.
func crateredHeight(c *Context, x, z float64) float64 {
	h := 1 - math.Abs(c.n(x, z, 0.02))
	h = h * h * 15
	return h + c.n(x, z, 0.1)*2
}

func crateredColor(c *Context, h, x, z float64, _ catalog.Body) colorful.Color {
	n := c.n(x, z, 0.1)
	val := h/20 + n*0.2
	return OffsetHSL(craterGrey, 0, 0, val*0.2)
}

func volcanicHeight(c *Context, x, z float64) float64 {
	h := c.n(x, z, 0.005) * 20
	h += c.n(x, z, 0.02) * 5
	if h < 5 {
		h *= 0.5
	}
	return h
}

func volcanicColor(_ *Context, h, _, _ float64, _ catalog.Body) colorful.Color {
	return lava.At(math.Max(0, math.Min(1, h/20)))
}

// temperateHeight floods everything under the shoreline clamp.
func temperateHeight(c *Context, x, z float64) float64 {
	h := temperateRelief(c, x, z)
	if h < ShorelineClamp {
		h = SeaFloor
	}
	return h
}

// temperateRelief builds ridgelines from the absolute value of a
// low-frequency term.
func temperateRelief(c *Context, x, z float64) float64 {
	return math.Abs(c.n(x, z, 0.008))*35 + c.n(x, z, 0.05)*2
}

func temperateColor(c *Context, h, x, z float64, _ catalog.Body) colorful.Color {
	switch {
	case h <= ShorelineThreshold:
		return sand
	case h < rockLine:
		n := c.n(x, z, 0.1)
		return OffsetHSL(vegetation, 0.1*n, 0, 0)
	case h < snowLine:
		return bareRock
	default:
		return snow
	}
}

// dustyHeight flattens valley floors and adds a fine grain. The grain comes
// from a seeded field so that the surface stays reproducible.
func dustyHeight(c *Context, x, z float64) float64 {
	h := c.n(x, z, 0.01) * 12
	h += c.n(x, z, 0.05) * 2
	if h < 2 {
		h *= 0.2
	}
	return h + c.grain(x, z)*0.1
}

func dustyColor(c *Context, _, x, z float64, _ catalog.Body) colorful.Color {
	n := c.n(x, z, 0.2)
	return OffsetHSL(rust, 0.02*n, 0, n*0.05)
}

// grain returns a value in [0, 1) that changes every few tenths of a unit.
func (c *Context) grain(x, z float64) float64 {
	v := c.jitter.Eval2(x*7.31, z*7.31)
	return math.Max(0, math.Min(v, 0.999999))
}

func mustGradient(from, to string) colorgrad.Gradient {
	g, err := colorgrad.NewGradient().HtmlColors(from, to).Build()
	if err != nil {
		panic("terrain: bad gradient " + from + ".." + to + ": " + err.Error())
	}
	return g
}
