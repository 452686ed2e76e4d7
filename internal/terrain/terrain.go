// Package terrain maps horizontal surface coordinates to elevation and colour.
//
// Every landable body resolves to a Class, and every Class owns one Rule: a
// height function and a colour function designed together. Callers must feed
// the colour function the elevation the height function produced for the same
// coordinate, which Sample does in one step.
package terrain

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/noise"
)

// Class selects a terrain rule.
type Class int

const (
	ClassGeneric Class = iota
	ClassGaseous
	ClassCratered
	ClassVolcanic
	ClassTemperate
	ClassDusty
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassGeneric:
		return "generic"
	case ClassGaseous:
		return "gaseous"
	case ClassCratered:
		return "cratered"
	case ClassVolcanic:
		return "volcanic"
	case ClassTemperate:
		return "temperate"
	case ClassDusty:
		return "dusty"
	default:
		return "unknown"
	}
}

// Classify resolves the rule class for a body. Explicit surface profiles win;
// gas and ice kinds are gaseous; anything else falls back to generic.
func Classify(b catalog.Body) Class {
	switch b.Profile {
	case catalog.ProfileCratered:
		return ClassCratered
	case catalog.ProfileVolcanic:
		return ClassVolcanic
	case catalog.ProfileTemperate:
		return ClassTemperate
	case catalog.ProfileDusty:
		return ClassDusty
	}
	switch b.Kind {
	case catalog.KindGas, catalog.KindIce:
		return ClassGaseous
	}
	return ClassGeneric
}

// Rule is the paired height and colour function of one class.
type Rule struct {
	Height func(c *Context, x, z float64) float64
	Color  func(c *Context, h, x, z float64, b catalog.Body) colorful.Color

	// Animated classes replace the static height with Wave every frame.
	Animated bool
}

// rules is the dispatch table. Adding a class means adding one entry here.
var rules = map[Class]Rule{
	ClassGeneric:   {Height: genericHeight, Color: genericColor},
	ClassGaseous:   {Height: gaseousHeight, Color: gaseousColor, Animated: true},
	ClassCratered:  {Height: crateredHeight, Color: crateredColor},
	ClassVolcanic:  {Height: volcanicHeight, Color: volcanicColor},
	ClassTemperate: {Height: temperateHeight, Color: temperateColor},
	ClassDusty:     {Height: dustyHeight, Color: dustyColor},
}

// RuleFor returns the rule for a class, or the generic rule for unknown classes.
func RuleFor(c Class) Rule {
	if r, ok := rules[c]; ok {
		return r
	}
	return rules[ClassGeneric]
}

// Context carries the noise sources shared by all rules. It is read-only after
// construction.
type Context struct {
	field  *noise.Field
	jitter opensimplex.Noise
}

// NewContext wraps a noise field. The secondary grain field used by the dusty
// rule is seeded from the same seed so a seeded context is fully reproducible.
func NewContext(field *noise.Field) *Context {
	return &Context{
		field:  field,
		jitter: opensimplex.NewNormalized(int64(field.Seed())),
	}
}

// Field returns the underlying gradient noise field.
func (c *Context) Field() *noise.Field {
	return c.field
}

// n samples the y=0 slice of the field at a given frequency.
func (c *Context) n(x, z, freq float64) float64 {
	return c.field.Noise3(x*freq, 0, z*freq)
}

// Height returns the static elevation of a body at (x, z).
func (c *Context) Height(x, z float64, b catalog.Body) float64 {
	return RuleFor(Classify(b)).Height(c, x, z)
}

// Elevation returns the elevation at time t. Animated classes use the
// travelling wave; all others ignore t.
func (c *Context) Elevation(x, z, t float64, b catalog.Body) float64 {
	r := RuleFor(Classify(b))
	if r.Animated {
		return Wave(x, z, t)
	}
	return r.Height(c, x, z)
}

// Color returns the surface colour for an elevation previously produced by
// Height at the same coordinate.
func (c *Context) Color(h, x, z float64, b catalog.Body) colorful.Color {
	return RuleFor(Classify(b)).Color(c, h, x, z, b)
}

// Sample evaluates height and colour together so they cannot disagree.
func (c *Context) Sample(x, z float64, b catalog.Body) (float64, colorful.Color) {
	r := RuleFor(Classify(b))
	h := r.Height(c, x, z)
	return h, r.Color(c, h, x, z, b)
}

// Animated reports whether a body's surface moves over time.
func Animated(b catalog.Body) bool {
	return RuleFor(Classify(b)).Animated
}

// Wave is the rolling cloud-deck field of gas and ice giants.
func Wave(x, z, t float64) float64 {
	return math.Sin(x*0.02+t*0.3) * math.Cos(z*0.02+t*0.2) * 6
}
