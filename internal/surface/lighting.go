package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

// Lighting describes the sky of a surface: one directional sun, a flat
// ambient term and linear fog towards the sky colour.
type Lighting struct {
	Sun       mgl64.Vec3 // unit vector towards the sun
	Intensity float64
	Ambient   float64
	Tint      colorful.Color
	Sky       colorful.Color
	FogNear   float64
	FogFar    float64
}

// LightingFor returns the sky of body b.
func LightingFor(b catalog.Body) Lighting {
	l := Lighting{
		Sun:       mgl64.Vec3{100, 50, -50}.Normalize(),
		Intensity: 1.5,
		Ambient:   0.2,
		Tint:      colorful.Color{R: 1, G: 1, B: 1},
		Sky:       terrain.ParseColor(b.SkyColor()),
		FogNear:   10,
		FogFar:    150,
	}
	switch terrain.Classify(b) {
	case terrain.ClassCratered:
		l.Intensity = 3
	case terrain.ClassVolcanic:
		l.FogFar = 40
	case terrain.ClassTemperate:
		l.Tint = terrain.ParseColor("#ffeebb")
	}
	// Ice giants share the gaseous terrain but keep the default sky.
	if b.Kind == catalog.KindGas {
		l.Ambient = 0.6
		l.FogFar = 80
	}
	return l
}

// Shade applies ambient and Lambert diffuse light to a vertex colour.
func (l Lighting) Shade(c colorful.Color, normal mgl64.Vec3) colorful.Color {
	k := l.Ambient + l.Intensity*math.Max(0, normal.Dot(l.Sun))
	return colorful.Color{
		R: clamp01(c.R * k * l.Tint.R),
		G: clamp01(c.G * k * l.Tint.G),
		B: clamp01(c.B * k * l.Tint.B),
	}
}

// Fog blends c towards the sky colour for a viewer dist units away.
func (l Lighting) Fog(c colorful.Color, dist float64) colorful.Color {
	if dist <= l.FogNear {
		return c
	}
	f := 1.0
	if l.FogFar > l.FogNear {
		f = clamp01((dist - l.FogNear) / (l.FogFar - l.FogNear))
	}
	return c.BlendRgb(l.Sky, f)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
