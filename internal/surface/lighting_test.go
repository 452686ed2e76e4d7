package surface

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

func TestLightingFor(t *testing.T) {
	tests := []struct {
		id        string
		intensity float64
		ambient   float64
		fogFar    float64
		sky       string
	}{
		{"mercury", 3, 0.2, 150, "#000000"},
		{"venus", 1.5, 0.2, 40, "#3a2a10"},
		{"earth", 1.5, 0.2, 150, "#1b3a5c"},
		{"jupiter", 1.5, 0.6, 80, "#2b2016"},
		{"mars", 1.5, 0.2, 150, "#3d1c10"},
		{"saturn", 1.5, 0.6, 80, ""},
		{"uranus", 1.5, 0.2, 150, ""},
		{"neptune", 1.5, 0.2, 150, ""},
	}
	for _, tt := range tests {
		l := LightingFor(mustBody(t, tt.id))
		if l.Intensity != tt.intensity || l.Ambient != tt.ambient || l.FogFar != tt.fogFar {
			t.Errorf("%s: %+v", tt.id, l)
		}
		if got := l.Sky.Hex(); tt.sky != "" && got != tt.sky {
			t.Errorf("%s sky = %s, want %s", tt.id, got, tt.sky)
		}
	}
}

func TestShade(t *testing.T) {
	l := LightingFor(mustBody(t, "mars"))
	grey := colorful.Color{R: 0.5, G: 0.5, B: 0.5}

	facing := l.Shade(grey, l.Sun)
	away := l.Shade(grey, l.Sun.Mul(-1))
	if away.R != 0.5*l.Ambient {
		t.Errorf("unlit side = %v, want ambient only", away.R)
	}
	if facing.R <= away.R {
		t.Errorf("lit side %v not brighter than unlit %v", facing.R, away.R)
	}
	if bright := LightingFor(mustBody(t, "mercury")).Shade(grey, mgl64.Vec3{0, 1, 0}); bright.R > 1 {
		t.Errorf("shade not clamped: %v", bright.R)
	}
}

func TestFog(t *testing.T) {
	l := LightingFor(mustBody(t, "venus"))
	c := colorful.Color{R: 1, G: 1, B: 1}
	if got := l.Fog(c, 5); got != c {
		t.Errorf("fog inside near plane changed colour: %s", got.Hex())
	}
	if got := l.Fog(c, 100); !got.AlmostEqualRgb(l.Sky) {
		t.Errorf("fog beyond far plane = %s, want sky %s", got.Hex(), l.Sky.Hex())
	}
	mid := l.Fog(c, 25)
	if !(mid.R < 1 && mid.R > l.Sky.R) {
		t.Errorf("half fog = %s", mid.Hex())
	}
}
