// Package scatter places rock instances on a body's surface.
package scatter

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

// Layer is one population of rocks.
type Layer struct {
	Name    string
	Count   int
	MinSize float64
	MaxSize float64
	Spread  float64 // placement radius around the origin
}

// Default layers: a dense carpet of pebbles and a sparse set of boulders.
var (
	Pebbles  = Layer{Name: "pebbles", Count: 3000, MinSize: 0.05, MaxSize: 0.2, Spread: 150}
	Boulders = Layer{Name: "boulders", Count: 150, MinSize: 0.5, MaxSize: 2.5, Spread: 180}
)

// DefaultLayers returns the layers scattered on every rocky surface.
func DefaultLayers() []Layer {
	return []Layer{Pebbles, Boulders}
}

// Instance is one placed rock.
type Instance struct {
	Layer    string         `json:"layer"`
	Position mgl64.Vec3     `json:"position"`
	Rotation mgl64.Vec3     `json:"rotation"` // Euler angles, radians
	Scale    mgl64.Vec3     `json:"scale"`
	Color    colorful.Color `json:"-"`
}

// Waterline is the elevation below which temperate terrain is submerged and
// carries no rocks.
const Waterline = terrain.ShorelineThreshold

var rockColors = map[terrain.Class]string{
	terrain.ClassCratered:  "#444444",
	terrain.ClassVolcanic:  "#221100",
	terrain.ClassTemperate: "#555555",
}

// Density returns the count multiplier for a terrain class.
func Density(c terrain.Class) float64 {
	switch c {
	case terrain.ClassCratered:
		return 1.5
	case terrain.ClassVolcanic:
		return 0.3
	case terrain.ClassGaseous:
		return 0
	default:
		return 1
	}
}

// Count returns how many placements a layer attempts on body, rounded up.
func Count(b catalog.Body, l Layer) int {
	if !b.Kind.Landable() {
		return 0
	}
	return int(math.Ceil(float64(l.Count) * Density(terrain.Classify(b))))
}

// RockColor returns the rock tint for body.
func RockColor(b catalog.Body) colorful.Color {
	if hex, ok := rockColors[terrain.Classify(b)]; ok {
		return terrain.ParseColor(hex)
	}
	return terrain.Scale(terrain.ParseColor(b.GroundColor()), 0.7)
}

// Scatterer draws placements from its own random stream. It is not safe for
// concurrent use.
type Scatterer struct {
	terrain *terrain.Context
	rng     *rand.Rand
}

// New creates a scatterer. A nil src uses an unseeded source.
func New(ctx *terrain.Context, src rand.Source) *Scatterer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Scatterer{terrain: ctx, rng: rand.New(src)}
}

// Scatter places one layer on body. Positions are uniform over the disc of
// radius l.Spread. Submerged temperate placements are dropped, so the result
// may be shorter than Count.
func (s *Scatterer) Scatter(b catalog.Body, l Layer) []Instance {
	n := Count(b, l)
	if n == 0 {
		return nil
	}
	class := terrain.Classify(b)
	tint := RockColor(b)

	out := make([]Instance, 0, n)
	for i := 0; i < n; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		r := math.Sqrt(s.rng.Float64()) * l.Spread
		x := math.Cos(angle) * r
		z := math.Sin(angle) * r
		y := s.terrain.Height(x, z, b)

		rot := mgl64.Vec3{
			s.rng.Float64() * math.Pi,
			s.rng.Float64() * math.Pi,
			s.rng.Float64() * math.Pi,
		}
		size := l.MinSize + s.rng.Float64()*(l.MaxSize-l.MinSize)

		if class == terrain.ClassTemperate && y < Waterline {
			continue
		}
		out = append(out, Instance{
			Layer:    l.Name,
			Position: mgl64.Vec3{x, y, z},
			Rotation: rot,
			Scale:    mgl64.Vec3{size, size * 0.8, size},
			Color:    tint,
		})
	}
	return out
}

// ScatterAll places every layer in order.
func (s *Scatterer) ScatterAll(b catalog.Body, layers []Layer) []Instance {
	var out []Instance
	for _, l := range layers {
		out = append(out, s.Scatter(b, l)...)
	}
	return out
}
