// Package orbit animates the catalog as a top-down orbital scene.
package orbit

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
)

// Orbits advance at a tenth of the catalog orbit speed per second.
const orbitRate = 0.1

// SpinRate converts catalog rotation speeds, given in radians per frame at
// 60 fps, to radians per second.
const SpinRate = 60

// Scene holds the bodies of the orbital view, their starting phases and the
// current selection. It is owned by a single goroutine.
type Scene struct {
	bodies   []catalog.Body
	phase    []float64
	selected int // -1 when nothing is selected
}

// NewScene places every body at a random phase drawn from src. A nil src
// uses an unseeded source.
func NewScene(bodies []catalog.Body, src rand.Source) *Scene {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	rng := rand.New(src)
	s := &Scene{
		bodies:   append([]catalog.Body(nil), bodies...),
		phase:    make([]float64, len(bodies)),
		selected: -1,
	}
	for i := range s.phase {
		s.phase[i] = rng.Float64() * 2 * math.Pi
	}
	return s
}

// Len returns the number of bodies.
func (s *Scene) Len() int { return len(s.bodies) }

// Body returns the body at index i.
func (s *Scene) Body(i int) catalog.Body { return s.bodies[i] }

// Bodies returns a copy of the scene bodies in order.
func (s *Scene) Bodies() []catalog.Body {
	return append([]catalog.Body(nil), s.bodies...)
}

// Angle returns the orbital phase of body i after elapsed seconds.
func (s *Scene) Angle(i int, elapsed float64) float64 {
	return elapsed*s.bodies[i].OrbitSpeed*orbitRate + s.phase[i]
}

// Position returns the position of body i on its circular orbit in the XZ
// plane after elapsed seconds.
func (s *Scene) Position(i int, elapsed float64) mgl64.Vec3 {
	t := s.Angle(i, elapsed)
	d := s.bodies[i].Distance
	return mgl64.Vec3{math.Cos(t) * d, 0, math.Sin(t) * d}
}

// Spin returns the axial rotation of body i after elapsed seconds, wrapped
// to [0, 2π).
func (s *Scene) Spin(i int, elapsed float64) float64 {
	return math.Mod(elapsed*s.bodies[i].RotationSpeed*SpinRate, 2*math.Pi)
}

// Index returns the index of the body with the given id, or -1.
func (s *Scene) Index(id string) int {
	b, ok := catalog.ByID(id)
	if !ok {
		return -1
	}
	for i := range s.bodies {
		if s.bodies[i].ID == b.ID {
			return i
		}
	}
	return -1
}

// Select marks the body with the given id as selected.
func (s *Scene) Select(id string) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.selected = i
	return true
}

// SelectIndex selects by index. Out-of-range indices clear the selection.
func (s *Scene) SelectIndex(i int) {
	if i < 0 || i >= len(s.bodies) {
		s.selected = -1
		return
	}
	s.selected = i
}

// ClearSelection deselects.
func (s *Scene) ClearSelection() { s.selected = -1 }

// SelectedIndex returns the selected index, or -1.
func (s *Scene) SelectedIndex() int { return s.selected }

// Selected returns the selected body.
func (s *Scene) Selected() (catalog.Body, bool) {
	if s.selected < 0 {
		return catalog.Body{}, false
	}
	return s.bodies[s.selected], true
}

// Next moves the selection forward, wrapping to the first body.
func (s *Scene) Next() {
	if len(s.bodies) == 0 {
		return
	}
	s.selected = (s.selected + 1) % len(s.bodies)
}

// Prev moves the selection backward, wrapping to the last body.
func (s *Scene) Prev() {
	if len(s.bodies) == 0 {
		return
	}
	s.selected--
	if s.selected < 0 {
		s.selected = len(s.bodies) - 1
	}
}
