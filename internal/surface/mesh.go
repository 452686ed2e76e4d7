// Package surface builds the walkable terrain grid for a body.
package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

// Config controls mesh resolution.
type Config struct {
	Extent   float64 // side length of the square, centred on the origin
	Segments int     // cells per side; the grid has Segments+1 vertices per side
}

// DefaultConfig returns the reference 400x400 grid with 200 segments.
func DefaultConfig() Config {
	return Config{
		Extent:   400,
		Segments: 200,
	}
}

// Vertex is one grid point.
type Vertex struct {
	X, Y, Z float64
	Color   colorful.Color
	Normal  mgl64.Vec3
}

// Mesh is a regular grid of vertices over the XZ plane. Row j runs along +Z,
// column i along +X. Colours are computed once per Build; elevations and
// normals are rewritten by Animate for animated bodies.
type Mesh struct {
	cfg     Config
	terrain *terrain.Context

	body     catalog.Body
	animated bool
	built    bool

	step    float64
	heights []float64
	colors  []colorful.Color
	normals []mgl64.Vec3
}

// New creates an empty mesh. Call Build before sampling.
func New(ctx *terrain.Context, cfg Config) *Mesh {
	if cfg.Segments < 1 {
		cfg.Segments = 1
	}
	if cfg.Extent <= 0 {
		cfg.Extent = DefaultConfig().Extent
	}
	n := (cfg.Segments + 1) * (cfg.Segments + 1)
	return &Mesh{
		cfg:     cfg,
		terrain: ctx,
		step:    cfg.Extent / float64(cfg.Segments),
		heights: make([]float64, n),
		colors:  make([]colorful.Color, n),
		normals: make([]mgl64.Vec3, n),
	}
}

// Build evaluates elevation and colour for every vertex of body's surface and
// recomputes normals. Elevation and colour come from the same sample.
func (m *Mesh) Build(b catalog.Body) {
	m.body = b
	m.animated = terrain.Animated(b)
	side := m.Side()
	for j := 0; j < side; j++ {
		z := m.coord(j)
		for i := 0; i < side; i++ {
			x := m.coord(i)
			h, c := m.terrain.Sample(x, z, b)
			k := j*side + i
			m.heights[k] = h
			m.colors[k] = c
		}
	}
	m.computeNormals()
	m.built = true
}

// Animate rewrites elevations for time t and reports whether anything moved.
// Static bodies are left untouched.
func (m *Mesh) Animate(t float64) bool {
	if !m.built || !m.animated {
		return false
	}
	side := m.Side()
	for j := 0; j < side; j++ {
		z := m.coord(j)
		for i := 0; i < side; i++ {
			m.heights[j*side+i] = terrain.Wave(m.coord(i), z, t)
		}
	}
	m.computeNormals()
	return true
}

// Body returns the body the mesh was last built for.
func (m *Mesh) Body() catalog.Body { return m.body }

// Built reports whether Build has been called.
func (m *Mesh) Built() bool { return m.built }

// Animated reports whether the current body animates.
func (m *Mesh) Animated() bool { return m.animated }

// Config returns the mesh configuration.
func (m *Mesh) Config() Config { return m.cfg }

// Side returns the number of vertices per side.
func (m *Mesh) Side() int { return m.cfg.Segments + 1 }

// Step returns the spacing between adjacent vertices.
func (m *Mesh) Step() float64 { return m.step }

// Len returns the vertex count.
func (m *Mesh) Len() int { return len(m.heights) }

// Vertex returns the grid point at column i, row j.
func (m *Mesh) Vertex(i, j int) Vertex {
	k := j*m.Side() + i
	return Vertex{
		X:      m.coord(i),
		Y:      m.heights[k],
		Z:      m.coord(j),
		Color:  m.colors[k],
		Normal: m.normals[k],
	}
}

// Heights returns a copy of the elevation buffer in row-major order.
func (m *Mesh) Heights() []float64 {
	out := make([]float64, len(m.heights))
	copy(out, m.heights)
	return out
}

// Sample returns the vertex nearest to (x, z). ok is false outside the grid.
func (m *Mesh) Sample(x, z float64) (v Vertex, ok bool) {
	i, iok := m.index(x)
	j, jok := m.index(z)
	if !iok || !jok {
		return Vertex{}, false
	}
	return m.Vertex(i, j), true
}

// Contains reports whether (x, z) lies on the grid.
func (m *Mesh) Contains(x, z float64) bool {
	half := m.cfg.Extent / 2
	return x >= -half && x <= half && z >= -half && z <= half
}

func (m *Mesh) coord(i int) float64 {
	return -m.cfg.Extent/2 + float64(i)*m.step
}

func (m *Mesh) index(v float64) (int, bool) {
	half := m.cfg.Extent / 2
	if v < -half || v > half || math.IsNaN(v) {
		return 0, false
	}
	i := int(math.Round((v + half) / m.step))
	if i > m.cfg.Segments {
		i = m.cfg.Segments
	}
	return i, true
}

// computeNormals accumulates unnormalised face normals of the two triangles in
// every cell, which weights each face by its area, then normalises.
func (m *Mesh) computeNormals() {
	for k := range m.normals {
		m.normals[k] = mgl64.Vec3{}
	}
	side := m.Side()
	pos := func(i, j int) mgl64.Vec3 {
		return mgl64.Vec3{m.coord(i), m.heights[j*side+i], m.coord(j)}
	}
	add := func(a, b, c [2]int) {
		pa, pb, pc := pos(a[0], a[1]), pos(b[0], b[1]), pos(c[0], c[1])
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		for _, p := range [][2]int{a, b, c} {
			k := p[1]*side + p[0]
			m.normals[k] = m.normals[k].Add(n)
		}
	}
	for j := 0; j < m.cfg.Segments; j++ {
		for i := 0; i < m.cfg.Segments; i++ {
			a := [2]int{i, j}
			b := [2]int{i, j + 1}
			c := [2]int{i + 1, j}
			d := [2]int{i + 1, j + 1}
			add(a, b, c)
			add(d, c, b)
		}
	}
	for k, n := range m.normals {
		if l := n.Len(); l > 0 {
			m.normals[k] = n.Mul(1 / l)
		} else {
			m.normals[k] = mgl64.Vec3{0, 1, 0}
		}
	}
}
