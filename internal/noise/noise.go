// Package noise provides a seeded improved-Perlin gradient noise field.
//
// A Field owns its permutation table. It is built once, never mutated, and is
// safe to share between goroutines. Two fields built from the same seed return
// identical values everywhere.
package noise

import (
	"math"
	"math/rand/v2"
	"time"
)

// tableSize is the number of distinct lattice hashes.
const tableSize = 256

// Field is a gradient noise field backed by a shuffled permutation table.
type Field struct {
	perm [2 * tableSize]uint8
	seed uint64
}

// New builds a field from the given random source.
// The table is a Fisher-Yates shuffle of 0..255, duplicated to 512 entries so
// lattice lookups of the form perm[i+1] never wrap.
func New(src rand.Source) *Field {
	rng := rand.New(src)
	f := &Field{}

	var p [tableSize]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	for i := tableSize - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	for i := range f.perm {
		f.perm[i] = p[i&(tableSize-1)]
	}
	return f
}

// NewSeeded builds a reproducible field.
func NewSeeded(seed uint64) *Field {
	f := New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f.seed = seed
	return f
}

// NewRandom builds a field from a time-derived seed. Values are stable for the
// lifetime of the field but differ between processes.
func NewRandom() *Field {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// Seed returns the seed the field was built from, or 0 for fields built
// directly from a caller-supplied source.
func (f *Field) Seed() uint64 {
	return f.seed
}

// Noise3 evaluates 3D gradient noise. Output stays close to [-1, 1].
func (f *Field) Noise3(x, y, z float64) float64 {
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(z)
	X := int(fx) & (tableSize - 1)
	Y := int(fy) & (tableSize - 1)
	Z := int(fz) & (tableSize - 1)

	x -= fx
	y -= fy
	z -= fz

	u := fade(x)
	v := fade(y)
	w := fade(z)

	p := &f.perm
	A := int(p[X]) + Y
	AA := int(p[A]) + Z
	AB := int(p[A+1]) + Z
	B := int(p[X+1]) + Y
	BA := int(p[B]) + Z
	BB := int(p[B+1]) + Z

	return lerp(w,
		lerp(v,
			lerp(u, grad(p[AA], x, y, z), grad(p[BA], x-1, y, z)),
			lerp(u, grad(p[AB], x, y-1, z), grad(p[BB], x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(p[AA+1], x, y, z-1), grad(p[BA+1], x-1, y, z-1)),
			lerp(u, grad(p[AB+1], x, y-1, z-1), grad(p[BB+1], x-1, y-1, z-1))))
}

// Noise2 evaluates the y=0 slice of the 3D field.
func (f *Field) Noise2(x, z float64) float64 {
	return f.Noise3(x, 0, z)
}

// fade is the quintic smoothstep 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad picks one of 12 cube-edge gradients (with 4 repeats) from the low
// hash bits and returns its dot product with (x, y, z).
func grad(hash uint8, x, y, z float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	default:
		v = z
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
