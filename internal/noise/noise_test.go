package noise

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"
)

func TestPermutationTable(t *testing.T) {
	f := NewSeeded(42)

	seen := make(map[uint8]bool)
	for i := 0; i < tableSize; i++ {
		seen[f.perm[i]] = true
		if f.perm[i] != f.perm[i+tableSize] {
			t.Fatalf("perm[%d]=%d, perm[%d]=%d; upper half must mirror lower half",
				i, f.perm[i], i+tableSize, f.perm[i+tableSize])
		}
	}
	if len(seen) != tableSize {
		t.Errorf("lower half has %d distinct entries, want %d", len(seen), tableSize)
	}
}

func TestSeededFieldsAgree(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	c := NewSeeded(8)

	differs := false
	for i := 0; i < 200; i++ {
		x := float64(i)*0.37 - 20
		z := float64(i)*0.91 + 3
		va := a.Noise3(x, 0.5, z)
		if vb := b.Noise3(x, 0.5, z); va != vb {
			t.Fatalf("same seed disagrees at (%v, %v): %v vs %v", x, z, va, vb)
		}
		if c.Noise3(x, 0.5, z) != va {
			differs = true
		}
	}
	if !differs {
		t.Error("different seeds produced identical samples")
	}
}

func TestRepeatedEvaluationIsStable(t *testing.T) {
	f := New(rand.NewPCG(1, 2))
	first := f.Noise2(12.34, -56.78)
	for i := 0; i < 10; i++ {
		if got := f.Noise2(12.34, -56.78); got != first {
			t.Fatalf("evaluation %d = %v, want %v", i, got, first)
		}
	}
}

func TestLatticePointsAreZero(t *testing.T) {
	f := NewSeeded(99)
	for _, p := range [][3]float64{{0, 0, 0}, {1, 2, 3}, {-4, 0, 17}, {255, 0, 256}} {
		if got := f.Noise3(p[0], p[1], p[2]); got != 0 {
			t.Errorf("Noise3(%v) = %v, want 0 on lattice", p, got)
		}
	}
}

func TestRange(t *testing.T) {
	f := NewSeeded(3)
	var minV, maxV float64
	for i := 0; i < 20000; i++ {
		x := float64(i%200)*0.173 - 17
		z := float64(i/200)*0.211 + 5
		v := f.Noise3(x, float64(i%7)*0.3, z)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite noise at sample %d", i)
		}
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if minV < -1.1 || maxV > 1.1 {
		t.Errorf("noise range [%v, %v] outside [-1.1, 1.1]", minV, maxV)
	}
	if maxV-minV < 0.5 {
		t.Errorf("noise range [%v, %v] suspiciously narrow", minV, maxV)
	}
}

func TestContinuity(t *testing.T) {
	f := NewSeeded(5)
	const eps = 1e-4
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.731
		a := f.Noise3(x, 0, 1.3)
		b := f.Noise3(x+eps, 0, 1.3)
		if math.Abs(a-b) > 0.01 {
			t.Errorf("jump of %v across %v at x=%v", math.Abs(a-b), eps, x)
		}
	}
}

func TestConcurrentReads(t *testing.T) {
	f := NewSeeded(11)
	want := f.Noise3(1.5, 2.5, 3.5)

	var wg sync.WaitGroup
	errs := make(chan float64, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if got := f.Noise3(1.5, 2.5, 3.5); got != want {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent read = %v, want %v", got, want)
	}
}

func TestFade(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
	}
	for _, tc := range tests {
		if got := fade(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("fade(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
