package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ScaleMode defines how orbital distances map to display space.
type ScaleMode int

const (
	// ScaleLog compresses distances logarithmically so planets and the
	// distant stars share the view.
	ScaleLog ScaleMode = iota

	// ScaleInner is linear out to the outermost planet; anything farther is
	// pinned to the edge.
	ScaleInner

	// ScaleLinear is linear out to the farthest catalog object.
	ScaleLinear
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleLog:
		return "Log"
	case ScaleInner:
		return "Inner"
	case ScaleLinear:
		return "Linear"
	default:
		return "?"
	}
}

const (
	innerLimit = 300.0
	outerLimit = 1000.0
)

// Projection maps scene positions to a top-down display plane where X points
// right and Y points up (towards -Z). A unit display radius is the edge of the
// view at zoom 1.
type Projection struct {
	Mode  ScaleMode
	Scale float64
}

// DefaultProjection returns log scaling at zoom 1.
func DefaultProjection() Projection {
	return Projection{Mode: ScaleLog, Scale: 1}
}

// Project returns display coordinates for a scene position.
func (p Projection) Project(pos mgl64.Vec3) (x, y float64) {
	r := math.Hypot(pos[0], pos[2])
	if r == 0 {
		return 0, 0
	}
	d := p.Radius(r)
	return pos[0] / r * d, -pos[2] / r * d
}

// Radius scales a distance to display units.
func (p Projection) Radius(r float64) float64 {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	var d float64
	switch p.Mode {
	case ScaleInner:
		d = math.Min(r, innerLimit) / innerLimit
	case ScaleLinear:
		d = r / outerLimit
	default:
		d = math.Log10(r+1) / math.Log10(outerLimit+1)
	}
	return d * scale
}
