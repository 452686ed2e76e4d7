package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxPitch keeps the camera short of looking straight up or down.
const MaxPitch = math.Pi/2 - 0.01

var (
	up        = mgl64.Vec3{0, 1, 0}
	ahead     = mgl64.Vec3{0, 0, -1}
	rightAxis = mgl64.Vec3{1, 0, 0}
)

// Camera is a first-person viewpoint. Yaw turns about +Y, with zero looking
// down -Z; positive pitch looks up.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
}

// Orientation returns the camera rotation.
func (c Camera) Orientation() mgl64.Quat {
	return mgl64.QuatRotate(c.Yaw, up).Mul(mgl64.QuatRotate(c.Pitch, rightAxis))
}

// Forward returns the unit view direction.
func (c Camera) Forward() mgl64.Vec3 {
	return c.Orientation().Rotate(ahead)
}

// GroundBasis returns the horizontal forward and right directions. The
// vertical component of the view direction is dropped, so looking up or down
// never changes walking speed.
func (c Camera) GroundBasis() (forward, right mgl64.Vec3) {
	f := c.Forward()
	f[1] = 0
	if f.Len() < 1e-9 {
		f = mgl64.QuatRotate(c.Yaw, up).Rotate(ahead)
		f[1] = 0
	}
	forward = f.Normalize()
	right = forward.Cross(up).Normalize()
	return forward, right
}

// Turn changes yaw and pitch, wrapping yaw and clamping pitch.
func (c *Camera) Turn(dyaw, dpitch float64) {
	c.Yaw = math.Mod(c.Yaw+dyaw, 2*math.Pi)
	if c.Yaw < 0 {
		c.Yaw += 2 * math.Pi
	}
	c.Pitch = math.Max(-MaxPitch, math.Min(MaxPitch, c.Pitch+dpitch))
}

// Heading returns the compass direction of the camera in degrees, with 0
// along -Z and 90 along +X.
func (c Camera) Heading() float64 {
	f, _ := c.GroundBasis()
	deg := math.Atan2(f[0], -f[2]) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
