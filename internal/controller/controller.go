// Package controller moves a first-person camera across a body's surface.
package controller

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

// Action is a movement input.
type Action int

const (
	Forward Action = iota
	Back
	Left
	Right
	Sprint
)

func (a Action) String() string {
	switch a {
	case Forward:
		return "forward"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	case Sprint:
		return "sprint"
	default:
		return "unknown"
	}
}

// Intent is the set of held inputs.
type Intent struct {
	Forward, Back, Left, Right, Sprint bool
}

// Config tunes movement.
type Config struct {
	Speed        float64 // units per second
	SprintFactor float64
	Clearance    float64 // eye height above solid ground
	Hover        float64 // eye height above a cloud deck
	Smoothing    float64 // fraction of the height error closed per step
	BobFrequency float64 // radians per second
	BobAmplitude float64
}

// DefaultConfig returns the reference movement tuning.
func DefaultConfig() Config {
	return Config{
		Speed:        8,
		SprintFactor: 2.5,
		Clearance:    2,
		Hover:        15,
		Smoothing:    0.1,
		BobFrequency: 12,
		BobAmplitude: 0.05,
	}
}

// Controller turns held inputs into camera motion over one body's terrain.
// It is driven from a single frame loop and is not safe for concurrent use.
type Controller struct {
	cfg     Config
	terrain *terrain.Context
	body    catalog.Body
	intent  Intent
}

// New creates a controller.
func New(ctx *terrain.Context, cfg Config) *Controller {
	return &Controller{cfg: cfg, terrain: ctx}
}

// SetBody switches the terrain being walked and clears held inputs.
func (c *Controller) SetBody(b catalog.Body) {
	c.body = b
	c.intent = Intent{}
}

// Body returns the body being walked.
func (c *Controller) Body() catalog.Body { return c.body }

// Press marks an action as held.
func (c *Controller) Press(a Action) { c.set(a, true) }

// Release marks an action as no longer held.
func (c *Controller) Release(a Action) { c.set(a, false) }

// Reset releases everything.
func (c *Controller) Reset() { c.intent = Intent{} }

// Intent returns the held inputs.
func (c *Controller) Intent() Intent { return c.intent }

func (c *Controller) set(a Action, v bool) {
	switch a {
	case Forward:
		c.intent.Forward = v
	case Back:
		c.intent.Back = v
	case Left:
		c.intent.Left = v
	case Right:
		c.intent.Right = v
	case Sprint:
		c.intent.Sprint = v
	}
}

// GroundTarget returns the eye height the camera settles towards at (x, z).
func (c *Controller) GroundTarget(x, z, elapsed float64) float64 {
	if terrain.Animated(c.body) {
		return terrain.Wave(x, z, elapsed) + c.cfg.Hover
	}
	return c.terrain.Height(x, z, c.body) + c.cfg.Clearance
}

// Spawn places the camera at (x, z) at its resting height.
func (c *Controller) Spawn(cam *Camera, x, z, elapsed float64) {
	cam.Position = mgl64.Vec3{x, c.GroundTarget(x, z, elapsed), z}
}

// Step advances the camera by dt seconds. elapsed is the running clock used
// by the cloud deck and the head bob. It reports whether the camera moved
// horizontally.
func (c *Controller) Step(cam *Camera, dt, elapsed float64) bool {
	var dir mgl64.Vec3
	forward, right := cam.GroundBasis()
	if c.intent.Forward {
		dir = dir.Add(forward)
	}
	if c.intent.Back {
		dir = dir.Sub(forward)
	}
	if c.intent.Right {
		dir = dir.Add(right)
	}
	if c.intent.Left {
		dir = dir.Sub(right)
	}

	moving := dir.Len() > 1e-9
	if moving {
		speed := c.cfg.Speed
		if c.intent.Sprint {
			speed *= c.cfg.SprintFactor
		}
		cam.Position = cam.Position.Add(dir.Normalize().Mul(speed * dt))
	}

	x, z := cam.Position[0], cam.Position[2]
	target := c.GroundTarget(x, z, elapsed)
	cam.Position[1] += (target - cam.Position[1]) * c.cfg.Smoothing
	if moving {
		cam.Position[1] += math.Sin(elapsed*c.cfg.BobFrequency) * c.cfg.BobAmplitude
	}
	return moving
}
