// Package camera provides the perspective camera looking at the carousel.
package camera

import (
	gomath "math"

	"github.com/Faultbox/pulpcarousel/pkg/math"
)

// Camera sits on the +Z axis and looks at the origin.
type Camera struct {
	Position math.Vec3
	Up       math.Vec3

	Near float32
	Far  float32

	// FOV is the vertical field of view in radians.
	FOV    float32
	Aspect float32

	view       math.Mat4
	projection math.Mat4
}

// New creates a camera at distance z from the origin.
func New(z float32) *Camera {
	c := &Camera{
		Position: math.Vec3{Z: z},
		Up:       math.AxisY,
		Near:     0.1,
		Far:      40,
		FOV:      gomath.Pi / 4,
		Aspect:   1,
	}
	c.UpdateView()
	c.projection = math.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	return c
}

// View returns the world-to-camera matrix.
func (c *Camera) View() math.Mat4 {
	return c.view
}

// Projection returns the perspective matrix.
func (c *Camera) Projection() math.Mat4 {
	return c.projection
}

// UpdateView recomputes the view matrix from Position.
func (c *Camera) UpdateView() {
	c.view = math.LookAt(c.Position, math.Vec3{}, c.Up)
}

// EaseZ moves the camera a 1/damping share of the way towards targetZ.
func (c *Camera) EaseZ(targetZ, damping float32) {
	if damping < 1 {
		damping = 1
	}
	c.Position.Z += (targetZ - c.Position.Z) / damping
	c.UpdateView()
}

// Fit sets the projection so a band of frameHeight world units around the
// origin fills the shorter side of a width x height viewport at the current
// distance.
func (c *Camera) Fit(width, height, frameHeight float32) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = width / height

	distance := c.Position.Z
	if distance <= 0 {
		distance = c.Near
	}
	h := frameHeight
	if c.Aspect <= 1 {
		h /= c.Aspect
	}
	c.FOV = float32(2 * gomath.Atan(float64(h/distance)))
	c.projection = math.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}
