// Package arcball turns pointer drags into a sphere orientation with inertia
// and snapping.
package arcball

import (
	gomath "math"

	"github.com/Faultbox/pulpcarousel/pkg/math"
)

const (
	// radius of the virtual trackball in normalised screen units.
	radius = 2

	epsilon = 0.1

	dragIntensity      = 0.3
	angleAmplification = 5
	idleIntensity      = 0.1
	snapIntensity      = 0.2
	axisIntensity      = 0.8
	velocityIntensity  = 0.5
)

// PointerHandler receives pointer input in canvas client coordinates.
type PointerHandler interface {
	PointerDown(x, y float32)
	PointerMove(x, y float32)
	PointerUp()
}

// Controller tracks the sphere orientation.
//
// Orientation is the accumulated rotation applied to every item position.
// RotationAxis and RotationVelocity are smoothed views of the last rotation
// step, in revolutions per target frame, used for the stretch effect and for
// deciding whether the sphere is still moving.
type Controller struct {
	Orientation      math.Quat
	PointerRotation  math.Quat
	RotationAxis     math.Vec3
	RotationVelocity float32

	// SnapDirection is the view-space direction the nearest item is pulled
	// towards while idle.
	SnapDirection math.Vec3

	snapTarget    math.Vec3
	hasSnapTarget bool

	width, height float32

	pointerDown  bool
	pointerPos   math.Vec2
	previousPos  math.Vec2
	combined     math.Quat
	smoothedRate float32
}

var _ PointerHandler = (*Controller)(nil)

// NewController returns a controller at rest.
func NewController() *Controller {
	return &Controller{
		Orientation:     math.QuatIdentity(),
		PointerRotation: math.QuatIdentity(),
		RotationAxis:    math.AxisX,
		SnapDirection:   math.Vec3{Z: -1},
		combined:        math.QuatIdentity(),
	}
}

// SetSize sets the canvas client size used to project pointer positions.
func (c *Controller) SetSize(width, height float32) {
	c.width = width
	c.height = height
}

// PointerDown starts a drag at (x, y).
func (c *Controller) PointerDown(x, y float32) {
	c.pointerPos = math.Vec2{X: x, Y: y}
	c.previousPos = c.pointerPos
	c.pointerDown = true
}

// PointerMove records the pointer position. Moves without a held pointer
// are ignored.
func (c *Controller) PointerMove(x, y float32) {
	if c.pointerDown {
		c.pointerPos = math.Vec2{X: x, Y: y}
	}
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	c.pointerDown = false
}

// PointerLeave ends a drag when the pointer leaves the canvas.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

// IsPointerDown reports whether a drag is in progress.
func (c *Controller) IsPointerDown() bool {
	return c.pointerDown
}

// SetSnapTarget sets the world direction of the item to pull to the front.
func (c *Controller) SetSnapTarget(dir math.Vec3) {
	c.snapTarget = dir
	c.hasSnapTarget = true
}

// ClearSnapTarget stops snapping.
func (c *Controller) ClearSnapTarget() {
	c.hasSnapTarget = false
}

// SnapTarget returns the current snap target, if any.
func (c *Controller) SnapTarget() (math.Vec3, bool) {
	return c.snapTarget, c.hasSnapTarget
}

// Update advances the controller by deltaMS milliseconds. Rates are
// expressed per targetFrameMS so the motion is frame-rate independent.
func (c *Controller) Update(deltaMS, targetFrameMS float32) {
	if targetFrameMS <= 0 {
		targetFrameMS = 16
	}
	timeScale := deltaMS/targetFrameMS + 0.00001
	angleFactor := timeScale
	snapRotation := math.QuatIdentity()

	if c.pointerDown {
		intensity := dragIntensity * timeScale
		amplification := angleAmplification / timeScale

		mid := c.pointerPos.Sub(c.previousPos).Scale(intensity)
		if mid.LengthSq() > epsilon {
			mid = c.previousPos.Add(mid)

			a := c.Project(mid.X, mid.Y).Normalize()
			b := c.Project(c.previousPos.X, c.previousPos.Y).Normalize()
			c.previousPos = mid

			angleFactor *= amplification
			c.PointerRotation = QuatFromVectors(a, b, angleFactor)
		} else {
			c.PointerRotation = c.PointerRotation.Slerp(math.QuatIdentity(), intensity)
		}
	} else {
		c.PointerRotation = c.PointerRotation.Slerp(math.QuatIdentity(), idleIntensity*timeScale)

		if c.hasSnapTarget {
			sqrDist := c.snapTarget.DistanceSq(c.SnapDirection)
			distanceFactor := float32(gomath.Max(0.1, float64(1-sqrDist*10)))
			angleFactor *= snapIntensity * distanceFactor
			snapRotation = QuatFromVectors(c.snapTarget, c.SnapDirection, angleFactor)
		}
	}

	step := snapRotation.Mul(c.PointerRotation)
	c.Orientation = step.Mul(c.Orientation).Normalize()

	c.combined = c.combined.Slerp(step, axisIntensity*timeScale).Normalize()

	var rate float32
	if axis, angle, ok := c.combined.AxisAngle(); ok {
		rate = angle / (2 * gomath.Pi)
		c.RotationAxis = axis
	}

	c.smoothedRate += (rate - c.smoothedRate) * velocityIntensity * timeScale
	c.RotationVelocity = c.smoothedRate / timeScale
}

// Project maps a canvas point onto the virtual trackball. Points near the
// centre land on the sphere; points further out land on a hyperbolic sheet so
// drags near the edges keep rotating smoothly.
func (c *Controller) Project(x, y float32) math.Vec3 {
	w, h := c.width, c.height
	s := w
	if h > s {
		s = h
	}
	s--
	if s <= 0 {
		s = 1
	}

	px := (2*x - w - 1) / s
	py := (2*y - h - 1) / s
	xySq := px*px + py*py
	rSq := float32(radius * radius)

	var z float32
	if xySq <= rSq/2 {
		z = float32(gomath.Sqrt(float64(rSq - xySq)))
	} else {
		z = rSq / float32(gomath.Sqrt(float64(xySq)))
	}
	return math.Vec3{X: -px, Y: py, Z: z}
}

// QuatFromVectors returns the rotation carrying a onto b, with its angle
// scaled by angleFactor. a and b should be unit vectors.
func QuatFromVectors(a, b math.Vec3, angleFactor float32) math.Quat {
	axis := a.Cross(b).Normalize()
	d := float64(a.Dot(b))
	d = gomath.Max(-1, gomath.Min(1, d))
	angle := float32(gomath.Acos(d)) * angleFactor
	return math.QuatFromAxisAngle(axis, angle)
}
