package arcball

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/pulpcarousel/pkg/math"
)

const frameMS = float32(1000.0 / 60.0)

func approx(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) < float64(eps)
}

func TestProjectCentre(t *testing.T) {
	c := NewController()
	c.SetSize(801, 601)

	p := c.Project(401, 301)
	if !approx(p.X, 0, 1e-6) || !approx(p.Y, 0, 1e-6) || !approx(p.Z, 2, 1e-6) {
		t.Errorf("Project(centre) = %+v, want (0,0,2)", p)
	}
}

func TestProjectMirrorsX(t *testing.T) {
	c := NewController()
	c.SetSize(101, 101)

	right := c.Project(76, 51)
	if right.X >= 0 {
		t.Errorf("point right of centre projected to X = %v, want negative", right.X)
	}
	below := c.Project(51, 76)
	if below.Y <= 0 {
		t.Errorf("point below centre projected to Y = %v, want positive", below.Y)
	}
}

func TestProjectHyperbolicSheet(t *testing.T) {
	c := NewController()
	c.SetSize(101, 101)

	// (2, 0) in normalised units: beyond r²/2, so z = r²/|xy|.
	p := c.Project(151, 51)
	if !approx(p.X, -2, 1e-5) || !approx(p.Z, 2, 1e-5) {
		t.Errorf("Project = %+v, want (-2, 0, 2)", p)
	}

	// (1, 1): exactly on the boundary, still on the sphere.
	q := c.Project(101, 101)
	if !approx(q.Z, float32(gomath.Sqrt2), 1e-5) {
		t.Errorf("boundary z = %v, want sqrt(2)", q.Z)
	}
}

func TestQuatFromVectors(t *testing.T) {
	q := QuatFromVectors(math.AxisX, math.AxisY, 1)
	got := q.RotateVec3(math.AxisX)
	if !approx(got.X, 0, 1e-5) || !approx(got.Y, 1, 1e-5) {
		t.Errorf("full rotation maps X to %+v, want Y", got)
	}

	half := QuatFromVectors(math.AxisX, math.AxisY, 0.5).RotateVec3(math.AxisX)
	s := float32(gomath.Sqrt2 / 2)
	if !approx(half.X, s, 1e-5) || !approx(half.Y, s, 1e-5) {
		t.Errorf("half rotation maps X to %+v", half)
	}

	same := QuatFromVectors(math.AxisZ, math.AxisZ, 3)
	if same != math.QuatIdentity() {
		t.Errorf("identical vectors = %+v, want identity", same)
	}
}

func TestIdleIsStable(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)
	for i := 0; i < 120; i++ {
		c.Update(frameMS, frameMS)
	}
	if c.Orientation != math.QuatIdentity() {
		t.Errorf("Orientation drifted to %+v", c.Orientation)
	}
	if c.RotationVelocity != 0 {
		t.Errorf("RotationVelocity = %v, want 0", c.RotationVelocity)
	}
}

func TestZeroDeltaKeepsOrientation(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)
	c.Orientation = math.QuatFromAxisAngle(math.Vec3{X: 1, Y: 1}.Normalize(), 0.7)
	c.SetSnapTarget(math.Vec3{X: 0.3, Z: -1}.Normalize())

	before := c.Orientation
	for i := 0; i < 10; i++ {
		c.Update(0, frameMS)
	}
	if d := c.Orientation.Dot(before); !approx(float32(gomath.Abs(float64(d))), 1, 1e-5) {
		t.Errorf("Orientation moved from %+v to %+v", before, c.Orientation)
	}
}

func TestProjectionIsContinuous(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)

	from := c.Project(400, 300).Normalize()
	prevW := float32(-1)
	for _, d := range []float32{100, 10, 1, 0.1} {
		to := c.Project(400+d, 300).Normalize()
		w := QuatFromVectors(from, to, 1).W
		if w < prevW {
			t.Errorf("offset %v: W = %v, below %v for the larger offset", d, w, prevW)
		}
		prevW = w
	}
	if !approx(prevW, 1, 1e-6) {
		t.Errorf("W = %v for a 0.1px offset, want ~1", prevW)
	}
}

func TestMoveWithoutDownIgnored(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)
	c.PointerMove(500, 300)
	c.Update(frameMS, frameMS)
	if c.PointerRotation != math.QuatIdentity() {
		t.Errorf("PointerRotation = %+v, want identity", c.PointerRotation)
	}
}

func TestTinyDragBelowEpsilon(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)
	c.PointerDown(400, 300)
	c.PointerMove(401, 300)
	c.Update(frameMS, frameMS)

	if c.PointerRotation != math.QuatIdentity() {
		t.Errorf("PointerRotation = %+v, want identity", c.PointerRotation)
	}
}

func TestHorizontalDragRotatesAboutY(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)
	c.PointerDown(400, 300)
	for i := 1; i <= 6; i++ {
		c.PointerMove(400+float32(60*i), 300)
		c.Update(frameMS, frameMS)
	}

	if c.RotationVelocity <= 0.01 {
		t.Errorf("RotationVelocity = %v, want > 0.01 during drag", c.RotationVelocity)
	}
	if c.RotationAxis.Y < 0.9 {
		t.Errorf("RotationAxis = %+v, want mostly +Y", c.RotationAxis)
	}
	if !c.IsPointerDown() {
		t.Error("IsPointerDown() = false during drag")
	}

	front := c.Orientation.RotateVec3(math.Vec3{Z: -1})
	if approx(front.X, 0, 1e-3) {
		t.Errorf("front point did not move: %+v", front)
	}
}

func TestReleaseDecays(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)
	c.PointerDown(400, 300)
	for i := 1; i <= 6; i++ {
		c.PointerMove(400+float32(60*i), 300)
		c.Update(frameMS, frameMS)
	}
	c.PointerLeave()
	if c.IsPointerDown() {
		t.Fatal("PointerLeave did not end the drag")
	}

	for i := 0; i < 300; i++ {
		c.Update(frameMS, frameMS)
	}
	if c.RotationVelocity > 0.001 {
		t.Errorf("RotationVelocity = %v after release, want ~0", c.RotationVelocity)
	}
	if c.PointerRotation.W < 0.99999 {
		t.Errorf("PointerRotation = %+v, want ~identity", c.PointerRotation)
	}
}

func TestSnapPullsTargetToFront(t *testing.T) {
	c := NewController()
	c.SetSize(800, 600)

	item := math.Vec3{X: 0.3, Z: -1}.Normalize()
	for i := 0; i < 240; i++ {
		c.SetSnapTarget(c.Orientation.RotateVec3(item))
		c.Update(frameMS, frameMS)
	}

	got := c.Orientation.RotateVec3(item)
	if d := got.DistanceSq(c.SnapDirection); d > 1e-4 {
		t.Errorf("item at %+v, distance² %v from front", got, d)
	}
	if _, ok := c.SnapTarget(); !ok {
		t.Error("SnapTarget() not set")
	}
	c.ClearSnapTarget()
	if _, ok := c.SnapTarget(); ok {
		t.Error("SnapTarget() still set after clear")
	}
}

func TestUpdateKeepsUnitOrientation(t *testing.T) {
	c := NewController()
	c.SetSize(640, 480)
	c.PointerDown(100, 100)
	for i := 0; i < 50; i++ {
		c.PointerMove(100+float32(i*13), 100+float32(i*7))
		c.Update(frameMS*float32(1+i%2), frameMS)
	}
	q := c.Orientation
	if n := q.Dot(q); !approx(n, 1, 1e-4) {
		t.Errorf("|Orientation|² = %v, want 1", n)
	}
}
