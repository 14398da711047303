// Package carousel drives the spherical item carousel: a sphere of discs,
// each showing one item, that the user spins with the pointer and that
// settles with the nearest item facing the viewer.
package carousel

import (
	"context"
	"image"
	gomath "math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pulpcarousel/internal/arcball"
	"github.com/Faultbox/pulpcarousel/internal/atlas"
	"github.com/Faultbox/pulpcarousel/internal/catalog"
	"github.com/Faultbox/pulpcarousel/internal/engine/camera"
	"github.com/Faultbox/pulpcarousel/internal/geometry"
	"github.com/Faultbox/pulpcarousel/internal/logger"
	"github.com/Faultbox/pulpcarousel/pkg/math"
)

const (
	discRadius = 1

	baseInstanceScale = 0.25
	scaleIntensity    = 0.6

	cameraDistance = 3
	frameShare     = 0.35

	idleDamping     = 5
	dragDamping     = 7
	dragPullBack    = 2.5
	dragVelocityZ   = 80
	stretchBoost    = 1.1
	controlTimeBias = 0.0001
)

// Engine owns one carousel instance. Frame, Resize and the pointer methods
// must be called from the thread that owns the backend.
type Engine struct {
	opts    Options
	items   []catalog.Item
	backend Backend
	log     *zap.Logger

	positions []math.Vec3
	instances []float32
	discIdx   int

	control *arcball.Controller
	camera  *camera.Camera
	loader  *atlas.Loader

	onActiveItem func(index int, item catalog.Item)
	onMovement   func(moving bool)
	onAtlas      func(img *image.RGBA)

	lastFrame      time.Duration
	smoothVelocity float32
	moving         bool
	activeIndex    int
	atlasReady     bool

	clientW, clientH float32
	pixelW, pixelH   int

	disabled bool

	stopOnce sync.Once
	stopped  bool
}

// New builds the carousel geometry and prepares backend. If the backend
// cannot be set up, the engine is returned disabled: it logs the failure and
// every later call is a no-op.
func New(backend Backend, items []catalog.Item, src atlas.Source, opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts:        opts,
		items:       items,
		backend:     backend,
		log:         logger.Named("carousel"),
		control:     arcball.NewController(),
		camera:      camera.New(cameraDistance * opts.Scale),
		activeIndex: -1,
	}

	sphere := geometry.NewIcosphere(opts.Subdivisions, opts.SphereRadius)
	e.positions = sphere.Positions()
	e.instances = make([]float32, len(e.positions)*16)

	disc := geometry.NewDisc(opts.DiscSteps, discRadius).Buffers()
	e.discIdx = disc.IndexCount()

	if err := backend.Setup(disc, len(e.positions)); err != nil {
		e.log.Warn("graphics setup failed, carousel disabled", zap.Error(err))
		e.disabled = true
		return e
	}

	backend.UploadAtlas(atlas.LoadingImage(atlas.LoadingSize))
	e.loader = atlas.NewLoader(atlas.NewLayout(len(items), opts.CellSize), items, src)

	e.log.Info("carousel ready",
		zap.Int("items", len(items)),
		zap.Int("discs", len(e.positions)),
		zap.Int("disc_indices", e.discIdx))
	return e
}

// Start begins loading item images in the background.
func (e *Engine) Start(ctx context.Context) {
	if e.disabled || e.stopped {
		return
	}
	e.loader.Start(ctx)
}

// Disabled reports whether the backend failed to set up.
func (e *Engine) Disabled() bool {
	return e.disabled
}

// OnActiveItem registers a callback fired whenever a different item becomes
// the one facing the viewer.
func (e *Engine) OnActiveItem(fn func(index int, item catalog.Item)) {
	e.onActiveItem = fn
}

// OnMovement registers a callback fired when the sphere starts or stops
// moving.
func (e *Engine) OnMovement(fn func(moving bool)) {
	e.onMovement = fn
}

// OnAtlas registers a callback fired once the composed atlas is uploaded.
func (e *Engine) OnAtlas(fn func(img *image.RGBA)) {
	e.onAtlas = fn
}

// Pointer returns the input sink for the carousel.
func (e *Engine) Pointer() arcball.PointerHandler {
	return e.control
}

// PointerLeave ends a drag when the pointer leaves the canvas.
func (e *Engine) PointerLeave() {
	e.control.PointerLeave()
}

// Controller exposes the orientation state.
func (e *Engine) Controller() *arcball.Controller {
	return e.control
}

// Camera exposes the camera.
func (e *Engine) Camera() *camera.Camera {
	return e.camera
}

// InstanceCount returns the number of discs.
func (e *Engine) InstanceCount() int {
	return len(e.positions)
}

// ActiveIndex returns the item facing the viewer, or -1 before the first
// frame.
func (e *Engine) ActiveIndex() int {
	return e.activeIndex
}

// Moving reports whether the sphere is being dragged or still spinning.
func (e *Engine) Moving() bool {
	return e.moving
}

// Resize updates the drawing surface for a window of clientW x clientH
// logical pixels whose drawable is drawW x drawH physical pixels. The
// viewport always covers the whole drawable.
func (e *Engine) Resize(clientW, clientH, drawW, drawH int) {
	if e.disabled || e.stopped {
		return
	}
	if drawW <= 0 || drawH <= 0 {
		drawW, drawH = clientW, clientH
	}
	if drawW != e.pixelW || drawH != e.pixelH {
		e.pixelW, e.pixelH = drawW, drawH
		e.backend.Viewport(drawW, drawH)
	}

	e.clientW, e.clientH = float32(clientW), float32(clientH)
	e.control.SetSize(e.clientW, e.clientH)
	e.camera.Fit(e.clientW, e.clientH, e.opts.SphereRadius*frameShare)
}

// Frame advances the animation to now, measured from any fixed origin, and
// draws it.
func (e *Engine) Frame(now time.Duration) {
	if e.disabled || e.stopped {
		return
	}

	delta := float32(now-e.lastFrame) / float32(time.Millisecond)
	e.lastFrame = now
	if delta > e.opts.MaxDeltaMS {
		delta = e.opts.MaxDeltaMS
	}
	if delta < 0 {
		delta = 0
	}

	e.animate(delta)
	e.pollAtlas()
	e.backend.Draw(e.uniforms())
}

func (e *Engine) animate(deltaMS float32) {
	e.control.Update(deltaMS, e.opts.TargetFrameMS)
	e.afterControl(deltaMS)

	q := e.control.Orientation
	for i, p := range e.positions {
		m := e.instanceMatrix(q.RotateVec3(p))
		copy(e.instances[i*16:(i+1)*16], m[:])
	}
	e.backend.UploadInstances(e.instances)

	e.smoothVelocity = e.control.RotationVelocity
}

// afterControl runs once the controller has moved. It sees the previous
// frame's smoothed velocity.
func (e *Engine) afterControl(deltaMS float32) {
	timeScale := deltaMS/e.opts.TargetFrameMS + controlTimeBias
	damping := idleDamping / timeScale
	targetZ := cameraDistance * e.opts.Scale

	down := e.control.IsPointerDown()
	moving := down || float32(gomath.Abs(float64(e.smoothVelocity))) > e.opts.MovingThreshold
	if moving != e.moving {
		e.moving = moving
		if e.onMovement != nil {
			e.onMovement(moving)
		}
	}

	if !down {
		nearest := e.nearestVertex()
		e.setActive(nearest % max(1, len(e.items)))
		e.control.SetSnapTarget(e.control.Orientation.RotateVec3(e.positions[nearest]).Normalize())
	} else {
		e.control.ClearSnapTarget()
		targetZ += e.control.RotationVelocity*dragVelocityZ + dragPullBack
		damping = dragDamping / timeScale
	}

	e.camera.EaseZ(targetZ, damping)
}

func (e *Engine) setActive(index int) {
	if index == e.activeIndex {
		return
	}
	e.activeIndex = index
	if e.onActiveItem == nil {
		return
	}
	var item catalog.Item
	if index < len(e.items) {
		item = e.items[index]
	}
	e.onActiveItem(index, item)
}

// nearestVertex returns the sphere vertex closest to the snap direction
// under the current orientation.
func (e *Engine) nearestVertex() int {
	dir := e.control.Orientation.Conjugate().RotateVec3(e.control.SnapDirection)
	best, nearest := float32(-1), 0
	for i, p := range e.positions {
		if d := dir.Dot(p); d > best {
			best, nearest = d, i
		}
	}
	return nearest
}

// instanceMatrix places a disc for the rotated vertex p: shrunk towards the
// back of the sphere, facing outwards along p.
func (e *Engine) instanceMatrix(p math.Vec3) math.Mat4 {
	r := e.opts.SphereRadius
	s := (abs32(p.Z)/r*scaleIntensity + (1 - scaleIntensity)) * baseInstanceScale

	return math.Translate(p.Negate()).
		Mul(math.TargetTo(math.Vec3{}, p, math.AxisY)).
		Mul(math.UniformScale(s)).
		Mul(math.Translate(math.Vec3{Z: -r}))
}

func (e *Engine) pollAtlas() {
	if e.atlasReady {
		return
	}
	select {
	case img := <-e.loader.Ready():
		e.backend.UploadAtlas(img)
		e.atlasReady = true
		e.log.Debug("atlas uploaded", zap.Int("size", img.Bounds().Dx()))
		if e.onAtlas != nil {
			e.onAtlas(img)
		}
	default:
	}
}

func (e *Engine) uniforms() Uniforms {
	return Uniforms{
		World:            math.Identity(),
		View:             e.camera.View(),
		Projection:       e.camera.Projection(),
		CameraPosition:   e.camera.Position,
		RotationAxis:     e.control.RotationAxis,
		RotationVelocity: e.smoothVelocity * stretchBoost,
		ItemCount:        float32(max(1, len(e.items))),
		AtlasSide:        float32(e.loader.Layout().Side),
	}
}

// AtlasReady reports whether the composed atlas has been uploaded.
func (e *Engine) AtlasReady() bool {
	return e.atlasReady
}

// Instances returns the instance matrices written by the last frame.
func (e *Engine) Instances() []float32 {
	return e.instances
}

// Stop halts the engine, abandons image loading and releases the backend.
// It is safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.stopped = true
		if e.loader != nil {
			e.loader.Close()
		}
		if !e.disabled {
			e.backend.Close()
		}
		e.log.Debug("carousel stopped")
	})
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
