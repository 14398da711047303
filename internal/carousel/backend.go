package carousel

import (
	"image"

	"github.com/Faultbox/pulpcarousel/internal/geometry"
	"github.com/Faultbox/pulpcarousel/pkg/math"
)

// Uniforms is the per-frame shader state.
type Uniforms struct {
	World      math.Mat4
	View       math.Mat4
	Projection math.Mat4

	CameraPosition math.Vec3

	// RotationAxis and RotationVelocity drive the stretch effect.
	RotationAxis     math.Vec3
	RotationVelocity float32

	// ItemCount and AtlasSide let the fragment stage find an instance's
	// atlas cell. Both are at least 1.
	ItemCount float32
	AtlasSide float32
}

// Backend is the graphics device the engine draws through.
type Backend interface {
	// Setup creates the disc mesh and room for instanceCount 4x4 matrices.
	Setup(disc geometry.Buffers, instanceCount int) error
	// UploadInstances replaces all instance matrices in one write.
	UploadInstances(matrices []float32)
	// UploadAtlas replaces the texture sampled by the discs.
	UploadAtlas(img *image.RGBA)
	// Viewport resizes the drawing surface in pixels.
	Viewport(width, height int)
	// Draw clears the surface and draws every instance.
	Draw(u Uniforms)
	Close()
}
