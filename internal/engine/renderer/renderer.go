// Package renderer draws the carousel with OpenGL 4.1 core.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/pulpcarousel/internal/carousel"
	"github.com/Faultbox/pulpcarousel/internal/engine/renderer/shaders"
	"github.com/Faultbox/pulpcarousel/internal/engine/shader"
	"github.com/Faultbox/pulpcarousel/internal/geometry"
	"github.com/Faultbox/pulpcarousel/internal/logger"
)

// Attribute locations shared with the disc shaders.
const (
	locPosition = 0
	locUV       = 1
	locInstance = 2 // mat4: occupies 2..5
)

const bytesPerMatrix = 16 * 4

// Renderer is the OpenGL implementation of carousel.Backend. All methods
// must run on the thread that owns the GL context.
type Renderer struct {
	log *zap.Logger

	program uint32

	locWorld        int32
	locView         int32
	locProjection   int32
	locCameraPos    int32
	locRotationAxis int32
	locTexture      int32
	locItemCount    int32
	locAtlasSize    int32

	vao         uint32
	positionVBO uint32
	uvVBO       uint32
	ebo         uint32
	instanceVBO uint32

	indexCount    int32
	instanceCount int32

	texture uint32
}

var _ carousel.Backend = (*Renderer)(nil)

// New creates a renderer. No GL calls are made until Setup.
// IMPORTANT: Setup must be called AFTER the OpenGL context is created!
func New() *Renderer {
	return &Renderer{log: logger.Named("renderer")}
}

// Setup initialises OpenGL and uploads the disc mesh.
func (r *Renderer) Setup(disc geometry.Buffers, instanceCount int) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	program, err := shader.CompileProgram(shaders.DiscVertexShader, shaders.DiscFragmentShader, map[string]uint32{
		"aModelPosition":  locPosition,
		"aModelUvs":       locUV,
		"aInstanceMatrix": locInstance,
	})
	if err != nil {
		return fmt.Errorf("disc shader: %w", err)
	}
	r.program = program

	r.locWorld = shader.GetUniform(program, "uWorldMatrix")
	r.locView = shader.GetUniform(program, "uViewMatrix")
	r.locProjection = shader.GetUniform(program, "uProjectionMatrix")
	r.locCameraPos = shader.GetUniform(program, "uCameraPosition")
	r.locRotationAxis = shader.GetUniform(program, "uRotationAxisVelocity")
	r.locTexture = shader.GetUniform(program, "uTex")
	r.locItemCount = shader.GetUniform(program, "uItemCount")
	r.locAtlasSize = shader.GetUniform(program, "uAtlasSize")

	if len(disc.Positions) == 0 || len(disc.Indices) == 0 {
		r.Close()
		return fmt.Errorf("disc mesh is empty")
	}
	r.createDisc(disc, instanceCount)
	r.createTexture()

	r.log.Debug("disc pipeline ready",
		zap.Uint32("program", r.program),
		zap.Int32("indices", r.indexCount),
		zap.Int32("instances", r.instanceCount),
	)
	return nil
}

func (r *Renderer) createDisc(disc geometry.Buffers, instanceCount int) {
	r.indexCount = int32(len(disc.Indices))
	r.instanceCount = int32(instanceCount)

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.positionVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.positionVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(disc.Positions)*4, gl.Ptr(disc.Positions), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(locPosition, 3, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(locPosition)

	gl.GenBuffers(1, &r.uvVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.uvVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(disc.UVs)*4, gl.Ptr(disc.UVs), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(locUV, 2, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(locUV)

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(disc.Indices)*2, gl.Ptr(disc.Indices), gl.STATIC_DRAW)

	// One mat4 per instance, fed as four vec4 columns.
	gl.GenBuffers(1, &r.instanceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.instanceVBO)
	gl.BufferData(gl.ARRAY_BUFFER, instanceCount*bytesPerMatrix, nil, gl.DYNAMIC_DRAW)
	for j := uint32(0); j < 4; j++ {
		loc := uint32(locInstance) + j
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, bytesPerMatrix, uintptr(j*4*4))
		gl.VertexAttribDivisor(loc, 1)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (r *Renderer) createTexture() {
	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// UploadInstances writes all instance matrices with a single call.
func (r *Renderer) UploadInstances(matrices []float32) {
	if len(matrices) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.instanceVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(matrices)*4, gl.Ptr(matrices))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// UploadAtlas replaces the disc texture.
func (r *Renderer) UploadAtlas(img *image.RGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	pix := img.Pix
	if img.Stride != b.Dx()*4 {
		// Sub-images carry row padding GL does not expect.
		tight := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(tight.Pix[y*tight.Stride:(y+1)*tight.Stride], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		pix = tight.Pix
	}

	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.log.Debug("texture uploaded", zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
}

// Viewport resizes the GL viewport.
func (r *Renderer) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// Draw clears the surface and draws every disc instance.
func (r *Renderer) Draw(u carousel.Uniforms) {
	gl.UseProgram(r.program)

	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UniformMatrix4fv(r.locWorld, 1, false, &u.World[0])
	gl.UniformMatrix4fv(r.locView, 1, false, &u.View[0])
	gl.UniformMatrix4fv(r.locProjection, 1, false, &u.Projection[0])
	gl.Uniform3f(r.locCameraPos, u.CameraPosition.X, u.CameraPosition.Y, u.CameraPosition.Z)
	gl.Uniform4f(r.locRotationAxis, u.RotationAxis.X, u.RotationAxis.Y, u.RotationAxis.Z, u.RotationVelocity)
	gl.Uniform1f(r.locItemCount, u.ItemCount)
	gl.Uniform1f(r.locAtlasSize, u.AtlasSide)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.Uniform1i(r.locTexture, 0)

	gl.BindVertexArray(r.vao)
	gl.DrawElementsInstanced(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_SHORT, nil, r.instanceCount)
	gl.BindVertexArray(0)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// Close releases GL objects.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
	}
	for _, buf := range []*uint32{&r.instanceVBO, &r.ebo, &r.uvVBO, &r.positionVBO} {
		if *buf != 0 {
			gl.DeleteBuffers(1, buf)
		}
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
	*r = Renderer{log: r.log}
}
