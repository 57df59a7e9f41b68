// Package renderer submits model draw lists to OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/shader"
	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background geometry.Color
	LineWidth  float32
}

// FrameStats counts what the last frame submitted.
type FrameStats struct {
	Batches int
	Calls   int
	Indices int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	program *shader.Program
	// elements streams the index lists of the current frame.
	elements uint32
	buffers  map[*geometry.VertexStore]*storeBuffers

	stats FrameStats
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		buffers: make(map[*geometry.VertexStore]*storeBuffers),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	r.program, err = shader.CompileProgram(surfaceVertexShader, surfaceFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	gl.GenBuffers(1, &r.elements)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.PolygonOffset(1, 1)
	bg := cfg.Background.Floats()
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	if cfg.LineWidth > 0 {
		gl.LineWidth(cfg.LineWidth)
	}
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.Release()
	if r.elements != 0 {
		gl.DeleteBuffers(1, &r.elements)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Release frees the buffers of every uploaded vertex store. Call it when
// the model is replaced.
func (r *Renderer) Release() {
	for store, b := range r.buffers {
		b.delete()
		delete(r.buffers, store)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Aspect returns the viewport width to height ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame with the given projection.
func (r *Renderer) Begin(projection math.Mat4) {
	r.stats = FrameStats{}
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(projection.Ptr())
	gl.MatrixMode(gl.MODELVIEW)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
}

// Stats returns the counts of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// ReadPixels returns the RGBA contents of the frame buffer, bottom row
// first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, w, h
}

const surfaceVertexShader = `
#version 120

uniform bool uLighting;
varying vec4 vColor;

void main() {
	gl_Position = ftransform();
	vColor = gl_Color;
	if (uLighting && dot(gl_Normal, gl_Normal) > 0.0) {
		vec3 n = normalize(gl_NormalMatrix * gl_Normal);
		vec3 l = normalize(vec3(0.3, 0.6, 1.0));
		float diffuse = 0.35 + 0.65 * abs(dot(n, l));
		vColor = vec4(gl_Color.rgb * diffuse, gl_Color.a);
	}
}
`

const surfaceFragmentShader = `
#version 120

varying vec4 vColor;

void main() {
	gl_FragColor = vColor;
}
`
