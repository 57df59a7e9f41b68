package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/Faultbox/brickview/internal/engine/debug"
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/model"
	"github.com/Faultbox/brickview/pkg/math"
)

// primitiveMode maps a shape kind to its GL primitive. Conditional lines
// are resolved to plain lines before they reach the renderer.
func primitiveMode(k geometry.Kind) (uint32, bool) {
	switch k {
	case geometry.Point:
		return gl.POINTS, true
	case geometry.Line, geometry.ConditionalLine:
		return gl.LINES, true
	case geometry.Triangle:
		return gl.TRIANGLES, true
	case geometry.Quad:
		return gl.QUADS, true
	case geometry.TriangleStrip:
		return gl.TRIANGLE_STRIP, true
	case geometry.QuadStrip:
		return gl.QUAD_STRIP, true
	case geometry.TriangleFan:
		return gl.TRIANGLE_FAN, true
	}
	return 0, false
}

// Render submits a frame's draw list: opaque batches first, then the
// transparent batch with blending, then normal segments.
func (r *Renderer) Render(list *model.DrawList) {
	r.program.Use()
	lighting := r.program.Uniform("uLighting")

	gl.Enable(gl.CULL_FACE)
	for i := range list.Batches {
		b := &list.Batches[i]
		if b.Section.IsBFC() {
			gl.Enable(gl.CULL_FACE)
		} else {
			gl.Disable(gl.CULL_FACE)
		}
		if b.Section.IsLine() {
			gl.Uniform1i(lighting, 0)
			gl.Disable(gl.POLYGON_OFFSET_FILL)
		} else {
			gl.Uniform1i(lighting, 1)
			gl.Enable(gl.POLYGON_OFFSET_FILL)
		}
		r.drawBatch(b)
	}
	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.Disable(gl.CULL_FACE)

	if t := list.Transparent; t != nil {
		gl.Uniform1i(lighting, 1)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		r.drawBatch(t)
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}

	gl.Uniform1i(lighting, 0)
	for i := range list.Batches {
		if n := list.Batches[i].Normals; len(n) > 0 {
			r.drawSegments(list.Batches[i].Matrix, n, geometry.RGBA(0xff, 0, 0xff, 0xff))
		}
	}
	r.disableArrays()
}

func (r *Renderer) drawBatch(b *model.Batch) {
	store := b.Group.Store()
	if store.Len() == 0 {
		return
	}
	gl.LoadMatrixf(b.Matrix.Ptr())
	buffers := r.buffersFor(store)
	buffers.bind(b.Colored, b.Color)
	r.stats.Batches++

	if b.Stencil != nil {
		r.stencilPass(b, buffers)
		return
	}
	for _, call := range b.Calls {
		r.submit(call)
	}
}

// submit streams the indices of one call and draws them.
func (r *Renderer) submit(call geometry.DrawCall) {
	mode, ok := primitiveMode(call.Kind)
	if !ok || len(call.Indices) == 0 {
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.elements)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(call.Indices)*4, gl.Ptr(&call.Indices[0]), gl.STREAM_DRAW)
	r.stats.Calls++
	r.stats.Indices += len(call.Indices)

	if md := call.Strips; md != nil {
		offsets := make([]unsafe.Pointer, len(md.Offsets))
		for i, o := range md.Offsets {
			offsets[i] = gl.PtrOffset(o * 4)
		}
		gl.MultiDrawElements(mode, &md.Counts[0], gl.UNSIGNED_INT, &offsets[0], int32(len(md.Counts)))
		return
	}
	gl.DrawElements(mode, int32(len(call.Indices)), gl.UNSIGNED_INT, nil)
}

// stencilPass draws a conditional-line batch. The stencil triangles are
// drawn as outlines with only the line edge flagged, inverting the
// stencil on every covered pixel; the lines are then drawn where the
// stencil is set.
func (r *Renderer) stencilPass(b *model.Batch, buffers *storeBuffers) {
	gl.PushAttrib(gl.ENABLE_BIT | gl.CURRENT_BIT | gl.STENCIL_BUFFER_BIT)
	gl.Enable(gl.STENCIL_TEST)
	gl.Enable(gl.CULL_FACE)

	gl.PushAttrib(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.ColorMask(false, false, false, false)
	gl.DepthMask(false)
	gl.StencilMask(0xFFFFFFFF)
	gl.StencilFunc(gl.ALWAYS, 0x7FFFFFFF, 0xFFFFFFFF)
	gl.StencilOp(gl.INVERT, gl.KEEP, gl.INVERT)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)

	if flags := b.Stencil.EdgeFlags; flags != nil {
		r.drawFlagged(b.Group.Store(), b.Stencil.Indices, flags)
	} else {
		r.submit(*b.Stencil)
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.PopAttrib()

	gl.StencilFunc(gl.NOTEQUAL, 0, 0xFFFFFFFF)
	gl.StencilOp(gl.KEEP, gl.KEEP, gl.KEEP)
	buffers.bind(b.Colored, b.Color)
	for _, call := range b.Calls {
		r.submit(call)
	}
	gl.PopAttrib()
}

// drawFlagged draws triangles in immediate mode with an explicit edge
// flag per vertex, for stores without a visibility channel.
func (r *Renderer) drawFlagged(store *geometry.VertexStore, indices []uint32, flags []bool) {
	positions := store.Positions()
	gl.Begin(gl.TRIANGLES)
	for i, idx := range indices {
		gl.EdgeFlag(flags[i])
		p := positions[idx]
		gl.Vertex3f(p.X, p.Y, p.Z)
	}
	gl.End()
	gl.EdgeFlag(true)
	r.stats.Calls++
	r.stats.Indices += len(indices)
}

// drawSegments draws line segments given as endpoint pairs.
func (r *Renderer) drawSegments(matrix math.Mat4, points []math.Vec3, color geometry.Color) {
	r.disableArrays()
	gl.LoadMatrixf(matrix.Ptr())
	cr, cg, cb, ca := color.Components()
	gl.Color4ub(cr, cg, cb, ca)
	gl.Begin(gl.LINES)
	for _, p := range points {
		gl.Vertex3f(p.X, p.Y, p.Z)
	}
	gl.End()
}

// DrawBox outlines bounds, in the coordinates of view.
func (r *Renderer) DrawBox(view math.Mat4, bounds geometry.Bounds, color geometry.Color) {
	lines := debug.BoxLines(bounds, 0.5)
	if len(lines) == 0 {
		return
	}
	gl.UseProgram(0)
	r.drawSegments(view, lines, color)
}

func (r *Renderer) disableArrays() {
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.DisableClientState(gl.VERTEX_ARRAY)
	gl.DisableClientState(gl.NORMAL_ARRAY)
	gl.DisableClientState(gl.COLOR_ARRAY)
	gl.DisableClientState(gl.EDGE_FLAG_ARRAY)
}
