package renderer

import (
	"github.com/go-gl/gl/v2.1/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/logger"
)

// storeBuffers mirrors one vertex store on the GPU. It is re-uploaded
// whenever the store's revision moves.
type storeBuffers struct {
	revision uint64
	channels geometry.Channels
	count    int

	positions uint32
	normals   uint32
	colors    uint32
	edges     uint32
}

func (b *storeBuffers) delete() {
	for _, id := range []*uint32{&b.positions, &b.normals, &b.colors, &b.edges} {
		if *id != 0 {
			gl.DeleteBuffers(1, id)
			*id = 0
		}
	}
}

func upload(id *uint32, size int, data interface{}) {
	if *id == 0 {
		gl.GenBuffers(1, id)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, *id)
	gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(data), gl.STATIC_DRAW)
}

// buffersFor returns the up-to-date buffers of store.
func (r *Renderer) buffersFor(store *geometry.VertexStore) *storeBuffers {
	b, ok := r.buffers[store]
	if !ok {
		b = &storeBuffers{}
		r.buffers[store] = b
	}
	if ok && b.revision == store.Revision() {
		return b
	}

	b.revision, b.channels, b.count = store.Revision(), store.Channels(), store.Len()
	if b.count == 0 {
		return b
	}
	upload(&b.positions, b.count*12, &store.Positions()[0])
	upload(&b.normals, b.count*12, &store.Normals()[0])
	if store.Has(geometry.ChannelColors) {
		colors := colorBytes(store.Colors())
		upload(&b.colors, len(colors), &colors[0])
	}
	if store.Has(geometry.ChannelVisibility) {
		edges := edgeFlagBytes(store.VisibilityFlags())
		upload(&b.edges, len(edges), &edges[0])
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	logger.Debug("vertex store uploaded",
		zap.Int("vertices", b.count),
		zap.Uint64("revision", b.revision),
	)
	return b
}

// bind points the client arrays at b. Per-vertex colors are used only
// when colored is set; otherwise color is the current color.
func (b *storeBuffers) bind(colored bool, color geometry.Color) {
	gl.EnableClientState(gl.VERTEX_ARRAY)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.positions)
	gl.VertexPointer(3, gl.FLOAT, 0, nil)

	gl.EnableClientState(gl.NORMAL_ARRAY)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.normals)
	gl.NormalPointer(gl.FLOAT, 0, nil)

	if colored && b.colors != 0 {
		gl.EnableClientState(gl.COLOR_ARRAY)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.colors)
		gl.ColorPointer(4, gl.UNSIGNED_BYTE, 0, nil)
	} else {
		gl.DisableClientState(gl.COLOR_ARRAY)
		cr, cg, cb, ca := color.Components()
		gl.Color4ub(cr, cg, cb, ca)
	}

	if b.edges != 0 {
		gl.EnableClientState(gl.EDGE_FLAG_ARRAY)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.edges)
		gl.EdgeFlagPointer(0, nil)
	} else {
		gl.DisableClientState(gl.EDGE_FLAG_ARRAY)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// colorBytes lays colors out as R, G, B, A bytes.
func colorBytes(colors []geometry.Color) []uint8 {
	out := make([]uint8, 0, 4*len(colors))
	for _, c := range colors {
		r, g, b, a := c.Components()
		out = append(out, r, g, b, a)
	}
	return out
}

// edgeFlagBytes converts visibility flags to GL booleans.
func edgeFlagBytes(flags []bool) []uint8 {
	out := make([]uint8, len(flags))
	for i, f := range flags {
		if f {
			out[i] = gl.TRUE
		}
	}
	return out
}
