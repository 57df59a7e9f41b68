package geometry

// Options carries the capability and display flags shared by every shape
// group of one main model. Groups hold a pointer, so changing a flag takes
// effect on the next draw.
type Options struct {
	// MultiDraw batches every strip of a kind into one multi-draw call.
	MultiDraw bool
	// StencilConditionals resolves conditional lines with a stencil pass
	// instead of the CPU visibility test.
	StencilConditionals bool
	// VisibilityFlags stores conditional endpoints twice, the second copy
	// with its visibility flag cleared, for hardware edge-flag arrays.
	VisibilityFlags bool
	// DrawNormals emits debug segments along every surface normal.
	DrawNormals bool
	// LineJoins redraws line endpoints as points.
	LineJoins bool
	// ShowAllConditional draws conditional lines without testing them.
	ShowAllConditional bool
	// ConditionalControlPoints also draws segments to the control points.
	ConditionalControlPoints bool
	// TransparencyThreshold is the alpha below which geometry is routed to
	// the transparent collector.
	TransparencyThreshold uint8
}

// DefaultOptions returns options with every capability off.
func DefaultOptions() *Options {
	return &Options{TransparencyThreshold: DefaultTransparencyThreshold}
}

func (o *Options) hardwareConditionals() bool {
	return o.StencilConditionals && o.VisibilityFlags
}
