package model

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/logger"
)

// Settings are the main-model flags that do not reach the shape groups.
type Settings struct {
	// BFC routes certified geometry to the BFC sections.
	BFC bool
	// FlattenParts merges the sub-tree of every part into the part itself.
	FlattenParts bool
	// SortTransparent re-sorts the transparent triangles for every view.
	SortTransparent bool
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{BFC: true, FlattenParts: true, SortTransparent: true}
}

// MainModel is the root of a model tree. It owns the vertex stores shared
// by every model in the tree, the shape-group options and the transparent
// triangles collected from the tree.
type MainModel struct {
	*Model

	options  *geometry.Options
	settings Settings

	vertices            *geometry.VertexStore
	coloredVertices     *geometry.VertexStore
	studVertices        *geometry.VertexStore
	coloredStudVertices *geometry.VertexStore

	transparent *TransparentCollector
	models      map[string]*Model

	// Color and EdgeColor are used for geometry that inherits its color
	// all the way up to the root.
	Color     geometry.Color
	EdgeColor geometry.Color
}

// NewMainModel creates an empty main model. A nil options pointer selects
// geometry.DefaultOptions.
func NewMainModel(name string, options *geometry.Options, settings Settings) *MainModel {
	if options == nil {
		options = geometry.DefaultOptions()
	}
	m := &MainModel{
		options:             options,
		settings:            settings,
		vertices:            geometry.NewVertexStore(),
		coloredVertices:     geometry.NewVertexStore(),
		studVertices:        geometry.NewVertexStore(),
		coloredStudVertices: geometry.NewVertexStore(),
		models:              make(map[string]*Model),
		Color:               geometry.RGBA(0x80, 0x80, 0x80, 0xff),
		EdgeColor:           geometry.RGBA(0x33, 0x33, 0x33, 0xff),
	}
	m.Model = m.NewModel(name)
	m.transparent = newTransparentCollector(m)
	return m
}

// Options returns the options shared by every shape group of the tree.
func (m *MainModel) Options() *geometry.Options { return m.options }

// Settings returns the main-model flags.
func (m *MainModel) Settings() Settings { return m.settings }

// NewModel creates an empty model bound to m. It is not registered; use
// Register for models that other files refer to by name.
func (m *MainModel) NewModel(name string) *Model {
	return &Model{name: name, main: m}
}

// Register records model under its name so later references reuse it.
func (m *MainModel) Register(model *Model) {
	m.models[model.name] = model
}

// Lookup returns a registered model.
func (m *MainModel) Lookup(name string) (*Model, bool) {
	model, ok := m.models[name]
	return model, ok
}

// ModelCount returns the number of registered models.
func (m *MainModel) ModelCount() int {
	return len(m.models)
}

// Stores returns the four shared vertex stores: plain, colored, stud and
// colored stud.
func (m *MainModel) Stores() []*geometry.VertexStore {
	return []*geometry.VertexStore{m.vertices, m.coloredVertices, m.studVertices, m.coloredStudVertices}
}

func (m *MainModel) store(section Section, colored bool) *geometry.VertexStore {
	switch {
	case section.IsStud() && colored:
		return m.coloredStudVertices
	case section.IsStud():
		return m.studVertices
	case colored:
		return m.coloredVertices
	default:
		return m.vertices
	}
}

// Transparent returns the collector holding the transparent triangles.
func (m *MainModel) Transparent() *TransparentCollector {
	return m.transparent
}

// Finish runs the post-load passes: transparent geometry is moved out of
// the tree into the collector. It must be called once, after loading.
func (m *MainModel) Finish() {
	start := time.Now()
	m.transferTransparent()
	logger.Since("main model finished", start,
		zap.String("model", m.name),
		zap.Int("models", len(m.models)),
		zap.Int("transparentTriangles", m.transparent.Len()),
	)
}
