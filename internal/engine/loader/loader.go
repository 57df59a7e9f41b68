// Package loader builds a model tree from LDraw files.
package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/brickview/internal/assets"
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/model"
	"github.com/Faultbox/brickview/internal/logger"
	"github.com/Faultbox/brickview/pkg/ldraw"
	"github.com/Faultbox/brickview/pkg/math"
)

// Options configures a Loader.
type Options struct {
	// Geometry is shared by every shape group of the loaded tree.
	Geometry *geometry.Options
	Settings model.Settings
	// Palette defaults to ldraw.DefaultPalette. Each load merges the
	// colours its files define into a copy, so Palette itself is never
	// changed.
	Palette *ldraw.Palette
	// Primitives replaces known circle primitives with generated
	// geometry.
	Primitives bool
	// Segments is the number of segments of a full generated circle.
	Segments int
	// FlattenModel merges the whole tree into the main model before the
	// transparent pass.
	FlattenModel bool
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{
		Geometry:   geometry.DefaultOptions(),
		Settings:   model.DefaultSettings(),
		Primitives: true,
		Segments:   16,
	}
}

// Loader turns LDraw documents into a model tree.
type Loader struct {
	lib  *assets.Library
	opts Options

	palette *ldraw.Palette
	main    *model.MainModel
	models  map[modelKey]*model.Model
	loading map[string]bool
	missing map[string]bool
}

// modelKey identifies a built model. A file referenced both inside and
// outside stud geometry is built once for each, since stud shapes go to
// their own sections.
type modelKey struct {
	name string
	stud bool
}

// New creates a loader resolving references through lib.
func New(lib *assets.Library, opts Options) *Loader {
	if opts.Palette == nil {
		opts.Palette = ldraw.DefaultPalette()
	}
	if opts.Segments <= 0 {
		opts.Segments = 16
	}
	return &Loader{lib: lib, opts: opts}
}

// Missing returns the references that could not be resolved by the last
// load, sorted by name.
func (l *Loader) Missing() []string {
	out := make([]string, 0, len(l.missing))
	for name := range l.missing {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LoadFile parses the model at path and builds its tree.
func (l *Loader) LoadFile(path string) (*model.MainModel, error) {
	doc, err := ldraw.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return l.LoadDocument(doc, filepath.Dir(path)), nil
}

// LoadDocument builds the tree of an already parsed document. dir is the
// folder searched first for sub-files.
func (l *Loader) LoadDocument(doc *ldraw.Document, dir string) *model.MainModel {
	start := time.Now()
	palette := l.opts.Palette.Clone()
	for _, f := range doc.Files {
		palette.Merge(f.Colours)
	}
	l.palette = palette
	l.models = make(map[modelKey]*model.Model)
	l.loading = make(map[string]bool)
	l.missing = make(map[string]bool)

	root := doc.Main()
	name := ldraw.NormalizeName(root.Name)
	l.main = model.NewMainModel(name, l.opts.Geometry, l.opts.Settings)
	if c, ok := palette.Lookup(ldraw.MainColour); ok {
		l.main.Color = geometry.Color(c.Value)
		l.main.EdgeColor = geometry.Color(c.Edge)
	}

	l.main.Register(l.main.Model)
	l.models[modelKey{name: name}] = l.main.Model
	l.loading[name] = true
	l.build(l.main.Model, root, scope{doc: doc, dir: dir})
	if l.opts.FlattenModel {
		l.main.Flatten()
	}
	l.main.Finish()

	logger.Since("model loaded", start,
		zap.String("model", root.Name),
		zap.Int("models", l.main.ModelCount()),
		zap.Int("missing", len(l.missing)),
	)
	return l.main
}

// scope is where references inside one file are resolved.
type scope struct {
	doc  *ldraw.Document
	dir  string
	stud bool
}

func (l *Loader) build(m *model.Model, f *ldraw.File, sc scope) {
	for i := range f.Commands {
		cmd := &f.Commands[i]
		switch cmd.Type {
		case ldraw.SubFileLine:
			l.addSubFile(m, cmd, sc)
		case ldraw.LineLine:
			p := [2]math.Vec3{cmd.Points[0], cmd.Points[1]}
			switch cmd.Colour {
			case ldraw.MainColour:
				m.AddLine(p)
			case ldraw.EdgeColour:
				m.AddEdgeLine(p)
			default:
				m.AddColoredLine(l.colour(cmd), p)
			}
		case ldraw.OptionalLine:
			p := [2]math.Vec3{cmd.Points[0], cmd.Points[1]}
			cps := [2]math.Vec3{cmd.Points[2], cmd.Points[3]}
			if cmd.Colour == ldraw.MainColour || cmd.Colour == ldraw.EdgeColour {
				m.AddConditionalLine(p, cps)
			} else {
				m.AddColoredConditionalLine(l.colour(cmd), p, cps)
			}
		case ldraw.TriangleLine, ldraw.QuadLine:
			l.addSurface(m, cmd, sc)
		}
	}
}

func (l *Loader) addSurface(m *model.Model, cmd *ldraw.Command, sc scope) {
	section := model.SurfaceSection(sc.stud, l.opts.Settings.BFC && cmd.BFC)
	p := cmd.Points
	if cmd.CW {
		// Store everything counter-clockwise.
		p = []math.Vec3{p[0]}
		for i := len(cmd.Points) - 1; i > 0; i-- {
			p = append(p, cmd.Points[i])
		}
	}
	inherit := cmd.Colour == ldraw.MainColour
	if cmd.Type == ldraw.TriangleLine {
		tri := [3]math.Vec3{p[0], p[1], p[2]}
		if inherit {
			m.AddTriangle(section, tri)
		} else {
			m.AddColoredTriangle(section, l.colour(cmd), tri)
		}
		return
	}
	quad := [4]math.Vec3{p[0], p[1], p[2], p[3]}
	if inherit {
		m.AddQuad(section, quad)
	} else {
		m.AddColoredQuad(section, l.colour(cmd), quad)
	}
}

func (l *Loader) addSubFile(m *model.Model, cmd *ldraw.Command, sc scope) {
	child := l.resolve(cmd.File, sc)
	if child == nil {
		return
	}
	if cmd.Colour == ldraw.MainColour || cmd.Colour == ldraw.EdgeColour {
		m.AddSubModel(cmd.Matrix, child, cmd.Invert)
		return
	}
	c, ok := l.palette.Lookup(cmd.Colour)
	if !ok {
		logger.Warn("unknown colour, inheriting",
			zap.Int("colour", cmd.Colour), zap.String("file", cmd.File), zap.Int("line", cmd.Line))
		m.AddSubModel(cmd.Matrix, child, cmd.Invert)
		return
	}
	m.AddColoredSubModel(geometry.Color(c.Value), geometry.Color(c.Edge), cmd.Matrix, child, cmd.Invert)
}

// resolve returns the model for a sub-file reference, building it on
// first use. Embedded MPD files win over the library.
func (l *Loader) resolve(ref string, sc scope) *model.Model {
	name := ldraw.NormalizeName(ref)
	if l.loading[name] {
		logger.Warn("recursive reference skipped", zap.String("file", name))
		return nil
	}
	stud := sc.stud || isStud(name)
	key := modelKey{name: name, stud: stud}
	if child, ok := l.models[key]; ok {
		return child
	}
	child := l.load(ref, name, sc, stud)
	if child != nil {
		l.models[key] = child
	}
	return child
}

func (l *Loader) load(ref, name string, sc scope, stud bool) *model.Model {
	if l.opts.Primitives {
		if child := l.primitive(name, stud); child != nil {
			return child
		}
	}

	if f, ok := sc.doc.Lookup(name); ok {
		return l.buildFile(name, f, scope{doc: sc.doc, dir: sc.dir, stud: stud}, f.IsPart())
	}

	if l.lib == nil {
		l.reportMissing(name, assets.ErrFileNotFound)
		return nil
	}
	doc, src, err := l.lib.Load(ref, sc.dir)
	if err != nil {
		l.reportMissing(name, err)
		return nil
	}
	f := doc.Main()
	for _, extra := range doc.Files {
		l.palette.Merge(extra.Colours)
	}
	part := src.Origin == assets.OriginPart || f.IsPart()
	return l.buildFile(name, f, scope{doc: doc, dir: filepath.Dir(src.Path), stud: stud}, part)
}

func (l *Loader) buildFile(name string, f *ldraw.File, sc scope, part bool) *model.Model {
	child := l.main.NewModel(name)
	child.SetPart(part)
	child.SetStud(sc.stud)
	l.main.Register(child)

	l.loading[name] = true
	l.build(child, f, sc)
	delete(l.loading, name)

	if part && l.opts.Settings.FlattenParts {
		child.Flatten()
	}
	return child
}

func (l *Loader) reportMissing(name string, err error) {
	if l.missing[name] {
		return
	}
	l.missing[name] = true
	logger.Warn("sub-file not loaded", zap.String("file", name), zap.Error(err))
}

func (l *Loader) colour(cmd *ldraw.Command) geometry.Color {
	if cmd.Colour == ldraw.EdgeColour {
		return l.main.EdgeColor
	}
	c, ok := l.palette.Lookup(cmd.Colour)
	if !ok {
		logger.Warn("unknown colour, using main colour", zap.Int("colour", cmd.Colour), zap.Int("line", cmd.Line))
		return l.main.Color
	}
	return geometry.Color(c.Value)
}

// isStud reports whether a reference names stud geometry: stud.dat,
// stud2.dat, stud4a.dat and the like.
func isStud(name string) bool {
	base := strings.TrimPrefix(name, "48/")
	if !strings.HasPrefix(base, "stud") || !strings.HasSuffix(base, ".dat") {
		return false
	}
	return !strings.Contains(base, "/")
}
