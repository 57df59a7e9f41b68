package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/brickview/internal/assets"
	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/model"
	"github.com/Faultbox/brickview/pkg/ldraw"
	"github.com/Faultbox/brickview/pkg/math"
)

const identity = "1 0 0 0 1 0 0 0 1"

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func parse(t *testing.T, lines ...string) *ldraw.Document {
	t.Helper()
	doc, err := ldraw.Parse(strings.NewReader(strings.Join(lines, "\n")), "main.ldr")
	require.NoError(t, err)
	return doc
}

func positions(g *geometry.ShapeGroup, k geometry.Kind) []math.Vec3 {
	var out []math.Vec3
	for _, i := range g.Indices(k) {
		out = append(out, g.Store().Position(int(i)))
	}
	return out
}

func v3(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

func TestLoadEmbeddedFiles(t *testing.T) {
	doc := parse(t,
		"0 FILE main.ldr",
		"1 4 0 0 0 "+identity+" Sub.ldr",
		"1 16 10 0 0 "+identity+" sub.ldr",
		"0 FILE sub.ldr",
		"3 16 0 0 0 1 0 0 0 0 1",
		"2 24 0 0 0 1 0 0",
		"2 16 0 0 0 0 1 0",
		"5 24 0 0 0 0 1 0 1 0 0 -1 0 0",
	)
	l := New(nil, DefaultOptions())
	main := l.LoadDocument(doc, "")

	require.Len(t, main.SubModels(), 2)
	first, second := main.SubModels()[0], main.SubModels()[1]
	assert.Same(t, first.Model, second.Model, "one model per file")

	c, ok := first.Color()
	assert.True(t, ok)
	assert.Equal(t, geometry.RGBA(0xb4, 0x00, 0x00, 0xff), c)
	_, ok = second.Color()
	assert.False(t, ok)

	sub := first.Model
	assert.Equal(t, "sub.ldr", sub.Name())
	assert.Equal(t, 1, sub.Shapes(model.Standard).ShapeCount(geometry.Triangle))
	assert.Equal(t, 1, sub.Shapes(model.EdgeLines).ShapeCount(geometry.Line))
	assert.Equal(t, 1, sub.Shapes(model.Lines).ShapeCount(geometry.Line))
	assert.Equal(t, 1, sub.Shapes(model.ConditionalLines).ShapeCount(geometry.ConditionalLine))
	assert.Empty(t, l.Missing())
	assert.Equal(t, 2, main.ModelCount())
}

func TestLoadFlattenModel(t *testing.T) {
	doc := parse(t,
		"0 FILE main.ldr",
		"1 4 0 0 0 "+identity+" sub.ldr",
		"1 16 10 0 0 "+identity+" sub.ldr",
		"0 FILE sub.ldr",
		"3 16 0 0 0 1 0 0 0 0 1",
	)
	opts := DefaultOptions()
	opts.FlattenModel = true
	main := New(nil, opts).LoadDocument(doc, "")

	assert.True(t, main.IsFlattened())
	assert.Empty(t, main.SubModels())
	require.NotNil(t, main.Shapes(model.Standard))
	require.NotNil(t, main.ColoredShapes(model.Standard))
	assert.Equal(t, []math.Vec3{v3(10, 0, 0), v3(11, 0, 0), v3(10, 0, 1)},
		positions(main.Shapes(model.Standard), geometry.Triangle))
	assert.Equal(t, 1, main.ColoredShapes(model.Standard).ShapeCount(geometry.Triangle))
}

func TestLoadExplicitColours(t *testing.T) {
	doc := parse(t,
		"3 4 0 0 0 1 0 0 0 0 1",
		"3 0x2FF8000 0 0 0 1 0 0 0 0 1",
		"2 1 0 0 0 1 0 0",
	)
	main := New(nil, DefaultOptions()).LoadDocument(doc, "")

	g := main.ColoredShapes(model.Standard)
	require.NotNil(t, g)
	colors := g.Store().Colors()
	idx := g.Indices(geometry.Triangle)
	require.Len(t, idx, 6)
	assert.Equal(t, geometry.RGBA(0xb4, 0x00, 0x00, 0xff), colors[idx[0]])
	assert.Equal(t, geometry.RGBA(0xff, 0x80, 0x00, 0xff), colors[idx[3]])

	lines := main.ColoredShapes(model.Lines)
	require.NotNil(t, lines)
	assert.Equal(t, geometry.RGBA(0x1e, 0x5a, 0xa8, 0xff), lines.Store().Colors()[lines.Indices(geometry.Line)[0]])
}

func TestLoadTransparentColour(t *testing.T) {
	doc := parse(t,
		"3 36 0 0 0 1 0 0 0 0 1",
		"3 4 0 0 0 1 0 0 0 0 1",
	)
	main := New(nil, DefaultOptions()).LoadDocument(doc, "")

	assert.Equal(t, 1, main.Transparent().Len())
	assert.Equal(t, 1, main.ColoredShapes(model.Standard).ShapeCount(geometry.Triangle))
}

func TestLoadWinding(t *testing.T) {
	lines := []string{
		"0 BFC CERTIFY CW",
		"3 16 0 0 0 1 0 0 0 0 1",
		"0 BFC NOCLIP",
		"3 16 0 0 0 1 0 0 0 0 1",
	}

	t.Run("bfc", func(t *testing.T) {
		main := New(nil, DefaultOptions()).LoadDocument(parse(t, lines...), "")
		assert.Equal(t, []math.Vec3{v3(0, 0, 0), v3(0, 0, 1), v3(1, 0, 0)},
			positions(main.Shapes(model.BFC), geometry.Triangle))
		assert.Equal(t, 1, main.Shapes(model.Standard).ShapeCount(geometry.Triangle))
	})

	t.Run("bfc disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Settings.BFC = false
		main := New(nil, opts).LoadDocument(parse(t, lines...), "")
		assert.Nil(t, main.Shapes(model.BFC))
		assert.Equal(t, 2, main.Shapes(model.Standard).ShapeCount(geometry.Triangle))
	})
}

func TestLoadRecursiveReference(t *testing.T) {
	doc := parse(t,
		"0 FILE a.ldr",
		"1 16 0 0 0 "+identity+" b.ldr",
		"0 FILE b.ldr",
		"1 16 0 0 0 "+identity+" a.ldr",
		"1 16 0 0 0 "+identity+" b.ldr",
	)
	main := New(nil, DefaultOptions()).LoadDocument(doc, "")

	require.Len(t, main.SubModels(), 1)
	assert.Empty(t, main.SubModels()[0].Model.SubModels())
}

func newLibrary(t *testing.T) (*assets.Library, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "parts", "3001.dat"),
		"0 Brick 2 x 4",
		"0 !LDRAW_ORG Part UPDATE 2004-03",
		"1 16 0 0 0 "+identity+" s/3001s01.dat",
		"1 16 0 -4 0 "+identity+" stud.dat",
	)
	writeFile(t, filepath.Join(root, "parts", "s", "3001s01.dat"),
		"0 !LDRAW_ORG Subpart",
		"4 16 0 0 0 1 0 0 1 0 1 0 0 1",
	)
	writeFile(t, filepath.Join(root, "p", "stud.dat"),
		"3 16 0 0 0 1 0 0 0 0 1",
	)
	lib, err := assets.NewLibrary(root)
	require.NoError(t, err)
	return lib, root
}

func TestLoadFileFromLibrary(t *testing.T) {
	lib, _ := newLibrary(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "house.ldr")
	writeFile(t, path,
		"1 14 0 0 0 "+identity+" 3001.dat",
		"1 16 0 24 0 "+identity+" 3001.DAT",
		"1 16 0 0 0 "+identity+" missing.dat",
	)

	l := New(lib, DefaultOptions())
	main, err := l.LoadFile(path)
	require.NoError(t, err)

	require.Len(t, main.SubModels(), 2)
	brick := main.SubModels()[0].Model
	assert.Same(t, brick, main.SubModels()[1].Model)
	assert.True(t, brick.IsPart())
	assert.True(t, brick.IsFlattened())
	assert.Empty(t, brick.SubModels())
	assert.Equal(t, 1, brick.Shapes(model.Standard).ShapeCount(geometry.Quad))
	assert.Equal(t, 1, brick.Shapes(model.Stud).ShapeCount(geometry.Triangle))
	assert.Equal(t, []string{"missing.dat"}, l.Missing())

	stud, ok := main.Lookup("stud.dat")
	require.True(t, ok)
	assert.True(t, stud.IsStud())
	assert.False(t, stud.IsPart())
}

func TestLoadPartsUnflattened(t *testing.T) {
	lib, _ := newLibrary(t)
	opts := DefaultOptions()
	opts.Settings.FlattenParts = false
	doc := parse(t, "1 16 0 0 0 "+identity+" 3001.dat")

	main := New(lib, opts).LoadDocument(doc, "")
	brick := main.SubModels()[0].Model
	assert.True(t, brick.IsPart())
	assert.False(t, brick.IsFlattened())
	assert.Len(t, brick.SubModels(), 2)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := New(nil, DefaultOptions()).LoadFile(filepath.Join(t.TempDir(), "none.ldr"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsStud(t *testing.T) {
	for name, want := range map[string]bool{
		"stud.dat":     true,
		"stud2a.dat":   true,
		"48/stud.dat":  true,
		"studs.ldr":    false,
		"s/stud.dat":   false,
		"3001.dat":     false,
		"stud/foo.dat": false,
	} {
		assert.Equal(t, want, isStud(name), name)
	}
}

func TestLoadKeepsPaletteUnchanged(t *testing.T) {
	opts := DefaultOptions()
	opts.Palette = ldraw.DefaultPalette()
	l := New(nil, opts)

	custom := l.LoadDocument(parse(t,
		"0 !COLOUR Custom CODE 500 VALUE #123456 EDGE #000000",
		"3 500 0 0 0 1 0 0 0 0 1",
	), "")
	g := custom.ColoredShapes(model.Standard)
	require.NotNil(t, g)
	assert.Equal(t, geometry.RGBA(0x12, 0x34, 0x56, 0xff), g.Store().Colors()[g.Indices(geometry.Triangle)[0]])

	_, ok := opts.Palette.Lookup(500)
	assert.False(t, ok, "caller's palette gained a colour")

	plain := l.LoadDocument(parse(t, "3 500 0 0 0 1 0 0 0 0 1"), "")
	_, ok = l.palette.Lookup(500)
	assert.False(t, ok, "colour leaked into a later load")
	g = plain.ColoredShapes(model.Standard)
	require.NotNil(t, g)
	assert.Equal(t, plain.Color, g.Store().Colors()[g.Indices(geometry.Triangle)[0]])
}

func TestLoadMissingSorted(t *testing.T) {
	l := New(nil, DefaultOptions())
	l.LoadDocument(parse(t,
		"1 16 0 0 0 "+identity+" zeta.dat",
		"1 16 0 0 0 "+identity+" alpha.dat",
		"1 16 0 0 0 "+identity+" mid.dat",
		"1 16 0 0 0 "+identity+" alpha.dat",
	), "")

	assert.Equal(t, []string{"alpha.dat", "mid.dat", "zeta.dat"}, l.Missing())
}

func TestLoadSharedFileInsideStud(t *testing.T) {
	doc := parse(t,
		"0 FILE main.ldr",
		"1 16 0 0 0 "+identity+" shared.dat",
		"1 16 0 0 0 "+identity+" stud.dat",
		"0 FILE shared.dat",
		"3 16 0 0 0 1 0 0 0 0 1",
		"0 FILE stud.dat",
		"1 16 0 0 0 "+identity+" shared.dat",
	)
	opts := DefaultOptions()
	opts.Settings.FlattenParts = false
	main := New(nil, opts).LoadDocument(doc, "")

	require.Len(t, main.SubModels(), 2)
	plain := main.SubModels()[0].Model
	stud := main.SubModels()[1].Model
	require.Len(t, stud.SubModels(), 1)
	inStud := stud.SubModels()[0].Model

	assert.NotSame(t, plain, inStud)
	assert.False(t, plain.IsStud())
	assert.Equal(t, 1, plain.Shapes(model.Standard).ShapeCount(geometry.Triangle))
	assert.Nil(t, plain.Shapes(model.Stud))
	assert.True(t, inStud.IsStud())
	assert.Equal(t, 1, inStud.Shapes(model.Stud).ShapeCount(geometry.Triangle))
}
