// Package ldraw parses LDraw model files (.ldr, .dat and multi-part .mpd)
// into line commands, with BFC state resolved per command.
package ldraw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/brickview/pkg/math"
)

// Parse errors.
var (
	ErrTruncatedLine   = errors.New("truncated line")
	ErrInvalidNumber   = errors.New("invalid number")
	ErrUnknownLineType = errors.New("unknown line type")
	ErrEmptyDocument   = errors.New("document has no files")
)

// LineType is the leading number of an LDraw line.
type LineType int

// Line types.
const (
	MetaLine     LineType = 0
	SubFileLine  LineType = 1
	LineLine     LineType = 2
	TriangleLine LineType = 3
	QuadLine     LineType = 4
	OptionalLine LineType = 5

	maxLineType = OptionalLine
)

// Special colour codes.
const (
	MainColour = 16
	EdgeColour = 24
)

// Command is one parsed, non-empty line.
type Command struct {
	// Line is the 1-based line number in the source.
	Line int
	Type LineType

	// Meta is the text after the leading "0" for meta lines.
	Meta string

	Colour int
	// Points holds 2 points for lines, 3 for triangles, 4 for quads and 4
	// for optional lines: the two ends followed by the two control points.
	Points []math.Vec3

	// Matrix and File are set for sub-file references.
	Matrix math.Mat4
	File   string
	// Invert is set on a sub-file reference preceded by BFC INVERTNEXT.
	Invert bool

	// BFC is set on triangles and quads when the file is certified and
	// clipping is on; CW gives their winding.
	BFC bool
	CW  bool
}

// File is one model file. A plain .ldr or .dat is a single File; an MPD
// holds one File per "0 FILE" section.
type File struct {
	Name      string
	Title     string
	Kind      string // from !LDRAW_ORG, e.g. "Part", "Primitive", "Subpart"
	Certified bool
	Commands  []Command
	Colours   []Colour
}

// IsPart reports whether the file declares itself a part or shortcut.
func (f *File) IsPart() bool {
	k := strings.ToLower(f.Kind)
	return strings.Contains(k, "part") && !strings.Contains(k, "subpart") || strings.Contains(k, "shortcut")
}

// Count returns the number of commands of the given type.
func (f *File) Count(t LineType) int {
	n := 0
	for i := range f.Commands {
		if f.Commands[i].Type == t {
			n++
		}
	}
	return n
}

// Document is the result of parsing one source. Files[0] is the main file.
type Document struct {
	Files []*File
}

// Main returns the first file.
func (d *Document) Main() *File {
	return d.Files[0]
}

// Lookup finds an embedded file by normalized name.
func (d *Document) Lookup(name string) (*File, bool) {
	name = NormalizeName(name)
	for _, f := range d.Files {
		if NormalizeName(f.Name) == name {
			return f, true
		}
	}
	return nil, false
}

// NormalizeName lower-cases a file reference and uses forward slashes, the
// form used for lookups.
func NormalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
}

// ParseFile parses the file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, filepath.Base(path))
}

// Parse reads an LDraw source. name is used for the main file when the
// source does not start with "0 FILE".
func Parse(r io.Reader, name string) (*Document, error) {
	p := &parser{doc: &Document{}, name: name}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(p.doc.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyDocument)
	}
	return p.doc, nil
}

type parser struct {
	doc  *Document
	name string
	line int

	file   *File
	closed bool
	bfc    bfcState
}

type bfcState struct {
	certified  bool
	clip       bool
	cw         bool
	invertNext bool
}

// current returns the file receiving commands, opening the implicit main
// file on first use. It returns nil after NOFILE.
func (p *parser) current() *File {
	if p.file == nil && !p.closed {
		p.open(p.name)
	}
	return p.file
}

func (p *parser) open(name string) {
	p.file = &File{Name: name}
	p.doc.Files = append(p.doc.Files, p.file)
	p.closed = false
	p.bfc = bfcState{}
}

func (p *parser) parseLine(text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	t, err := strconv.Atoi(fields[0])
	if err != nil || t < 0 || t > int(maxLineType) {
		return fmt.Errorf("%w: %q", ErrUnknownLineType, fields[0])
	}
	if LineType(t) == MetaLine {
		return p.parseMeta(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "0")), fields[1:])
	}

	f := p.current()
	if f == nil {
		// Text after NOFILE belongs to no file.
		return nil
	}
	cmd := Command{Line: p.line, Type: LineType(t)}
	if len(fields) < 2 {
		return ErrTruncatedLine
	}
	if cmd.Colour, err = parseColourCode(fields[1]); err != nil {
		return err
	}

	switch cmd.Type {
	case SubFileLine:
		if len(fields) < 15 {
			return ErrTruncatedLine
		}
		v, err := parseFloats(fields[2:14])
		if err != nil {
			return err
		}
		cmd.Matrix = math.FromLDraw(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], v[8], v[9], v[10], v[11])
		cmd.File = strings.Join(fields[14:], " ")
		cmd.Invert = p.bfc.invertNext
	case LineLine, TriangleLine, QuadLine, OptionalLine:
		n := int(cmd.Type)
		if cmd.Type == OptionalLine {
			n = 4
		}
		if len(fields) < 2+3*n {
			return ErrTruncatedLine
		}
		v, err := parseFloats(fields[2 : 2+3*n])
		if err != nil {
			return err
		}
		cmd.Points = make([]math.Vec3, n)
		for i := range cmd.Points {
			cmd.Points[i] = math.Vec3{X: v[3*i], Y: v[3*i+1], Z: v[3*i+2]}
		}
		if cmd.Type == TriangleLine || cmd.Type == QuadLine {
			cmd.BFC = p.bfc.certified && p.bfc.clip
			cmd.CW = p.bfc.cw
		}
	}
	p.bfc.invertNext = false
	f.Commands = append(f.Commands, cmd)
	return nil
}

func (p *parser) parseMeta(text string, args []string) error {
	if len(args) > 0 {
		switch strings.ToUpper(args[0]) {
		case "FILE":
			p.open(strings.TrimSpace(text[len(args[0]):]))
			return nil
		case "NOFILE":
			p.file, p.closed = nil, true
			return nil
		}
	}
	f := p.current()
	if f == nil {
		return nil
	}
	f.Commands = append(f.Commands, Command{Line: p.line, Type: MetaLine, Meta: text})
	if len(args) == 0 {
		return nil
	}

	switch strings.ToUpper(args[0]) {
	case "BFC":
		p.parseBFC(f, args[1:])
	case "!LDRAW_ORG":
		if len(args) > 1 {
			f.Kind = args[1]
		}
	case "!COLOUR":
		c, err := ParseColour(args[1:])
		if err != nil {
			return err
		}
		f.Colours = append(f.Colours, c)
	default:
		if f.Title == "" && len(f.Commands) == 1 {
			f.Title = text
		}
	}
	return nil
}

func (p *parser) parseBFC(f *File, args []string) {
	for _, a := range args {
		switch strings.ToUpper(a) {
		case "CERTIFY":
			p.bfc.certified, p.bfc.clip = true, true
			f.Certified = true
		case "NOCERTIFY":
			p.bfc.certified, p.bfc.clip = false, false
			f.Certified = false
		case "CLIP":
			p.bfc.clip = true
		case "NOCLIP":
			p.bfc.clip = false
		case "CW":
			p.bfc.cw = true
		case "CCW":
			p.bfc.cw = false
		case "INVERTNEXT":
			p.bfc.invertNext = true
		}
	}
}

func parseFloats(fields []string) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseColourCode accepts decimal codes and the 0x2RRGGBB direct colours.
func parseColourCode(s string) (int, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: colour %q", ErrInvalidNumber, s)
	}
	return int(v), nil
}
