package ldraw

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidColour is returned for a malformed !COLOUR definition.
var ErrInvalidColour = errors.New("invalid colour definition")

// RGBA is a colour packed as 0xRRGGBBAA.
type RGBA uint32

// NewRGBA packs four components.
func NewRGBA(r, g, b, a uint8) RGBA {
	return RGBA(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// Alpha returns the alpha component.
func (c RGBA) Alpha() uint8 { return uint8(c) }

func (c RGBA) String() string { return fmt.Sprintf("#%08X", uint32(c)) }

// Colour is one palette entry.
type Colour struct {
	Code  int
	Name  string
	Value RGBA
	Edge  RGBA
	// EdgeCode is set instead of Edge when EDGE names another colour.
	EdgeCode int
	edgeRef  bool
}

// IsTransparent reports whether the colour has an alpha below opaque.
func (c Colour) IsTransparent() bool { return c.Value.Alpha() < 0xff }

// ParseColour parses the arguments of a "0 !COLOUR" meta line:
// name CODE n VALUE #RRGGBB EDGE #RRGGBB|code [ALPHA a] [finish keywords].
func ParseColour(args []string) (Colour, error) {
	if len(args) == 0 {
		return Colour{}, fmt.Errorf("%w: missing name", ErrInvalidColour)
	}
	c := Colour{Name: args[0], Code: -1}
	alpha := uint8(0xff)
	var value uint32
	haveValue := false

	for i := 1; i < len(args); i++ {
		key := strings.ToUpper(args[i])
		if key != "CODE" && key != "VALUE" && key != "EDGE" && key != "ALPHA" && key != "LUMINANCE" {
			// Finish keywords (CHROME, RUBBER, MATERIAL ...) are not used.
			continue
		}
		if i+1 >= len(args) {
			return Colour{}, fmt.Errorf("%w: %s has no value", ErrInvalidColour, key)
		}
		i++
		arg := args[i]
		switch key {
		case "CODE":
			code, err := strconv.Atoi(arg)
			if err != nil {
				return Colour{}, fmt.Errorf("%w: code %q", ErrInvalidColour, arg)
			}
			c.Code = code
		case "VALUE":
			v, err := parseHex(arg)
			if err != nil {
				return Colour{}, err
			}
			value, haveValue = v, true
		case "EDGE":
			if strings.HasPrefix(arg, "#") || strings.HasPrefix(strings.ToLower(arg), "0x") {
				v, err := parseHex(arg)
				if err != nil {
					return Colour{}, err
				}
				c.Edge = RGBA(v<<8 | 0xff)
				continue
			}
			code, err := strconv.Atoi(arg)
			if err != nil {
				return Colour{}, fmt.Errorf("%w: edge %q", ErrInvalidColour, arg)
			}
			c.EdgeCode, c.edgeRef = code, true
		case "ALPHA":
			a, err := strconv.ParseUint(arg, 10, 8)
			if err != nil {
				return Colour{}, fmt.Errorf("%w: alpha %q", ErrInvalidColour, arg)
			}
			alpha = uint8(a)
		}
	}
	if c.Code < 0 || !haveValue {
		return Colour{}, fmt.Errorf("%w: %s needs CODE and VALUE", ErrInvalidColour, c.Name)
	}
	c.Value = RGBA(value<<8 | uint32(alpha))
	return c, nil
}

func parseHex(s string) (uint32, error) {
	t := strings.TrimPrefix(s, "#")
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil || len(t) != 6 {
		return 0, fmt.Errorf("%w: %q is not #RRGGBB", ErrInvalidColour, s)
	}
	return uint32(v), nil
}

// Palette maps colour codes to colours.
type Palette struct {
	colours map[int]Colour
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{colours: make(map[int]Colour)}
}

// DefaultPalette returns the built-in subset of the standard LDraw
// colours, used when no LDConfig.ldr is available.
func DefaultPalette() *Palette {
	p := NewPalette()
	edge := NewRGBA(0x33, 0x33, 0x33, 0xff)
	for _, d := range defaultColours {
		c := Colour{Code: d.code, Name: d.name, Value: RGBA(d.rgb<<8 | uint32(d.alpha)), Edge: edge}
		if d.code == 0 {
			c.Edge = NewRGBA(0x80, 0x80, 0x80, 0xff)
		}
		p.Define(c)
	}
	return p
}

// Clone returns a copy that can be extended without changing p.
func (p *Palette) Clone() *Palette {
	c := &Palette{colours: make(map[int]Colour, len(p.colours))}
	for code, colour := range p.colours {
		c.colours[code] = colour
	}
	return c
}

// Define adds or replaces a colour. An EDGE given as a code is resolved
// against the colours already defined.
func (p *Palette) Define(c Colour) {
	if c.edgeRef {
		if ref, ok := p.colours[c.EdgeCode]; ok {
			c.Edge = ref.Value | 0xff
		}
	}
	p.colours[c.Code] = c
}

// Merge defines every colour of a file, in order.
func (p *Palette) Merge(colours []Colour) {
	for _, c := range colours {
		p.Define(c)
	}
}

// Len returns the number of defined colours.
func (p *Palette) Len() int { return len(p.colours) }

// Codes returns the defined codes in ascending order.
func (p *Palette) Codes() []int {
	codes := make([]int, 0, len(p.colours))
	for code := range p.colours {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Lookup returns the colour for code. Direct colours 0x2RRGGBB are opaque
// and 0x3RRGGBB half transparent.
func (p *Palette) Lookup(code int) (Colour, bool) {
	if c, ok := p.colours[code]; ok {
		return c, true
	}
	switch code >> 24 {
	case 2, 3:
		alpha := uint8(0xff)
		if code>>24 == 3 {
			alpha = 0x80
		}
		rgb := uint32(code) & 0xffffff
		return Colour{
			Code:  code,
			Name:  fmt.Sprintf("0x%07X", code),
			Value: RGBA(rgb<<8 | uint32(alpha)),
			Edge:  NewRGBA(0x33, 0x33, 0x33, 0xff),
		}, true
	}
	return Colour{}, false
}

// LoadPalette parses an LDConfig.ldr file on top of the default palette.
func LoadPalette(path string) (*Palette, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultPalette()
	for _, f := range doc.Files {
		p.Merge(f.Colours)
	}
	return p, nil
}

var defaultColours = []struct {
	code  int
	name  string
	rgb   uint32
	alpha uint8
}{
	{0, "Black", 0x1B2A34, 0xff},
	{1, "Blue", 0x1E5AA8, 0xff},
	{2, "Green", 0x00852B, 0xff},
	{3, "Dark_Turquoise", 0x069D9F, 0xff},
	{4, "Red", 0xB40000, 0xff},
	{5, "Dark_Pink", 0xD3359D, 0xff},
	{6, "Brown", 0x543324, 0xff},
	{7, "Light_Grey", 0x8A928D, 0xff},
	{8, "Dark_Grey", 0x545955, 0xff},
	{9, "Light_Blue", 0x97CBD9, 0xff},
	{10, "Bright_Green", 0x58AB41, 0xff},
	{11, "Light_Turquoise", 0x00AAA4, 0xff},
	{12, "Salmon", 0xF06D61, 0xff},
	{13, "Pink", 0xF6A9BB, 0xff},
	{14, "Yellow", 0xFAC80A, 0xff},
	{15, "White", 0xF4F4F4, 0xff},
	{16, "Main_Colour", 0x7F7F7F, 0xff},
	{19, "Tan", 0xE4CD9E, 0xff},
	{24, "Edge_Colour", 0x7F7F7F, 0xff},
	{25, "Orange", 0xD67923, 0xff},
	{28, "Dark_Tan", 0x958A73, 0xff},
	{33, "Trans_Dark_Blue", 0x0020A0, 0x80},
	{34, "Trans_Green", 0x237841, 0x80},
	{36, "Trans_Red", 0xC91A09, 0x80},
	{40, "Trans_Black", 0x635F52, 0x80},
	{41, "Trans_Light_Blue", 0xAEEFEC, 0x80},
	{46, "Trans_Yellow", 0xF5CD2F, 0x80},
	{47, "Trans_Clear", 0xFCFCFC, 0x80},
	{70, "Reddish_Brown", 0x5F3109, 0xff},
	{71, "Light_Bluish_Grey", 0xA0A5A9, 0xff},
	{72, "Dark_Bluish_Grey", 0x6C6E68, 0xff},
	{320, "Dark_Red", 0x720E0F, 0xff},
}
