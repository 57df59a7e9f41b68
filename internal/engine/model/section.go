// Package model holds the LDraw model tree: per-section shape groups,
// placed sub-models, mirrored and inverted variants, and the main model
// that owns the shared vertex stores and the transparent collector.
package model

// Section partitions the geometry of a model by how it is drawn.
type Section int

const (
	Standard Section = iota
	Lines
	EdgeLines
	ConditionalLines
	Stud
	BFC
	StudBFC
	Transparent

	sectionCount
)

// Sections lists every section in draw order.
var Sections = [sectionCount]Section{
	Standard, Lines, EdgeLines, ConditionalLines, Stud, BFC, StudBFC, Transparent,
}

var sectionNames = [sectionCount]string{
	"standard", "lines", "edge-lines", "conditional-lines", "stud", "bfc", "stud-bfc", "transparent",
}

func (s Section) String() string {
	if s < 0 || s >= sectionCount {
		return "unknown"
	}
	return sectionNames[s]
}

// IsLine reports whether the section holds line geometry.
func (s Section) IsLine() bool {
	return s == Lines || s == EdgeLines || s == ConditionalLines
}

// IsStud reports whether the section is backed by the stud vertex stores.
func (s Section) IsStud() bool {
	return s == Stud || s == StudBFC
}

// IsBFC reports whether winding order of the section is significant.
func (s Section) IsBFC() bool {
	return s == BFC || s == StudBFC
}

// SurfaceSection picks the section for surface geometry.
func SurfaceSection(stud, bfc bool) Section {
	switch {
	case stud && bfc:
		return StudBFC
	case stud:
		return Stud
	case bfc:
		return BFC
	default:
		return Standard
	}
}
