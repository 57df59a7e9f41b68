// Package snapshot captures the geometry of a loaded model as a compact
// CBOR document and a stable digest, for regression checks and tooling.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"

	"github.com/Faultbox/brickview/internal/engine/geometry"
	"github.com/Faultbox/brickview/internal/engine/model"
)

// Version is written into every snapshot.
const Version = 1

// Snapshot is the serialized form of a main model.
type Snapshot struct {
	Version     int
	Model       string
	Stores      []Store
	Groups      []Group
	Transparent int
	Digest      uint64
}

// Store holds one vertex store, flattened to scalar arrays.
type Store struct {
	Name      string
	Channels  uint8
	Positions []float32
	Normals   []float32
	Colors    []uint32 `cbor:",omitempty"`
}

// Group holds the indices of one shape group of one model.
type Group struct {
	Model   string
	Section string
	Colored bool
	Buckets []Bucket
}

// Bucket holds the indices of one shape kind.
type Bucket struct {
	_       struct{} `cbor:",toarray"`
	Kind    uint16
	Indices []uint32
	Counts  []int
}

var storeNames = [...]string{"plain", "colored", "stud", "colored-stud"}

// Take captures main. Models are visited depth first from the root, each
// once, so the result is stable for the same input.
func Take(main *model.MainModel) *Snapshot {
	s := &Snapshot{Version: Version, Model: main.Name()}
	for i, st := range main.Stores() {
		s.Stores = append(s.Stores, takeStore(storeNames[i], st))
	}

	seen := make(map[*model.Model]bool)
	var walk func(m *model.Model)
	walk = func(m *model.Model) {
		if seen[m] {
			return
		}
		seen[m] = true
		for _, sec := range model.Sections {
			if g := m.Shapes(sec); g != nil {
				s.Groups = append(s.Groups, takeGroup(m.Name(), sec, false, g))
			}
			if g := m.ColoredShapes(sec); g != nil {
				s.Groups = append(s.Groups, takeGroup(m.Name(), sec, true, g.ShapeGroup))
			}
		}
		for _, sub := range m.SubModels() {
			walk(sub.Model)
		}
	}
	walk(main.Model)

	s.Transparent = main.Transparent().Len()
	s.Digest = s.digest()
	return s
}

func takeStore(name string, st *geometry.VertexStore) Store {
	out := Store{
		Name:      name,
		Channels:  uint8(st.Channels()),
		Positions: make([]float32, 0, 3*st.Len()),
		Normals:   make([]float32, 0, 3*st.Len()),
	}
	for _, p := range st.Positions() {
		out.Positions = append(out.Positions, p.X, p.Y, p.Z)
	}
	for _, n := range st.Normals() {
		out.Normals = append(out.Normals, n.X, n.Y, n.Z)
	}
	if st.Has(geometry.ChannelColors) {
		for _, c := range st.Colors() {
			out.Colors = append(out.Colors, uint32(c))
		}
	}
	return out
}

func takeGroup(name string, sec model.Section, colored bool, g *geometry.ShapeGroup) Group {
	out := Group{Model: name, Section: sec.String(), Colored: colored}
	for _, k := range geometry.Kinds {
		idx := g.Indices(k)
		if len(idx) == 0 {
			continue
		}
		out.Buckets = append(out.Buckets, Bucket{Kind: uint16(k), Indices: idx, Counts: g.StripCounts(k)})
	}
	return out
}

// digest hashes every position, color and index in order. Normals are left
// out so that normal-only changes keep the digest.
func (s *Snapshot) digest() uint64 {
	h := xxhash.New()
	var buf [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	for _, st := range s.Stores {
		h.WriteString(st.Name)
		for _, f := range st.Positions {
			put(gomath.Float32bits(f))
		}
		for _, c := range st.Colors {
			put(c)
		}
	}
	for _, g := range s.Groups {
		h.WriteString(g.Model)
		h.WriteString(g.Section)
		for _, b := range g.Buckets {
			put(uint32(b.Kind))
			for _, i := range b.Indices {
				put(i)
			}
			for _, n := range b.Counts {
				put(uint32(n))
			}
		}
	}
	put(uint32(s.Transparent))
	return h.Sum64()
}

// Verify recomputes the digest and reports a mismatch.
func (s *Snapshot) Verify() error {
	if got := s.digest(); got != s.Digest {
		return fmt.Errorf("snapshot %s: digest %016x, recorded %016x", s.Model, got, s.Digest)
	}
	return nil
}

// Write encodes s as CBOR.
func (s *Snapshot) Write(w io.Writer) error {
	return cbor.NewEncoder(w).Encode(s)
}

// Read decodes a CBOR snapshot and verifies its digest.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot version %d, want %d", s.Version, Version)
	}
	return &s, s.Verify()
}

// Diff lists the groups whose indices differ between a and b, keyed by
// "model/section". Both snapshots must come from the same model.
func Diff(a, b *Snapshot) []string {
	key := func(g Group) string {
		k := g.Model + "/" + g.Section
		if g.Colored {
			k += "+colored"
		}
		return k
	}
	index := make(map[string]Group, len(b.Groups))
	for _, g := range b.Groups {
		index[key(g)] = g
	}
	var out []string
	for _, g := range a.Groups {
		k := key(g)
		other, ok := index[k]
		delete(index, k)
		if !ok || !sameBuckets(g.Buckets, other.Buckets) {
			out = append(out, k)
		}
	}
	for k := range index {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sameBuckets(a, b []Bucket) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || len(a[i].Indices) != len(b[i].Indices) || len(a[i].Counts) != len(b[i].Counts) {
			return false
		}
		for j := range a[i].Indices {
			if a[i].Indices[j] != b[i].Indices[j] {
				return false
			}
		}
		for j := range a[i].Counts {
			if a[i].Counts[j] != b[i].Counts[j] {
				return false
			}
		}
	}
	return true
}
