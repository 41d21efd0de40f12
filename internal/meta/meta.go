// Package meta holds the per-tile metadata model decoded from meta-tile
// blobs: MetaNode, the dense MetaTile grid that packs them, and the decode
// interface an external decoder implements.
package meta

import (
	"github.com/melowntech/vtscore/internal/tileid"
)

// ChildFlag bits, one per child quadrant (index order matches
// tileid.ID.ChildIndex).
type ChildFlag uint8

const (
	Child00 ChildFlag = 1 << 0
	Child10 ChildFlag = 1 << 1
	Child01 ChildFlag = 1 << 2
	Child11 ChildFlag = 1 << 3
	AllChildren ChildFlag = Child00 | Child10 | Child01 | Child11
)

// Has reports whether the flag for the given child index (0-3) is set.
func (f ChildFlag) Has(index int) bool {
	return f&(1<<uint(index)) != 0
}

// Box is an axis-aligned box in some local SRS, used for geometric-extents.
type Box struct {
	Min, Max [3]float64
}

// Valid reports whether the box carries real bounds (a fresh zero Box is
// considered invalid — spec §4.2 step 4: "compute 8 physical corners either
// from geomExtents (if valid) or ...").
func (b Box) Valid() bool {
	return b.Min != b.Max
}

// Node is a single tile's decoded metadata (spec §3 MetaNode).
type Node struct {
	Geometry bool // is there renderable geometry at this tile?
	Alien    bool // does this node belong to a different parent in the stack?

	ChildFlags ChildFlag

	GeomExtents     Box
	SurrogateHeight float64
	HasSurrogate    bool

	TexelSize          float64
	ApplyTexelSize      bool
	DisplaySize         float64
	ApplyDisplaySize     bool

	// SourceReference indexes into the surface stack for virtual surfaces.
	// Per spec §9 open question, 0 is reserved/invalid: a virtual surface
	// must carry SourceReference > 0.
	SourceReference int

	CreditIDs []int
}

// IsVirtual reports whether this node designates a virtual surface (i.e.
// rendering should be redirected through SourceReference instead of the
// surface that owns this meta-tile).
func (n Node) IsVirtual() bool {
	return n.SourceReference > 0
}

// Tile is a dense grid of up to 2^K x 2^K Nodes sharing one meta-tile blob,
// addressed by the tileid.ID rounded down to the meta-tile's origin.
type Tile struct {
	Origin tileid.ID
	K      int // grid is 2^K x 2^K nodes
	Nodes  []Node
}

// Size returns the grid's edge length, 2^K.
func (t Tile) Size() int {
	return 1 << uint(t.K)
}

// At returns the Node for a global tile id that falls within this meta-tile,
// and whether it was found.
func (t Tile) At(id tileid.ID) (Node, bool) {
	size := uint32(t.Size())
	if id.Lod != t.Origin.Lod {
		return Node{}, false
	}
	dx := id.X - t.Origin.X
	dy := id.Y - t.Origin.Y
	if dx >= size || dy >= size {
		return Node{}, false
	}
	idx := int(dy)*t.Size() + int(dx)
	if idx < 0 || idx >= len(t.Nodes) {
		return Node{}, false
	}
	return t.Nodes[idx], true
}

// Origin rounds a tile id down to the meta-tile grid it belongs to, given
// the grid's K (edge = 2^K tiles).
func Origin(id tileid.ID, k int) tileid.ID {
	size := uint32(1) << uint(k)
	return tileid.ID{Lod: id.Lod, X: (id.X / size) * size, Y: (id.Y / size) * size}
}

// Decoder populates a Tile from an opaque meta-tile blob. The actual byte
// format is out of scope (spec §1): this is the narrow seam the host's
// decoder implements.
type Decoder interface {
	Decode(data []byte, origin tileid.ID, k int) (Tile, error)
}
