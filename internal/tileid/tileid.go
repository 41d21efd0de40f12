// Package tileid implements the quadtree tile numbering used to address
// nodes in the reference frame: TileId (lod, x, y) and its derived NodeInfo.
package tileid

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxLod is the highest level of detail the engine ever walks to. Traversal
// statistics clamp their LOD bucket at this value (spec: "clamped to 30").
const MaxLod = 30

// ID identifies a node in the quadtree. The root is (0,0,0); children of
// (L,x,y) are (L+1, 2x+{0,1}, 2y+{0,1}).
type ID struct {
	Lod uint32
	X   uint32
	Y   uint32
}

// Root is the single node at level 0.
var Root = ID{0, 0, 0}

// String renders the id as "lod/x/y", matching the teacher's own (z,x,y)
// tuple convention (internal/pmtiles's ZXYToTileID, internal/tile/zoom.go).
func (id ID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Lod, id.X, id.Y)
}

// Child returns one of the four children, index in [0,3] ordered
// (x,y) = (0,0),(1,0),(0,1),(1,1).
func (id ID) Child(index int) ID {
	return ID{
		Lod: id.Lod + 1,
		X:   2*id.X + uint32(index&1),
		Y:   2*id.Y + uint32((index>>1)&1),
	}
}

// Children returns all four children in index order.
func (id ID) Children() [4]ID {
	return [4]ID{id.Child(0), id.Child(1), id.Child(2), id.Child(3)}
}

// Parent returns the parent id. Calling Parent on the root returns the root.
func (id ID) Parent() ID {
	if id.Lod == 0 {
		return id
	}
	return ID{Lod: id.Lod - 1, X: id.X / 2, Y: id.Y / 2}
}

// ChildIndex returns which of its parent's four child slots this id
// occupies (0-3), matching the bit layout used by MetaNode's
// child-availability bitmap.
func (id ID) ChildIndex() int {
	return int(id.X&1) | int((id.Y&1)<<1)
}

// ClampedLod returns the lod, clamped to [0, MaxLod], for use as a
// traversal-statistics bucket key.
func (id ID) ClampedLod() int {
	l := int(id.Lod)
	if l > MaxLod {
		return MaxLod
	}
	return l
}

// Extent2 is an axis-aligned 2D box in some SRS.
type Extent2 struct {
	MinX, MinY, MaxX, MaxY float64
}

// NodeInfo is the geometric extension of an ID: the SRS of this subtree, its
// 2D extents in that SRS, and its distance from the root (the number of
// quadtree edges walked, used for e.g. credit distanceFromRoot).
type NodeInfo struct {
	ID       ID
	SRS      string
	Extents  Extent2
	FromRoot int
}

// ChildExtents splits a node's extents into its four children's extents,
// in the same (x,y) index order as Children().
func (n NodeInfo) ChildExtents() [4]Extent2 {
	midX := (n.Extents.MinX + n.Extents.MaxX) / 2
	midY := (n.Extents.MinY + n.Extents.MaxY) / 2
	return [4]Extent2{
		{n.Extents.MinX, midY, midX, n.Extents.MaxY}, // (0,0) upper-left in y-down... matches child index 0
		{midX, midY, n.Extents.MaxX, n.Extents.MaxY}, // child index 1 (x=1,y=0)
		{n.Extents.MinX, n.Extents.MinY, midX, midY},  // child index 2 (x=0,y=1)
		{midX, n.Extents.MinY, n.Extents.MaxX, midY},  // child index 3 (x=1,y=1)
	}
}

// Child derives a child NodeInfo's NodeInfo from its parent, given the child
// index (0-3, per ID.ChildIndex/Children ordering).
func (n NodeInfo) Child(index int) NodeInfo {
	return NodeInfo{
		ID:       n.ID.Child(index),
		SRS:      n.SRS,
		Extents:  n.ChildExtents()[index],
		FromRoot: n.FromRoot + 1,
	}
}

// FromLonLat locates the tile of a standard web-mercator pyramid containing
// (lon,lat) at the given lod (used by height-pinning to turn a navigation
// position into a quadtree id to look up in the traverse tree).
func FromLonLat(lon, lat float64, lod uint32) ID {
	t := maptile.At(orb.Point{lon, lat}, maptile.Zoom(lod))
	return ID{Lod: lod, X: t.X, Y: t.Y}
}

// MaptileBounds reports the id's extents as a geographic bounding box,
// assuming the id addresses a standard web-mercator tile pyramid (used by
// camera height sampling and the demo harness; the production mapconfig
// path supplies its own SRS-specific extents instead).
func (id ID) MaptileBounds() (minLon, minLat, maxLon, maxLat float64) {
	t := maptile.New(uint32(id.X), uint32(id.Y), maptile.Zoom(id.Lod))
	b := t.Bound()
	return b.Left(), b.Bottom(), b.Right(), b.Top()
}
