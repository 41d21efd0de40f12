// Package traverse implements the quadtree traversal engine (spec §4.2):
// per-tick visitation of TraverseNodes, meta-tile folding across the
// surface stack, geometry/visibility/coarseness computation, the three
// traversal modes, periodic clearing, and DrawTask emission.
package traverse

import (
	"github.com/melowntech/vtscore/internal/drawtask"
	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
)

// OrientedBox is the per-node OBB computed for nodes at depth >4 (spec
// §4.2 step 4): an orthonormal local frame (Forward/Up/Right) centered at
// Center, with HalfExtents measured along each local axis.
type OrientedBox struct {
	Center                   [3]float64
	Forward, Up, Right       [3]float64
	HalfExtents              [3]float64
}

// Corners returns the box's 8 world-space corners.
func (o OrientedBox) Corners() [8][3]float64 {
	var out [8][3]float64
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				c := addVec(o.Center, scaleVec(o.Right, sx*o.HalfExtents[0]))
				c = addVec(c, scaleVec(o.Up, sy*o.HalfExtents[1]))
				c = addVec(c, scaleVec(o.Forward, sz*o.HalfExtents[2]))
				out[i] = c
				i++
			}
		}
	}
	return out
}

// MetaBlock is the resolved per-node metadata folded across the surface
// stack (spec §3 TraverseNode "Option<Meta> block").
type MetaBlock struct {
	GeomExtents meta.Box

	CornersPhys [8][3]float64

	HasAABB  bool
	AabbPhys [2][3]float64

	HasOBB bool
	OBB    OrientedBox

	HasSurrogate  bool
	SurrogatePhys [3]float64
	surrogateHeight float64 // raw height from the winning MetaNode; folded into SurrogatePhys.Z in resolveGeometry

	TexelSize        float64
	ApplyTexelSize   bool
	DisplaySize      float64
	ApplyDisplaySize bool

	ChildFlags meta.ChildFlag

	// Geometry reports whether this node has a winning, non-alien surface
	// entry that reports renderable geometry (spec §3 "renderable" state).
	Geometry bool
	// StackIndex is the winning surface's index into the engine's surface
	// stack, or -1 if Geometry is false.
	StackIndex int

	Credits []int
}

// RenderTask is one emitted render unit for a node (spec §3 "Render
// tasks"), pre-resolution of bound-layer texturing into a DrawTask.
type RenderTask struct {
	SubMesh     int
	UV          drawtask.Mat3
	ExternalUV  bool
	Transparent bool
	Color       drawtask.RGBA
}

// TraverseNode is a live quadtree node held by the engine (spec §3).
type TraverseNode struct {
	Info   tileid.NodeInfo
	Parent *TraverseNode

	Children [4]*TraverseNode
	Meta     *MetaBlock

	Opaque      []drawtask.Task
	Transparent []drawtask.Task

	LastAccessTick int64
	Priority       float64
}

// Empty reports whether a resolved node has no geometry and no children —
// an invariant-conforming leaf that produces nothing (spec §3 "empty").
func (n *TraverseNode) Empty() bool {
	return n.Meta != nil && !n.Meta.Geometry && n.Meta.ChildFlags == 0
}

func newChild(parent *TraverseNode, index int) *TraverseNode {
	return &TraverseNode{
		Info:   parent.Info.Child(index),
		Parent: parent,
	}
}

// Validity reports the node's coarse resolution health: Indeterminate
// while Meta is still being folded, Invalid if resolved but empty, Valid
// otherwise (used by tests and height-sampling, spec §4.4).
func (n *TraverseNode) Validity() resource.Validity {
	if n.Meta == nil {
		return resource.Indeterminate
	}
	if n.Empty() {
		return resource.Invalid
	}
	return resource.Valid
}
