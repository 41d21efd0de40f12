package traverse

import (
	"math"
	"testing"

	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/tileid"
)

func TestResolveGeometryUsesGeomExtentsWhenValid(t *testing.T) {
	n := &TraverseNode{
		Info: tileid.NodeInfo{Extents: tileid.Extent2{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}},
		Meta: &MetaBlock{GeomExtents: meta.Box{Min: [3]float64{0, 0, 0}, Max: [3]float64{2, 4, 6}}},
	}
	resolveGeometry(n, FlatProjector{})

	min, max := aabbOf(n.Meta.CornersPhys)
	want := [3]float64{0, 0, 0}
	if min != want {
		t.Errorf("min = %v, want %v", min, want)
	}
	if max != ([3]float64{2, 4, 6}) {
		t.Errorf("max = %v, want {2 4 6}", max)
	}
}

func TestResolveGeometryFallsBackToProjectorWhenExtentsInvalid(t *testing.T) {
	n := &TraverseNode{
		Info: tileid.NodeInfo{Extents: tileid.Extent2{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5}},
		Meta: &MetaBlock{}, // zero GeomExtents: Min == Max, invalid
	}
	resolveGeometry(n, FlatProjector{})

	for _, c := range n.Meta.CornersPhys {
		if c[0] < -5 || c[0] > 5 || c[1] < -5 || c[1] > 5 {
			t.Fatalf("corner %v outside the projected extents", c)
		}
	}
}

func TestResolveGeometryComputesOBBAndAABBOnlyPastDepthThresholds(t *testing.T) {
	for depth, wantOBB, wantAABB := 2, false, false; depth <= 5; depth++ {
		n := &TraverseNode{
			Info: tileid.NodeInfo{FromRoot: depth, Extents: tileid.Extent2{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}},
			Meta: &MetaBlock{},
		}
		resolveGeometry(n, FlatProjector{})
		wantAABB = depth > 2
		wantOBB = depth > 4
		if n.Meta.HasAABB != wantAABB {
			t.Errorf("depth %d: HasAABB = %v, want %v", depth, n.Meta.HasAABB, wantAABB)
		}
		if n.Meta.HasOBB != wantOBB {
			t.Errorf("depth %d: HasOBB = %v, want %v", depth, n.Meta.HasOBB, wantOBB)
		}
	}
}

func TestResolveGeometrySurrogateUsesCornerAverageAndWinnerHeight(t *testing.T) {
	n := &TraverseNode{
		Info: tileid.NodeInfo{Extents: tileid.Extent2{MinX: -2, MinY: -2, MaxX: 2, MaxY: 2}},
		Meta: &MetaBlock{HasSurrogate: true, surrogateHeight: 42},
	}
	resolveGeometry(n, FlatProjector{})

	if n.Meta.SurrogatePhys[0] != 0 || n.Meta.SurrogatePhys[1] != 0 {
		t.Errorf("surrogate XY = %v, want origin (corners are symmetric)", n.Meta.SurrogatePhys)
	}
	if n.Meta.SurrogatePhys[2] != 42 {
		t.Errorf("surrogate Z = %v, want 42", n.Meta.SurrogatePhys[2])
	}
}

func TestComputeOBBHalfExtentsMatchAxisAlignedBoxDimensions(t *testing.T) {
	corners := boxCorners([3]float64{0, 0, 0}, [3]float64{2, 4, 6})
	obb := computeOBB(corners)

	// The box is axis-aligned, so the OBB's half-extents (however its local
	// axes end up oriented) must still span {1,2,3} in some order.
	got := []float64{obb.HalfExtents[0], obb.HalfExtents[1], obb.HalfExtents[2]}
	want := map[float64]bool{1: true, 2: true, 3: true}
	for _, g := range got {
		if !want[math.Round(g*1e6)/1e6] {
			t.Errorf("half-extent %v not among {1,2,3}", g)
		}
	}
}
