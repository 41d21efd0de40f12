package traverse

import (
	"testing"

	"github.com/melowntech/vtscore/internal/drawtask"
)

// boxFrustum builds a Frustum whose 6 planes are the inward-facing faces
// of an axis-aligned box [lo,hi] on every axis.
func boxFrustum(lo, hi float64) Frustum {
	return Frustum{Planes: [6]Plane{
		{A: 1, D: -lo}, {A: -1, D: hi},
		{B: 1, D: -lo}, {B: -1, D: hi},
		{C: 1, D: -lo}, {C: -1, D: hi},
	}}
}

func TestAabbVisibleInsideBounds(t *testing.T) {
	f := boxFrustum(-10, 10)
	if !aabbVisible([3]float64{-1, -1, -1}, [3]float64{1, 1, 1}, f) {
		t.Error("box inside the frustum bounds should be visible")
	}
}

func TestAabbVisibleRejectsFullyOutside(t *testing.T) {
	f := boxFrustum(-10, 10)
	if aabbVisible([3]float64{100, 100, 100}, [3]float64{200, 200, 200}, f) {
		t.Error("box fully outside every axis should be rejected")
	}
}

func TestAabbVisibleAcceptsPartialOverlap(t *testing.T) {
	f := boxFrustum(-10, 10)
	// Straddles the +x face: the P-vertex for that face (the
	// min-x corner, x=5) is still inside.
	if !aabbVisible([3]float64{5, 0, 0}, [3]float64{20, 1, 1}, f) {
		t.Error("box straddling a frustum face should still be visible")
	}
}

func TestObbVisibleRejectsOnlyWhenAllCornersFailOnePlane(t *testing.T) {
	f := boxFrustum(-10, 10)
	inside := OrientedBox{
		Center:      [3]float64{0, 0, 0},
		Forward:     [3]float64{0, 0, 1},
		Up:          [3]float64{0, 1, 0},
		Right:       [3]float64{1, 0, 0},
		HalfExtents: [3]float64{1, 1, 1},
	}
	if !obbVisible(inside, f) {
		t.Error("OBB centered inside every plane should be visible")
	}

	far := inside
	far.Center = [3]float64{1000, 1000, 1000}
	if obbVisible(far, f) {
		t.Error("OBB whose every corner fails the +x plane should be rejected")
	}
}

func TestVisibleTreatsUnresolvedNodeAsVisible(t *testing.T) {
	n := &TraverseNode{}
	if !Visible(n, Frustum{}) {
		t.Error("a node with no Meta yet must be treated as visible")
	}
}

func TestVisibleUsesAABBBeforeOBB(t *testing.T) {
	f := boxFrustum(-10, 10)
	n := &TraverseNode{Meta: &MetaBlock{
		HasAABB:  true,
		AabbPhys: [2][3]float64{{1000, 1000, 1000}, {2000, 2000, 2000}},
		HasOBB:   true,
		OBB: OrientedBox{
			Forward: [3]float64{0, 0, 1}, Up: [3]float64{0, 1, 0}, Right: [3]float64{1, 0, 0},
		},
	}}
	if Visible(n, f) {
		t.Error("an out-of-bounds AABB must reject regardless of the OBB")
	}
}

func TestMulVec4AppliesIdentity(t *testing.T) {
	v := [4]float64{1, 2, 3, 1}
	got := drawtask.Identity4().MulVec4(v)
	if got != v {
		t.Errorf("Identity4().MulVec4(%v) = %v, want unchanged", v, got)
	}
}
