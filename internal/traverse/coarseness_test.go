package traverse

import (
	"math"
	"testing"

	"github.com/melowntech/vtscore/internal/drawtask"
)

func TestCoarsenessInfiniteWithoutMeta(t *testing.T) {
	n := &TraverseNode{}
	if got := Coarseness(n, Frustum{}); !math.IsInf(got, 1) {
		t.Errorf("Coarseness = %v, want +Inf for an unresolved node", got)
	}
}

func TestCoarsenessInfiniteWhenNeitherSizeApplies(t *testing.T) {
	n := &TraverseNode{Meta: &MetaBlock{}}
	if got := Coarseness(n, Frustum{}); !math.IsInf(got, 1) {
		t.Errorf("Coarseness = %v, want +Inf when ApplyTexelSize/ApplyDisplaySize are both false", got)
	}
}

// perspectiveLikeViewProj builds a Mat4 whose w output tracks z (w = z+1)
// while x/y pass through unchanged, so screenDelta's perspective divide
// actually responds to a z-only offset the way a real view-projection
// matrix would.
func perspectiveLikeViewProj() drawtask.Mat4 {
	var m drawtask.Mat4
	m[0*4+0] = 1 // x -> x
	m[1*4+1] = 1 // y -> y
	m[2*4+2] = 1 // z -> z
	m[2*4+3] = 1 // z contributes to w
	m[3*4+3] = 1 // w = z + 1
	return m
}

func TestCoarsenessTexelSizeGrowsWithTexelSize(t *testing.T) {
	f := Frustum{ViewProj: perspectiveLikeViewProj(), WindowHeight: 1000}
	small := &TraverseNode{Meta: &MetaBlock{
		ApplyTexelSize: true,
		TexelSize:      0.001,
		CornersPhys:    [8][3]float64{{0, 1, 0}},
	}}
	large := &TraverseNode{Meta: &MetaBlock{
		ApplyTexelSize: true,
		TexelSize:      1.0,
		CornersPhys:    [8][3]float64{{0, 1, 0}},
	}}
	cs, cl := Coarseness(small, f), Coarseness(large, f)
	if !(cl > cs) {
		t.Errorf("coarseness with larger texel size (%v) should exceed the smaller one (%v)", cl, cs)
	}
}

func TestCoarsenessDisplaySizePathRequiresSurrogate(t *testing.T) {
	f := Frustum{ViewProj: drawtask.Identity4(), WindowHeight: 1000}
	n := &TraverseNode{Meta: &MetaBlock{
		ApplyDisplaySize: true,
		DisplaySize:      1.0,
		HasSurrogate:     false,
	}}
	if got := Coarseness(n, f); !math.IsInf(got, 1) {
		t.Errorf("Coarseness = %v, want +Inf when ApplyDisplaySize is set but HasSurrogate is false", got)
	}

	n.Meta.HasSurrogate = true
	n.Meta.SurrogatePhys = [3]float64{0, 0, 0}
	if got := Coarseness(n, f); math.IsInf(got, 1) {
		t.Error("Coarseness should be finite once HasSurrogate is true")
	}
}
