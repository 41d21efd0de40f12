package traverse

import "math"

// Coarseness computes how coarse a node's geometry would appear on
// screen (spec §4.2): the texel-size path projects each physical corner
// and its texel-sized vertical offset through viewProj and takes the
// largest resulting screen-space delta; the display-size path does the
// same from the surrogate point, by direct analogy (the source is silent
// on its exact formula; this mirrors the texel-size one, see DESIGN.md).
// +Inf means "never coarse enough to stop descending".
func Coarseness(n *TraverseNode, f Frustum) float64 {
	if n.Meta == nil {
		return math.Inf(1)
	}
	m := n.Meta
	switch {
	case m.ApplyTexelSize:
		var worst float64
		for _, c := range m.CornersPhys {
			if d := screenDelta(c, [3]float64{c[0], c[1], c[2] + m.TexelSize}, f); d > worst {
				worst = d
			}
		}
		return worst
	case m.ApplyDisplaySize && m.HasSurrogate:
		s := m.SurrogatePhys
		return screenDelta(s, [3]float64{s[0], s[1], s[2] + m.DisplaySize}, f)
	default:
		return math.Inf(1)
	}
}

// screenDelta projects a and b through viewProj and returns the absolute
// NDC-y difference scaled to screen pixels.
func screenDelta(a, b [3]float64, f Frustum) float64 {
	pa := f.ViewProj.MulVec4([4]float64{a[0], a[1], a[2], 1})
	pb := f.ViewProj.MulVec4([4]float64{b[0], b[1], b[2], 1})
	if pa[3] == 0 || pb[3] == 0 {
		return 0
	}
	dy := math.Abs(pb[1]/pb[3] - pa[1]/pa[3])
	return dy * f.WindowHeight * 0.5
}
