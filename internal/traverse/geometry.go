package traverse

import (
	"math"

	"github.com/melowntech/vtscore/internal/tileid"
)

// flatProjectorThickness gives the flat fallback Projector's two corner
// faces a non-zero separation, so the forward/up basis derived from them
// in computeOBB stays well-defined. Only used when no real division-extent
// projector is wired in (see Projector doc comment).
const flatProjectorThickness = 1.0

// Projector derives a node's 8 physical corners from its 2D SRS extents
// when no valid geomExtents box was supplied by its meta-tile (spec §4.2
// step 4: "...or from extents projected through the reference frame's
// division extents"). The real projection is an external capability
// (spec §9); FlatProjector is a degenerate reference implementation for
// fixtures and tests that treats the extents as already physical.
type Projector interface {
	PhysicalCorners(extents tileid.Extent2, srs string) [8][3]float64
}

// FlatProjector implements Projector by taking the 2D extents at face
// value as physical (x,y), stacking a thin second face at z=
// flatProjectorThickness so the corner-based basis construction in
// computeOBB has well-defined forward/up vectors.
type FlatProjector struct{}

func (FlatProjector) PhysicalCorners(e tileid.Extent2, _ string) [8][3]float64 {
	return [8][3]float64{
		{e.MinX, e.MinY, 0},
		{e.MaxX, e.MinY, 0},
		{e.MinX, e.MaxY, 0},
		{e.MaxX, e.MaxY, 0},
		{e.MinX, e.MinY, flatProjectorThickness},
		{e.MaxX, e.MinY, flatProjectorThickness},
		{e.MinX, e.MaxY, flatProjectorThickness},
		{e.MaxX, e.MaxY, flatProjectorThickness},
	}
}

// resolveGeometry fills CornersPhys, the OBB (depth >4), the AABB (depth
// >2), and the surrogate physical point (spec §4.2 step 4).
func resolveGeometry(n *TraverseNode, proj Projector) {
	m := n.Meta
	if m.GeomExtents.Valid() {
		m.CornersPhys = boxCorners(m.GeomExtents.Min, m.GeomExtents.Max)
	} else {
		m.CornersPhys = proj.PhysicalCorners(n.Info.Extents, n.Info.SRS)
	}

	depth := n.Info.FromRoot
	if depth > 4 {
		m.HasOBB = true
		m.OBB = computeOBB(m.CornersPhys)
	}
	if depth > 2 {
		m.HasAABB = true
		mn, mx := aabbOf(m.CornersPhys)
		m.AabbPhys = [2][3]float64{mn, mx}
	}

	if m.HasSurrogate {
		cx, cy := 0.0, 0.0
		for _, c := range m.CornersPhys {
			cx += c[0]
			cy += c[1]
		}
		n8 := float64(len(m.CornersPhys))
		m.SurrogatePhys = [3]float64{cx / n8, cy / n8, m.surrogateHeight}
	}
}

func boxCorners(min, max [3]float64) [8][3]float64 {
	return [8][3]float64{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{min[0], max[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{min[0], max[1], max[2]},
		{max[0], max[1], max[2]},
	}
}

func aabbOf(corners [8][3]float64) (min, max [3]float64) {
	min = corners[0]
	max = corners[0]
	for _, c := range corners[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], c[i])
			max[i] = math.Max(max[i], c[i])
		}
	}
	return
}

// computeOBB builds the oriented box described in spec §4.2 step 4:
// center = average of the 8 corners, forward = corners[4]-corners[0],
// up = corners[2]-corners[0] (orthogonalized against forward), right
// completes the frame; HalfExtents is the max absolute local-frame
// coordinate of any corner along each axis.
func computeOBB(corners [8][3]float64) OrientedBox {
	var center [3]float64
	for _, c := range corners {
		center = addVec(center, c)
	}
	center = scaleVec(center, 1.0/8.0)

	forward := normalizeVec(subVec(corners[4], corners[0]))
	upRaw := subVec(corners[2], corners[0])
	right := normalizeVec(crossVec(forward, upRaw))
	up := crossVec(right, forward)

	var half [3]float64
	for _, c := range corners {
		d := subVec(c, center)
		local := [3]float64{dotVec(d, right), dotVec(d, up), dotVec(d, forward)}
		for i := 0; i < 3; i++ {
			if a := math.Abs(local[i]); a > half[i] {
				half[i] = a
			}
		}
	}

	return OrientedBox{Center: center, Forward: forward, Up: up, Right: right, HalfExtents: half}
}
