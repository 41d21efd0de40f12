package boundlayer

import (
	"sort"

	"github.com/melowntech/vtscore/internal/drawtask"
)

// Order sorts resolved candidates ascending by depth (smaller depth is
// higher resolution and wins texturing) then truncates to the smallest
// suffix that fully covers the sub-mesh: scanning from the back, keep going
// until the first watertight, non-transparent entry; drop everything
// before it (spec §4.3 steps 2-3).
func Order(candidates []BoundParamInfo) []BoundParamInfo {
	if len(candidates) == 0 {
		return nil
	}
	sorted := append([]BoundParamInfo(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Depth < sorted[j].Depth
	})

	cut := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		cut = i
		if sorted[i].Watertight && !sorted[i].Layer.Transparent {
			break
		}
	}
	return sorted[cut:]
}

// UVMatrix builds the per-BoundParamInfo UV matrix of spec §4.3: at
// depth=0 it's the identity; otherwise it maps the sub-mesh's full UV
// space onto the quadrant of the sampled, lower-resolution tile that this
// sub-mesh's (unclamped) LocalID falls within.
func UVMatrix(info BoundParamInfo) drawtask.Mat3 {
	if info.Depth == 0 {
		return drawtask.Identity3()
	}
	d := uint32(info.Depth)
	scale := 1.0 / float64(uint64(1)<<d)

	maskedX := info.LocalID.X - ((info.LocalID.X >> d) << d)
	maskedY := info.LocalID.Y - ((info.LocalID.Y >> d) << d)

	tx := scale * float64(maskedX)
	ty := 1 - scale - scale*float64(maskedY)

	return drawtask.Mat3{
		scale, 0, 0,
		0, scale, 0,
		tx, ty, 1,
	}
}
