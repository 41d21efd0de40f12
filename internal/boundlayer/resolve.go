// Package boundlayer resolves, for one sub-mesh, the ordered set of bound
// layers that texture it (spec §4.3): depth computation against each
// layer's lodRange/tileRange, availability-bitmap checks, skip-overlap
// truncation, and the resulting UV matrix.
package boundlayer

import (
	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
)

// BoundParamInfo is one resolved candidate for a sub-mesh (spec §3).
// LocalID is the sub-mesh's own, unclamped local tile id — used by the UV
// matrix to compute the fractional offset inside the (possibly
// lower-resolution) sampled tile. Vars is LocalID right-shifted by Depth —
// the coordinates actually substituted into the layer's URL templates.
type BoundParamInfo struct {
	Layer      mapconfig.BoundLayer
	Depth      int
	LocalID    tileid.ID
	Vars       tileid.ID
	SubMesh    int
	Watertight bool
}

// Resolve evaluates one bound layer against one sub-mesh addressed by
// (tile, localID, subMesh), per spec §4.3 step 1. meta is the decoded
// availability bitmap for this layer, or nil if the layer has no meta-tile
// or it hasn't reached Ready yet (metaReady distinguishes the two: a layer
// with HasMeta()==true and meta==nil but metaReady==false resolves
// Indeterminate rather than Invalid, since the fetch may still succeed).
//
// The `origLocal.lod - vars.local.lod` term of the original depth formula
// (spec §4.3 step 1) accounts for a bound param already being depth-clamped
// by an earlier resolution pass over a different constituent surface of a
// glue; this core resolves each sub-mesh's bound layers in a single pass,
// so that term is always zero here (see DESIGN.md).
func Resolve(tile, localID tileid.ID, subMesh int, layer mapconfig.BoundLayer, meta *resource.BoundMetaPayload, metaReady bool) (BoundParamInfo, resource.Validity) {
	var info BoundParamInfo

	if int(tile.Lod) < layer.LodRange[0] {
		return info, resource.Invalid
	}

	shift := tile.Lod - uint32(layer.LodRange[0])
	sx, sy := tile.X>>shift, tile.Y>>shift
	if sx < layer.TileRange[0] || sy < layer.TileRange[1] ||
		sx > layer.TileRange[2] || sy > layer.TileRange[3] {
		return info, resource.Invalid
	}

	depth := 0
	if int(tile.Lod) > layer.LodRange[1] {
		depth = int(tile.Lod) - layer.LodRange[1]
	}

	vars := localID
	if depth > 0 {
		d := uint32(depth)
		vars = tileid.ID{Lod: localID.Lod - d, X: localID.X >> d, Y: localID.Y >> d}
	}

	watertight := layer.Watertight
	if layer.HasMeta() {
		if meta == nil {
			if metaReady {
				return info, resource.Invalid // meta came back but decode never populated it
			}
			return info, resource.Indeterminate
		}
		available, wt := meta.Available(vars.X, vars.Y)
		if !available {
			return info, resource.Invalid
		}
		watertight = wt
	}

	info = BoundParamInfo{
		Layer:      layer,
		Depth:      depth,
		LocalID:    localID,
		Vars:       vars,
		SubMesh:    subMesh,
		Watertight: watertight,
	}
	return info, resource.Valid
}
