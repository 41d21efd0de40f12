package boundlayer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
)

func layer(id string, lodMin, lodMax int, tileRange [4]uint32) mapconfig.BoundLayer {
	return mapconfig.BoundLayer{
		ID:         id,
		UrlColor:   "http://example.test/" + id + "/{lod}-{x}-{y}.jpg",
		LodRange:   [2]int{lodMin, lodMax},
		TileRange:  tileRange,
		Watertight: true,
	}
}

func TestResolveDropsBelowLodRangeMin(t *testing.T) {
	tile := tileid.ID{Lod: 3, X: 1, Y: 1}
	l := layer("a", 5, 10, [4]uint32{0, 0, 1000, 1000})
	_, status := Resolve(tile, tile, 0, l, nil, false)
	if status != resource.Invalid {
		t.Errorf("status = %v, want Invalid (tile.Lod < layer.LodRange.min)", status)
	}
}

func TestResolveDropsOutsideTileRange(t *testing.T) {
	tile := tileid.ID{Lod: 6, X: 100, Y: 100}
	l := layer("a", 5, 10, [4]uint32{0, 0, 1, 1}) // at lod 5, only tile (0..1,0..1) valid
	// shift = 6-5 = 1; shifted = (50,50), far outside [0,1]
	_, status := Resolve(tile, tile, 0, l, nil, false)
	if status != resource.Invalid {
		t.Errorf("status = %v, want Invalid (outside tileRange)", status)
	}
}

func TestResolveWithinRangeNoDepthClampAtLodRangeMax(t *testing.T) {
	tile := tileid.ID{Lod: 8, X: 4, Y: 4}
	l := layer("a", 5, 10, [4]uint32{0, 0, 100, 100})
	info, status := Resolve(tile, tile, 2, l, nil, false)
	if status != resource.Valid {
		t.Fatalf("status = %v, want Valid", status)
	}
	if info.Depth != 0 {
		t.Errorf("Depth = %d, want 0 (tile.Lod %d <= layer.LodRange.max %d)", info.Depth, tile.Lod, l.LodRange[1])
	}
	if info.SubMesh != 2 {
		t.Errorf("SubMesh = %d, want 2", info.SubMesh)
	}
	if !info.Watertight {
		t.Error("expected watertight to carry over from the layer when no meta-tile is configured")
	}
}

func TestResolveDepthClampAboveLodRangeMax(t *testing.T) {
	tile := tileid.ID{Lod: 12, X: 40, Y: 44}
	l := layer("a", 5, 10, [4]uint32{0, 0, 1 << 20, 1 << 20})
	info, status := Resolve(tile, tile, 0, l, nil, false)
	if status != resource.Valid {
		t.Fatalf("status = %v, want Valid", status)
	}
	if info.Depth != 2 {
		t.Fatalf("Depth = %d, want 2 (tile.Lod 12 - layer.LodRange.max 10)", info.Depth)
	}
	wantVars := tileid.ID{Lod: 10, X: 10, Y: 11}
	if info.Vars != wantVars {
		t.Errorf("Vars = %+v, want %+v", info.Vars, wantVars)
	}
	// LocalID stays at full (unclamped) resolution for the UV matrix.
	if info.LocalID != tile {
		t.Errorf("LocalID = %+v, want unclamped tile %+v", info.LocalID, tile)
	}
}

func TestResolveMetaIndeterminateBeforeReady(t *testing.T) {
	tile := tileid.ID{Lod: 6, X: 1, Y: 1}
	l := layer("a", 5, 10, [4]uint32{0, 0, 100, 100})
	l.UrlMeta = "http://example.test/a/meta/{lod}-{x}-{y}.meta"
	_, status := Resolve(tile, tile, 0, l, nil, false)
	if status != resource.Indeterminate {
		t.Errorf("status = %v, want Indeterminate while meta-tile is not yet Ready", status)
	}
}

func TestResolveMetaAvailabilityBit(t *testing.T) {
	tile := tileid.ID{Lod: 6, X: 1, Y: 1}
	l := layer("a", 5, 10, [4]uint32{0, 0, 100, 100})
	l.UrlMeta = "http://example.test/a/meta/{lod}-{x}-{y}.meta"

	var meta resource.BoundMetaPayload
	// tile (1,1) at lod 6: no depth clamp (lod<=max), so vars = tile = (1,1).
	meta.Availability[1*256+1] = 0 // available bit unset -> Invalid
	if _, status := Resolve(tile, tile, 0, l, &meta, true); status != resource.Invalid {
		t.Errorf("status = %v, want Invalid (available bit unset)", status)
	}

	meta.Availability[1*256+1] = 1 | 2 // available + watertight
	info, status := Resolve(tile, tile, 0, l, &meta, true)
	if status != resource.Valid {
		t.Fatalf("status = %v, want Valid", status)
	}
	if !info.Watertight {
		t.Error("expected watertight bit from the availability byte to propagate")
	}
}

func TestOrderSortsByDepthAndTruncatesAtWatertight(t *testing.T) {
	opaqueFar := BoundParamInfo{Layer: mapconfig.BoundLayer{ID: "far"}, Depth: 3, Watertight: true}
	transparentNear := BoundParamInfo{Layer: mapconfig.BoundLayer{ID: "near", Transparent: true}, Depth: 0, Watertight: true}
	midOpaque := BoundParamInfo{Layer: mapconfig.BoundLayer{ID: "mid"}, Depth: 1, Watertight: true}

	ordered := Order([]BoundParamInfo{transparentNear, opaqueFar, midOpaque})

	// Ascending by depth: near(0,transparent), mid(1,opaque+watertight), far(3).
	// Scanning from the back: far is watertight+non-transparent -> stop there,
	// truncate everything before it, so only "far" survives.
	if len(ordered) != 1 || ordered[0].Layer.ID != "far" {
		t.Fatalf("Order(...) = %+v, want just [far]", ordered)
	}
}

func TestOrderKeepsTransparentOverlayAboveOpaqueBase(t *testing.T) {
	base := BoundParamInfo{Layer: mapconfig.BoundLayer{ID: "base"}, Depth: 2, Watertight: true}
	overlay := BoundParamInfo{Layer: mapconfig.BoundLayer{ID: "overlay", Transparent: true}, Depth: 0, Watertight: true}

	ordered := Order([]BoundParamInfo{overlay, base})
	want := []BoundParamInfo{base, overlay}
	if diff := cmp.Diff(want, ordered); diff != "" {
		t.Errorf("Order(...) mismatch (-want +got):\n%s", diff)
	}
}

func TestUVMatrixIdentityAtDepthZero(t *testing.T) {
	info := BoundParamInfo{Depth: 0}
	m := UVMatrix(info)
	if m != [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1} {
		t.Errorf("UVMatrix(depth=0) = %v, want identity", m)
	}
}

func TestUVMatrixAtDepthOne(t *testing.T) {
	// localId (x=3,y=5) clamped by depth 1: mask low bit -> (1,1).
	info := BoundParamInfo{Depth: 1, LocalID: tileid.ID{X: 3, Y: 5}}
	m := UVMatrix(info)
	want := [9]float64{
		0.5, 0, 0,
		0, 0.5, 0,
		0.5, 1 - 0.5 - 0.5, 1,
	}
	if m != want {
		t.Errorf("UVMatrix(depth=1, local=(3,5)) = %v, want %v", m, want)
	}
}
