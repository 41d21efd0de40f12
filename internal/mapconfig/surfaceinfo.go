package mapconfig

import "strings"

// SurfaceInfo is a single data source with URL templates for its four kinds
// of per-tile blob (spec §3). Name has length >1 exactly when this entry is
// a glue of several tilesets (original_source resourceMapConfig.cpp:
// SurfaceInfo::SurfaceInfo resolves the four URL templates against the
// map-config's own URL at parse time).
type SurfaceInfo struct {
	Name []string

	UrlMeta   string
	UrlMesh   string
	UrlIntTex string
	UrlNav    string
}

// IsGlue reports whether this SurfaceInfo represents the merge of more than
// one tileset rather than a single one.
func (s SurfaceInfo) IsGlue() bool { return len(s.Name) > 1 }

// Key joins Name the way the original's alien-position search does
// (boost::algorithm::join(name, "|")), used to match a glue's constituent
// path against a plain tileset's single-element Name.
func (s SurfaceInfo) Key() string { return strings.Join(s.Name, "|") }

// Glue names the surfaces that must be rendered together for the overlap
// between them to look correct; the last id is the "owning" tileset for the
// purpose of stack placement (spec §3 "glues must precede their constituent
// surfaces").
type Glue struct {
	ID      []string // surface ids, in merge order; ID[len-1] is the owner
	Surface SurfaceInfo
}

func (g Glue) owner() string { return g.ID[len(g.ID)-1] }

// active reports whether every surface this glue depends on is present in
// the view's surface set, and the glue belongs to tilesetID (mirrors
// generateSurfaceStack's `g.id.back() == ts.tilesetId` + membership check).
func (g Glue) active(tilesetID string, inView map[string]bool) bool {
	if g.owner() != tilesetID {
		return false
	}
	for _, id := range g.ID {
		if !inView[id] {
			return false
		}
	}
	return true
}

// BoundLayer is a raster overlay addressed by (tile, localId, submeshIndex)
// through URL templates for color, mask, and optional metadata (spec §3).
type BoundLayer struct {
	ID string

	UrlColor string
	UrlMask  string // "" if this layer is never transparent
	UrlMeta  string // "" if this layer has no availability meta-tile

	LodRange  [2]int    // [min,max] inclusive
	TileRange [4]uint32 // [xmin,ymin,xmax,ymax] at LodRange.min

	Watertight  bool
	Transparent bool
}

// HasMeta reports whether this layer exposes a per-tile availability
// meta-tile (spec §4.3 step 1, last bullet).
func (b BoundLayer) HasMeta() bool { return b.UrlMeta != "" }

// Credit is one entry of the map config's attribution dictionary (spec
// §4.6: "entries are resolved against the credit dictionary"). Notice may
// contain the literal tokens "{copy}" and "{Y}".
type Credit struct {
	ID     int
	Notice string
}
