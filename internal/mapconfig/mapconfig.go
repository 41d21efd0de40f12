// Package mapconfig parses a world description into the surface stack,
// bound-layer registry, and configuration options the traversal and camera
// packages consume, grounded on original_source's resourceMapConfig.cpp
// (MapConfig::load / generateSurfaceStack).
package mapconfig

import (
	"encoding/json"
	"fmt"
)

// ReferenceFrame names the three SRS ids the map config operates in (spec
// §3 NodeInfo's "spatial reference system"; §6 coordinate manipulator's
// SRS kinds map onto these).
type ReferenceFrame struct {
	PhysicalSrs   string
	NavigationSrs string
	PublicSrs     string
}

// Position is the initial camera placement, in the round-trip format of
// spec §6: "obj,lon,lat,fixed,yaw,pitch,roll,0,viewExtent,verticalFov".
type Position struct {
	Type        string // "obj" (object-relative) or "subj" (eye-relative)
	Lon, Lat    float64
	Fixed       bool
	Yaw, Pitch, Roll float64
	ViewExtent  float64
	VerticalFov float64
}

// View selects which surfaces and bound layers are active (original's
// view.surfaces / view.surfaces[*].boundLayers).
type View struct {
	Surfaces     []string            // surface ids, in activation order
	BoundLayers  map[string][]string // surface id -> ordered bound layer ids
}

// MapConfig is the parsed, resolved world description (spec §3
// SurfaceStack / BoundLayer; §4.6 credit dictionary).
type MapConfig struct {
	ReferenceFrame ReferenceFrame
	Options        Options
	Position       Position
	View           View

	Surfaces []SurfaceInfo
	Glues    []Glue

	BoundLayers map[string]BoundLayer
	Credits     map[int]Credit

	SurfaceStack []SurfaceStackItem
}

// wireMapConfig is the on-disk JSON shape. Only the fields the core needs
// are modeled; everything else in a real map-config document is ignored
// (spec §1 non-goal: "parsing of opaque file formats ... the core treats
// these as black-box blobs" — the map-config JSON is the one structured
// exception the core itself must navigate to build the surface stack).
type wireMapConfig struct {
	ReferenceFrame struct {
		PhysicalSrs   string `json:"physicalSrs"`
		NavigationSrs string `json:"navigationSrs"`
		PublicSrs     string `json:"publicSrs"`
	} `json:"referenceFrame"`

	Position struct {
		Type        string  `json:"type"`
		Lon         float64 `json:"lon"`
		Lat         float64 `json:"lat"`
		Fixed       bool    `json:"fixed"`
		Yaw         float64 `json:"yaw"`
		Pitch       float64 `json:"pitch"`
		Roll        float64 `json:"roll"`
		ViewExtent  float64 `json:"viewExtent"`
		VerticalFov float64 `json:"verticalFov"`
	} `json:"position"`

	Surfaces []struct {
		ID    string `json:"id"`
		Urls3d struct {
			Meta    string `json:"meta"`
			Mesh    string `json:"mesh"`
			Texture string `json:"texture"`
			Nav     string `json:"nav"`
		} `json:"urls3d"`
	} `json:"surfaces"`

	Glues []struct {
		ID     []string `json:"id"`
		Urls3d struct {
			Meta    string `json:"meta"`
			Mesh    string `json:"mesh"`
			Texture string `json:"texture"`
			Nav     string `json:"nav"`
		} `json:"urls3d"`
	} `json:"glues"`

	BoundLayers []struct {
		ID          string    `json:"id"`
		Url         string    `json:"url"`
		MaskUrl     string    `json:"maskUrl"`
		MetaUrl     string    `json:"metaUrl"`
		LodRange    [2]int    `json:"lodRange"`
		TileRange   [4]uint32 `json:"tileRange"`
		Watertight  bool      `json:"watertight"`
		Transparent bool      `json:"transparent"`
	} `json:"boundLayers"`

	View struct {
		Surfaces    []string            `json:"surfaces"`
		BoundLayers map[string][]string `json:"boundLayers"`
	} `json:"view"`

	Credits map[string]struct {
		Notice string `json:"notice"`
	} `json:"credits"`

	Options json.RawMessage `json:"options"`
}

// Load parses a map-config JSON document and resolves its surface stack.
func Load(data []byte) (*MapConfig, error) {
	var w wireMapConfig
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("mapconfig: %w", err)
	}

	opt, err := ParseOptions(w.Options)
	if err != nil {
		return nil, fmt.Errorf("mapconfig: options: %w", err)
	}

	mc := &MapConfig{
		ReferenceFrame: ReferenceFrame{
			PhysicalSrs:   w.ReferenceFrame.PhysicalSrs,
			NavigationSrs: w.ReferenceFrame.NavigationSrs,
			PublicSrs:     w.ReferenceFrame.PublicSrs,
		},
		Options: opt,
		Position: Position{
			Type:        w.Position.Type,
			Lon:         w.Position.Lon,
			Lat:         w.Position.Lat,
			Fixed:       w.Position.Fixed,
			Yaw:         w.Position.Yaw,
			Pitch:       w.Position.Pitch,
			Roll:        w.Position.Roll,
			ViewExtent:  w.Position.ViewExtent,
			VerticalFov: w.Position.VerticalFov,
		},
		View: View{
			Surfaces:    w.View.Surfaces,
			BoundLayers: w.View.BoundLayers,
		},
		BoundLayers: make(map[string]BoundLayer, len(w.BoundLayers)),
		Credits:     make(map[int]Credit, len(w.Credits)),
	}

	for _, s := range w.Surfaces {
		mc.Surfaces = append(mc.Surfaces, SurfaceInfo{
			Name:      []string{s.ID},
			UrlMeta:   s.Urls3d.Meta,
			UrlMesh:   s.Urls3d.Mesh,
			UrlIntTex: s.Urls3d.Texture,
			UrlNav:    s.Urls3d.Nav,
		})
	}

	for _, g := range w.Glues {
		mc.Glues = append(mc.Glues, Glue{
			ID: g.ID,
			Surface: SurfaceInfo{
				Name:      g.ID,
				UrlMeta:   g.Urls3d.Meta,
				UrlMesh:   g.Urls3d.Mesh,
				UrlIntTex: g.Urls3d.Texture,
				UrlNav:    g.Urls3d.Nav,
			},
		})
	}

	for _, b := range w.BoundLayers {
		mc.BoundLayers[b.ID] = BoundLayer{
			ID:          b.ID,
			UrlColor:    b.Url,
			UrlMask:     b.MaskUrl,
			UrlMeta:     b.MetaUrl,
			LodRange:    b.LodRange,
			TileRange:   b.TileRange,
			Watertight:  b.Watertight,
			Transparent: b.Transparent,
		}
	}

	for idStr, c := range w.Credits {
		var id int
		if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil {
			continue
		}
		mc.Credits[id] = Credit{ID: id, Notice: c.Notice}
	}

	mc.SurfaceStack = GenerateSurfaceStack(mc.Surfaces, mc.Glues, mc.View.Surfaces)
	return mc, nil
}

// BoundLayersFor returns the ordered bound-layer list configured for a
// surface in the current view, or nil if none.
func (mc *MapConfig) BoundLayersFor(surfaceID string) []BoundLayer {
	ids := mc.View.BoundLayers[surfaceID]
	if len(ids) == 0 {
		return nil
	}
	out := make([]BoundLayer, 0, len(ids))
	for _, id := range ids {
		if bl, ok := mc.BoundLayers[id]; ok {
			out = append(out, bl)
		}
	}
	return out
}
