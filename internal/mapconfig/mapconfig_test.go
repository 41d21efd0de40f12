package mapconfig

import "testing"

const fixtureJSON = `{
  "referenceFrame": {"physicalSrs": "phys", "navigationSrs": "nav", "publicSrs": "pub"},
  "position": {"type": "obj", "lon": 14.42, "lat": 50.09, "yaw": 0, "pitch": 270, "roll": 0, "viewExtent": 1000, "verticalFov": 60},
  "surfaces": [
    {"id": "terrain", "urls3d": {"meta": "{lod}-{ix}-{iy}.meta", "mesh": "{lod}-{ix}-{iy}.mesh", "texture": "{lod}-{ix}-{iy}.jpg", "nav": "{lod}-{ix}-{iy}.nav"}}
  ],
  "boundLayers": [
    {"id": "ortho", "url": "ortho/{lod}-{ix}-{iy}.jpg", "watertight": true}
  ],
  "view": {
    "surfaces": ["terrain"],
    "boundLayers": {"terrain": ["ortho"]}
  },
  "credits": {
    "5": {"notice": "{copy} {Y} Example Provider"}
  },
  "options": {"maxConcurrentDownloads": 3}
}`

func TestLoadParsesFixture(t *testing.T) {
	mc, err := Load([]byte(fixtureJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mc.ReferenceFrame.PhysicalSrs != "phys" {
		t.Errorf("PhysicalSrs = %q, want phys", mc.ReferenceFrame.PhysicalSrs)
	}
	if mc.Position.Lat != 50.09 {
		t.Errorf("Position.Lat = %v, want 50.09", mc.Position.Lat)
	}
	if mc.Options.MaxConcurrentDownloads != 3 {
		t.Errorf("MaxConcurrentDownloads = %d, want 3", mc.Options.MaxConcurrentDownloads)
	}
	if len(mc.SurfaceStack) != 1 || mc.SurfaceStack[0].Surface.Name[0] != "terrain" {
		t.Fatalf("SurfaceStack = %v, want one entry named terrain", mc.SurfaceStack)
	}
	bls := mc.BoundLayersFor("terrain")
	if len(bls) != 1 || bls[0].ID != "ortho" {
		t.Fatalf("BoundLayersFor(terrain) = %v, want [ortho]", bls)
	}
	if !bls[0].Watertight {
		t.Error("expected ortho bound layer to be watertight")
	}
	credit, ok := mc.Credits[5]
	if !ok || credit.Notice != "{copy} {Y} Example Provider" {
		t.Fatalf("Credits[5] = %+v, ok=%v", credit, ok)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	if _, err := Load([]byte("not json")); err == nil {
		t.Error("expected an error for malformed map config JSON")
	}
}

func TestBoundLayersForUnknownSurface(t *testing.T) {
	mc, err := Load([]byte(fixtureJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if bls := mc.BoundLayersFor("nope"); bls != nil {
		t.Errorf("BoundLayersFor(nope) = %v, want nil", bls)
	}
}
