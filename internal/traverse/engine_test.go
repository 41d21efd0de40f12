package traverse

import (
	"testing"

	"github.com/melowntech/vtscore/internal/credits"
	"github.com/melowntech/vtscore/internal/mapconfig"
	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/tileid"
)

// fakeMetaDecoder always returns the same fixed Tile, regardless of the
// raw bytes (the tests drive meta-tile content directly rather than
// through a real wire format).
type fakeMetaDecoder struct {
	tile meta.Tile
}

func (d fakeMetaDecoder) Decode(_ []byte, _ tileid.ID, _ int) (meta.Tile, error) {
	return d.tile, nil
}

func newLeafFixture(t *testing.T) (*resource.Cache, *mapconfig.MapConfig) {
	t.Helper()
	leaf := meta.Node{
		Geometry:    true,
		GeomExtents: meta.Box{Min: [3]float64{0, 0, 0}, Max: [3]float64{10, 10, 0}},
	}
	decoder := fakeMetaDecoder{tile: meta.Tile{
		Origin: tileid.Root,
		K:      5,
		Nodes:  []meta.Node{leaf},
	}}

	cfg := resource.DefaultConfig()
	cfg.MaxResourceProcessesPerTick = 100
	c := resource.New(cfg, nil, resource.Decoders{Meta: decoder}, nil)
	c.SetMemorySource(func(name string) ([]byte, error) { return []byte{0}, nil })

	mc := &mapconfig.MapConfig{
		ReferenceFrame: mapconfig.ReferenceFrame{NavigationSrs: "nav"},
		Options:        mapconfig.DefaultOptions(),
		View:           mapconfig.View{Surfaces: []string{"s1"}},
		SurfaceStack: []mapconfig.SurfaceStackItem{{Surface: mapconfig.SurfaceInfo{
			Name:      []string{"s1"},
			UrlMeta:   "meta/{lod}-{x}-{y}",
			UrlMesh:   "mesh/{lod}-{x}-{y}",
			UrlIntTex: "tex/{lod}-{x}-{y}",
		}}},
	}
	return c, mc
}

func tickCacheUntilReady(c *resource.Cache, name string, maxTicks int) {
	for i := 0; i < maxTicks; i++ {
		c.TickRender()
		c.TickData()
		if c.Validity(name) != resource.Indeterminate {
			return
		}
	}
}

func permissiveFrustum() Frustum {
	var f Frustum
	// Six inward-facing planes of a huge box around the origin: every
	// point in the fixture's [0,10]^2 extent tests positive against all
	// of them, so visibility never rejects.
	big := 1e6
	f.Planes = [6]Plane{
		{A: 1, D: big}, {A: -1, D: big},
		{B: 1, D: big}, {B: -1, D: big},
		{C: 1, D: big}, {C: -1, D: big},
	}
	f.WindowHeight = 1000
	return f
}

func TestEngineEmitsLeafWithInternalTexture(t *testing.T) {
	c, mc := newLeafFixture(t)
	tickCacheUntilReady(c, "meta/0-0-0", 10)

	e := New(c, mc, credits.New(2026), nil)
	e.Traverse(permissiveFrustum(), false)

	if !e.Root.Meta.Geometry {
		t.Fatal("expected root to resolve geometry")
	}
	if len(e.Root.Opaque) != 1 {
		t.Fatalf("Opaque = %d tasks, want 1", len(e.Root.Opaque))
	}
	task := e.Root.Opaque[0]
	if task.ExternalUV {
		t.Error("expected ExternalUV=false for a plain internal-texture surface")
	}
	tex, ok := task.TexColor.(*resource.Resource)
	if !ok || tex.Name != "tex/0-0-0" {
		t.Errorf("TexColor = %+v, want resource named tex/0-0-0", task.TexColor)
	}
}

func TestEngineIndeterminateUntilMetaReady(t *testing.T) {
	c, mc := newLeafFixture(t)
	e := New(c, mc, credits.New(2026), nil)

	// No ticks yet: the meta-tile resource is still Initializing, so the
	// first traversal must not resolve Meta.
	e.Traverse(permissiveFrustum(), false)
	if e.Root.Meta != nil {
		t.Error("expected Root.Meta to stay nil before the meta-tile resource is Ready")
	}
}

func TestQuadrantClipUpperRightMatchesScenario(t *testing.T) {
	// Child index 1 = (x=1,y=0): the spec's worked example for a missing
	// upper-right quadrant.
	got := quadrantClip(1)
	want := [4]float64{0.45, -0.05, 1.05, 0.55}
	if got != want {
		t.Errorf("quadrantClip(1) = %v, want %v", got, want)
	}
}

func TestQuadrantClipAllFourCoverUnitSquareWithSkirt(t *testing.T) {
	for i := 0; i < 4; i++ {
		cx := float64(i & 1)
		cy := float64((i >> 1) & 1)
		clip := quadrantClip(i)
		wantMinU, wantMinV := cx*0.5-0.05, cy*0.5-0.05
		wantMaxU, wantMaxV := cx*0.5+0.55, cy*0.5+0.55
		if clip[0] != wantMinU || clip[1] != wantMinV || clip[2] != wantMaxU || clip[3] != wantMaxV {
			t.Errorf("quadrantClip(%d) = %v, want [%v %v %v %v]", i, clip, wantMinU, wantMinV, wantMaxU, wantMaxV)
		}
	}
}
