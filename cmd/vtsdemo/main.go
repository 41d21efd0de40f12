// Command vtsdemo drives a mapclient.Map against a synthetic, entirely
// in-memory world: a procedurally generated quadtree standing in for a
// real tileset, since the meta/mesh/texture wire formats themselves are a
// black-box concern no decoder in this tree actually parses. It exists to
// exercise the data/render tick loop end to end without a network.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/melowntech/vtscore/internal/coord"
	"github.com/melowntech/vtscore/internal/mapclient"
	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/obs"
	"github.com/melowntech/vtscore/internal/resource"
	"github.com/melowntech/vtscore/internal/texture"
	"github.com/melowntech/vtscore/internal/tileid"
)

func main() {
	var (
		ticks      int
		maxLodFlag uint
		panDeg     float64
		windowW    int
		windowH    int
		reportEach int
		verbose    bool
	)

	flag.IntVar(&ticks, "ticks", 300, "Number of data/render tick pairs to run")
	flag.UintVar(&maxLodFlag, "max-lod", 8, "Depth of the synthetic quadtree (deepest level that reports geometry)")
	flag.Float64Var(&panDeg, "pan-speed", 0.02, "Degrees of longitude panned per tick, simulating user input")
	flag.IntVar(&windowW, "width", 1280, "Simulated window width in pixels")
	flag.IntVar(&windowH, "height", 720, "Simulated window height in pixels")
	flag.IntVar(&reportEach, "report-every", 30, "Print a status line every N ticks")
	flag.BoolVar(&verbose, "verbose", false, "Enable structured debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vtsdemo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Run the map core against a synthetic in-memory world and print tick statistics.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	maxLod := uint32(maxLodFlag)

	zlog, err := obs.New()
	if err != nil {
		log.Fatalf("Building logger: %v", err)
	}
	defer zlog.Sync()
	if !verbose {
		zlog = obs.Nop()
	}

	cfg := resource.DefaultConfig()
	decoders := resource.Decoders{
		Meta:    demoMetaDecoder{maxLod: maxLod},
		Mesh:    demoMeshDecoder{},
		Texture: texture.Decoder{},
	}
	cache := resource.New(cfg, nil, decoders, obs.With(zlog, "resource"))
	cache.SetMemorySource(demoMemorySource())

	m := mapclient.New(cache, &coord.WGS84Manipulator{}, time.Now().Year(), obs.With(zlog, "mapclient"))
	m.Callbacks().OnConfigReady = func() {
		fmt.Println("map config loaded; surfaces live")
	}
	m.Callbacks().OnConfigFailed = func(err error) {
		log.Fatalf("map config failed to load: %v", err)
	}
	m.SetMapConfigPath("demo-config.json", "")

	start := time.Now()
	for i := 0; i < ticks; i++ {
		m.TickData()
		if m.IsConfigReady() {
			m.Pan(panDeg, 0, 0)
		}
		if err := m.TickRender(uint32(windowW), uint32(windowH)); err != nil {
			log.Fatalf("tick %d: %v", i, err)
		}

		if reportEach > 0 && (i+1)%reportEach == 0 {
			s := m.Stats()
			fmt.Printf("tick %4d  visited=%-4d cache(resources=%d downloading=%d ram=%dB gpu=%dB)  credits=%v\n",
				i+1, s.Traverse.Visited, s.Cache.Count, s.Cache.Downloading, s.Cache.RamUse, s.Cache.GpuUse, creditNotices(m))
		}
	}
	fmt.Printf("ran %d ticks in %v\n", ticks, time.Since(start).Round(time.Millisecond))
	fmt.Printf("final position: %s\n", m.PositionURL())
}

func creditNotices(m *mapclient.Map) []string {
	cs := m.ResolvedCredits()
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Notice)
	}
	return out
}

// demoMapConfig is a small but complete world: one surface whose meta-tiles
// are generated on the fly by demoMetaDecoder, positioned over a patch of
// terrain roughly above central Europe.
const demoMapConfig = `{
	"referenceFrame": {"physicalSrs": "demo-physical", "navigationSrs": "epsg:4326", "publicSrs": "demo-physical"},
	"position": {"type": "obj", "lon": 14.4378, "lat": 50.0755, "viewExtent": 8000, "verticalFov": 60, "pitch": 280},
	"surfaces": [
		{"id": "terrain", "urls3d": {"meta": "meta/{lod}-{x}-{y}", "mesh": "mesh/{lod}-{x}-{y}", "texture": "tex/{lod}-{x}-{y}"}}
	],
	"view": {"surfaces": ["terrain"]},
	"credits": {"1": {"notice": "Synthetic terrain, vtsdemo"}}
}`

// demoMemorySource serves the canned map-config document plus placeholder
// bytes for every mesh/texture URL the traversal engine requests; meta-tile
// bytes are never actually read since demoMetaDecoder ignores its data
// argument entirely and derives the tile purely from (origin, k).
func demoMemorySource() func(name string) ([]byte, error) {
	tex := demoTexturePNG()
	return func(name string) ([]byte, error) {
		switch {
		case name == "demo-config.json":
			return []byte(demoMapConfig), nil
		case len(name) >= 3 && name[:3] == "tex":
			return tex, nil
		default:
			return []byte{}, nil
		}
	}
}

// demoTexturePNG renders a tiny solid-color PNG so internal/texture's real
// codec path (not a stub) runs on every resolved surface tile.
func demoTexturePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 80, G: 140, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err) // encoding a freshly built in-memory image cannot fail
	}
	return buf.Bytes()
}

// demoMetaDecoder synthesizes a full 2^K x 2^K meta-tile grid for any
// requested origin: tiles below maxLod keep subdividing (all four children
// present), tiles at maxLod report geometry and a surrogate height, making
// the quadtree a finite pyramid capped at maxLod.
type demoMetaDecoder struct {
	maxLod uint32
}

func (d demoMetaDecoder) Decode(_ []byte, origin tileid.ID, k int) (meta.Tile, error) {
	size := 1 << uint(k)
	nodes := make([]meta.Node, size*size)
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			id := tileid.ID{Lod: origin.Lod, X: origin.X + uint32(dx), Y: origin.Y + uint32(dy)}
			nodes[dy*size+dx] = d.nodeFor(id)
		}
	}
	return meta.Tile{Origin: origin, K: k, Nodes: nodes}, nil
}

func (d demoMetaDecoder) nodeFor(id tileid.ID) meta.Node {
	if id.Lod >= d.maxLod {
		minLon, minLat, maxLon, maxLat := id.MaptileBounds()
		return meta.Node{
			Geometry:        true,
			HasSurrogate:    true,
			SurrogateHeight: demoHeight((minLon+maxLon)/2, (minLat+maxLat)/2),
			TexelSize:       2.0,
			ApplyTexelSize:  true,
			CreditIDs:       []int{1},
		}
	}
	return meta.Node{
		ChildFlags: meta.AllChildren,
		CreditIDs:  []int{1},
	}
}

// demoHeight is a cheap synthetic terrain surface: a single low-frequency
// hill centered on the demo config's starting position.
func demoHeight(lon, lat float64) float64 {
	dLon := lon - 14.4378
	dLat := lat - 50.0755
	return 400.0 - 2000.0*(dLon*dLon+dLat*dLat)
}

// demoMeshDecoder reports a minimal single-quad mesh for every resolved
// tile; its content is never inspected, only its presence advances a
// resource to Ready.
type demoMeshDecoder struct{}

func (demoMeshDecoder) DecodeMesh(_ []byte) (resource.GpuMeshSpec, error) {
	return resource.GpuMeshSpec{
		Vertices: []float32{
			0, 0, 0, 0, 0,
			1, 0, 0, 1, 0,
			1, 1, 0, 1, 1,
			0, 1, 0, 0, 1,
		},
		Indices:    []uint32{0, 1, 2, 0, 2, 3},
		Attributes: []string{"position", "uv"},
		FaceMode:   resource.FaceModeTriangles,
	}, nil
}
