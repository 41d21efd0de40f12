package resource

import (
	"fmt"

	"github.com/melowntech/vtscore/internal/meta"
	"github.com/melowntech/vtscore/internal/tileid"
)

// Kind tags a Resource's concrete payload type (spec §3's Resource variant
// list).
type Kind int

const (
	KindAuthConfig Kind = iota
	KindMapConfig
	KindMetaTile
	KindMesh
	KindTexture
	KindNavTile
	KindBoundMeta
	KindBoundMask
	KindExternalBoundLayer
	KindSearch
)

func (k Kind) String() string {
	names := [...]string{
		"auth-config", "map-config", "meta-tile", "mesh", "texture",
		"nav-tile", "bound-meta", "bound-mask", "external-bound-layer", "search",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// DecodeError wraps a decoder failure (spec §7 FatalForResource: "decode
// failure").
type DecodeError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("resource: decode %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MeshDecoder and TextureDecoder are the external black-box decoders named
// in spec §6; their job is only to populate pre-defined structs.
type MeshDecoder interface {
	DecodeMesh(data []byte) (GpuMeshSpec, error)
}

type TextureDecoder interface {
	DecodeTexture(data []byte) (GpuTextureSpec, error)
}

// GpuMeshSpec and GpuTextureSpec mirror the host-facing structs of spec §6.
type GpuMeshSpec struct {
	Vertices   []float32
	Indices    []uint32
	Attributes []string
	FaceMode   FaceMode
}

type FaceMode int

const (
	FaceModePoints FaceMode = iota
	FaceModeLines
	FaceModeLineStrip
	FaceModeTriangles
	FaceModeTriangleStrip
	FaceModeTriangleFan
)

type GpuTextureSpec struct {
	Width, Height int
	Components    int // 1,2,3,4
	Bytes         []byte
}

// Decoders bundles every external decoder the cache needs to finish the
// Downloaded -> Ready transition.
type Decoders struct {
	Mesh    MeshDecoder
	Texture TextureDecoder
	Meta    meta.Decoder
}

// DecodeContext carries per-resource decode-time context (metadata the
// payload's Load needs but that isn't in the raw bytes, e.g. a meta-tile's
// grid origin/size).
type DecodeContext struct {
	Decoders    *Decoders
	MetaOrigin  tileid.ID
	MetaK       int
}

// Payload is the common interface every concrete resource kind implements
// (spec §9 design note: "a tagged union in the cache table is preferred
// over runtime-typed dispatch" — Kind is the tag, Payload is the shared
// behavior).
type Payload interface {
	Load(data []byte, ctx DecodeContext) error
	MemoryCost() (ram, gpu int64)
}
