package resource

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/melowntech/vtscore/internal/meta"
)

// AuthConfigPayload carries token lifetime and the per-host allow-list the
// core consumes (spec §1 non-goal: "core only consumes token lifetime + a
// per-host allow-list"; shape grounded on original_source's
// resourceAuth.cpp).
type AuthConfigPayload struct {
	Token   string
	Expires time.Time
	Hosts   map[string]bool
}

func (p *AuthConfigPayload) Load(data []byte, _ DecodeContext) error {
	var raw struct {
		Status    int      `json:"status"`
		Message   string   `json:"statusMessage"`
		Expires   int64    `json:"expires"`
		Now       int64    `json:"now"`
		Hostnames []string `json:"hostnames"`
		Token     string   `json:"token"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if raw.Status != 200 {
		return fmt.Errorf("auth config: status %d: %s", raw.Status, raw.Message)
	}
	validFor := raw.Expires - raw.Now
	if validFor < 60 {
		validFor = 60
	}
	p.Expires = time.Now().Add(time.Duration(validFor) * time.Second)
	p.Token = raw.Token
	p.Hosts = make(map[string]bool, len(raw.Hostnames))
	for _, h := range raw.Hostnames {
		p.Hosts[h] = true
	}
	return nil
}

func (p *AuthConfigPayload) MemoryCost() (ram, gpu int64) { return 1024, 0 }

// AboutToExpire reports whether the token is within margin of expiring,
// so the cache can proactively refresh it (original_source:
// resourceAuth.cpp's checkTime/aboutToTimeout).
func (p *AuthConfigPayload) AboutToExpire(margin time.Duration) bool {
	return time.Now().Add(margin).After(p.Expires)
}

// MapConfigPayload carries the opaque, already-decoded map-config bytes.
// Its structured interpretation (surface stack, bound layers) lives in
// package mapconfig; the cache only tracks the raw decode succeeded.
type MapConfigPayload struct {
	Raw json.RawMessage
}

func (p *MapConfigPayload) Load(data []byte, _ DecodeContext) error {
	if !json.Valid(data) {
		return fmt.Errorf("map config: invalid json")
	}
	p.Raw = append([]byte(nil), data...)
	return nil
}

func (p *MapConfigPayload) MemoryCost() (ram, gpu int64) { return int64(len(p.Raw)), 0 }

// MetaTilePayload decodes a meta-tile blob into a dense grid of MetaNodes.
type MetaTilePayload struct {
	Tile meta.Tile
}

func (p *MetaTilePayload) Load(data []byte, ctx DecodeContext) error {
	if ctx.Decoders == nil || ctx.Decoders.Meta == nil {
		return fmt.Errorf("meta tile: no decoder configured")
	}
	t, err := ctx.Decoders.Meta.Decode(data, ctx.MetaOrigin, ctx.MetaK)
	if err != nil {
		return err
	}
	p.Tile = t
	return nil
}

func (p *MetaTilePayload) MemoryCost() (ram, gpu int64) {
	return int64(len(p.Tile.Nodes)) * 128, 0
}

// MeshPayload holds the decoded mesh spec, ready for the host's
// loadMesh upload callback.
type MeshPayload struct {
	Spec GpuMeshSpec
}

func (p *MeshPayload) Load(data []byte, ctx DecodeContext) error {
	if ctx.Decoders == nil || ctx.Decoders.Mesh == nil {
		return fmt.Errorf("mesh: no decoder configured")
	}
	spec, err := ctx.Decoders.Mesh.DecodeMesh(data)
	if err != nil {
		return err
	}
	p.Spec = spec
	return nil
}

func (p *MeshPayload) MemoryCost() (ram, gpu int64) {
	ram = int64(len(p.Spec.Vertices)*4 + len(p.Spec.Indices)*4)
	gpu = ram
	return
}

// TexturePayload holds the decoded texture spec.
type TexturePayload struct {
	Spec GpuTextureSpec
}

func (p *TexturePayload) Load(data []byte, ctx DecodeContext) error {
	if ctx.Decoders == nil || ctx.Decoders.Texture == nil {
		return fmt.Errorf("texture: no decoder configured")
	}
	spec, err := ctx.Decoders.Texture.DecodeTexture(data)
	if err != nil {
		return err
	}
	p.Spec = spec
	return nil
}

func (p *TexturePayload) MemoryCost() (ram, gpu int64) {
	bytes := int64(p.Spec.Width * p.Spec.Height * p.Spec.Components)
	return bytes, bytes
}

// NavTilePayload is an opaque navigation-tile blob (height sampling data);
// its internal format is out of scope (spec §1).
type NavTilePayload struct {
	Data []byte
}

func (p *NavTilePayload) Load(data []byte, _ DecodeContext) error {
	p.Data = append([]byte(nil), data...)
	return nil
}

func (p *NavTilePayload) MemoryCost() (ram, gpu int64) { return int64(len(p.Data)), 0 }

// BoundMetaPayload holds a bound layer's 256x256 per-tile availability
// bitmap (spec §4.3 "the layer exposes a meta-tile, fetch the 256x256
// availability byte").
type BoundMetaPayload struct {
	// Availability packs one byte per tile: bit0 = available, bit1 = watertight.
	Availability [256 * 256]byte
}

func (p *BoundMetaPayload) Load(data []byte, _ DecodeContext) error {
	n := copy(p.Availability[:], data)
	if n < len(data) {
		return fmt.Errorf("bound meta: payload larger than 256x256 grid")
	}
	return nil
}

func (p *BoundMetaPayload) MemoryCost() (ram, gpu int64) { return int64(len(p.Availability)), 0 }

// Available reports whether tile (x&255, y&255) is marked available, and
// if so whether it's watertight.
func (p *BoundMetaPayload) Available(x, y uint32) (available, watertight bool) {
	b := p.Availability[(y&255)*256+(x&255)]
	return b&1 != 0, b&2 != 0
}

// BoundMaskPayload is the decoded alpha mask texture for a partially
// transparent bound layer tile.
type BoundMaskPayload struct {
	Spec GpuTextureSpec
}

func (p *BoundMaskPayload) Load(data []byte, ctx DecodeContext) error {
	if ctx.Decoders == nil || ctx.Decoders.Texture == nil {
		return fmt.Errorf("bound mask: no decoder configured")
	}
	spec, err := ctx.Decoders.Texture.DecodeTexture(data)
	if err != nil {
		return err
	}
	p.Spec = spec
	return nil
}

func (p *BoundMaskPayload) MemoryCost() (ram, gpu int64) {
	bytes := int64(p.Spec.Width * p.Spec.Height * p.Spec.Components)
	return bytes, bytes
}

// ExternalBoundLayerPayload is a free-standing bound-layer config fetched
// from its own URL rather than embedded in the map config.
type ExternalBoundLayerPayload struct {
	Raw json.RawMessage
}

func (p *ExternalBoundLayerPayload) Load(data []byte, _ DecodeContext) error {
	if !json.Valid(data) {
		return fmt.Errorf("external bound layer: invalid json")
	}
	p.Raw = append([]byte(nil), data...)
	return nil
}

func (p *ExternalBoundLayerPayload) MemoryCost() (ram, gpu int64) { return int64(len(p.Raw)), 0 }

// SearchPayload is an opaque search-result blob (search query orchestration
// is out of scope; only the resource kind's lifecycle needs to exist, per
// SPEC_FULL.md's supplemented-features note on search.cpp).
type SearchPayload struct {
	Data []byte
}

func (p *SearchPayload) Load(data []byte, _ DecodeContext) error {
	p.Data = append([]byte(nil), data...)
	return nil
}

func (p *SearchPayload) MemoryCost() (ram, gpu int64) { return int64(len(p.Data)), 0 }

// NewPayload constructs the zero-value Payload for a Kind.
func NewPayload(kind Kind) Payload {
	switch kind {
	case KindAuthConfig:
		return &AuthConfigPayload{}
	case KindMapConfig:
		return &MapConfigPayload{}
	case KindMetaTile:
		return &MetaTilePayload{}
	case KindMesh:
		return &MeshPayload{}
	case KindTexture:
		return &TexturePayload{}
	case KindNavTile:
		return &NavTilePayload{}
	case KindBoundMeta:
		return &BoundMetaPayload{}
	case KindBoundMask:
		return &BoundMaskPayload{}
	case KindExternalBoundLayer:
		return &ExternalBoundLayerPayload{}
	case KindSearch:
		return &SearchPayload{}
	default:
		return nil
	}
}
