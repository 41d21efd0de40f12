// Package texture implements the reference GpuTextureSpec decoder named in
// spec §6: given raw image bytes, produce a plain RGBA buffer the host's
// loadTexture callback can upload, with no format hint beyond the bytes
// themselves (internal textures and bound masks both arrive this way).
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/gen2brain/webp"

	"github.com/melowntech/vtscore/internal/resource"
)

// Decoder sniffs the image codec from its magic bytes and decodes to a
// GpuTextureSpec. The zero value is ready to use.
type Decoder struct{}

// DecodeTexture implements resource.TextureDecoder.
func (Decoder) DecodeTexture(data []byte) (resource.GpuTextureSpec, error) {
	img, err := decodeImage(data)
	if err != nil {
		return resource.GpuTextureSpec{}, err
	}
	return toSpec(img), nil
}

// decodeImage dispatches on the format sniffed from data's header, rather
// than a URL-derived extension, since the cache hands decoders a bare byte
// buffer (spec §6).
func decodeImage(data []byte) (image.Image, error) {
	switch sniff(data) {
	case formatPNG:
		return png.Decode(bytes.NewReader(data))
	case formatJPEG:
		return jpeg.Decode(bytes.NewReader(data))
	case formatWebP:
		return webp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("texture: unrecognized image data (%d bytes)", len(data))
	}
}

type format int

const (
	formatUnknown format = iota
	formatPNG
	formatJPEG
	formatWebP
)

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

func sniff(data []byte) format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return formatPNG
	case bytes.HasPrefix(data, jpegMagic):
		return formatJPEG
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return formatWebP
	default:
		return formatUnknown
	}
}

// toSpec flattens any decoded image.Image into a tightly packed RGBA
// buffer — the GPU upload boundary (spec §6) wants raw bytes, not a
// Go-side image.Image with its own stride/color-model machinery.
func toSpec(img image.Image) resource.GpuTextureSpec {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Bounds().Dx()*4 {
		b := img.Bounds()
		tight := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(tight, tight.Bounds(), img, b.Min, draw.Src)
		rgba = tight
	}
	b := rgba.Bounds()
	return resource.GpuTextureSpec{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Components: 4,
		Bytes:      rgba.Pix,
	}
}
