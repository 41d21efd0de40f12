package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecodeTexturePNG(t *testing.T) {
	src := solidImage(4, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	spec, err := (Decoder{}).DecodeTexture(encodePNG(t, src))
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if spec.Width != 4 || spec.Height != 3 {
		t.Errorf("dims = %dx%d, want 4x3", spec.Width, spec.Height)
	}
	if spec.Components != 4 {
		t.Errorf("Components = %d, want 4", spec.Components)
	}
	if len(spec.Bytes) != 4*3*4 {
		t.Errorf("len(Bytes) = %d, want %d", len(spec.Bytes), 4*3*4)
	}
}

func TestDecodeTextureJPEG(t *testing.T) {
	src := solidImage(8, 8, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	spec, err := (Decoder{}).DecodeTexture(encodeJPEG(t, src))
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if spec.Width != 8 || spec.Height != 8 {
		t.Errorf("dims = %dx%d, want 8x8", spec.Width, spec.Height)
	}
}

func TestDecodeTextureRejectsUnrecognizedData(t *testing.T) {
	if _, err := (Decoder{}).DecodeTexture([]byte("not an image")); err == nil {
		t.Error("expected an error for unrecognized image data")
	}
}

func TestSniffDetectsEachFormat(t *testing.T) {
	png := encodePNG(t, solidImage(1, 1, color.RGBA{A: 255}))
	jpg := encodeJPEG(t, solidImage(1, 1, color.RGBA{A: 255}))
	riff := append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBP")...)

	cases := []struct {
		name string
		data []byte
		want format
	}{
		{"png", png, formatPNG},
		{"jpeg", jpg, formatJPEG},
		{"webp", riff, formatWebP},
		{"garbage", []byte{1, 2, 3}, formatUnknown},
	}
	for _, c := range cases {
		if got := sniff(c.data); got != c.want {
			t.Errorf("sniff(%s) = %v, want %v", c.name, got, c.want)
		}
	}
}
