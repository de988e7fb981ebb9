package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateProducesScaledRenditions(t *testing.T) {
	data := jpegBytes(t, 1200, 800)

	result, err := Generate(data, 200, 600, 85)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Width != 1200 || result.Height != 800 {
		t.Fatalf("unexpected original dimensions %dx%d", result.Width, result.Height)
	}

	thumb, _, err := image.Decode(bytes.NewReader(result.Thumb))
	if err != nil {
		t.Fatalf("decode thumb: %v", err)
	}
	if b := thumb.Bounds(); b.Dx() > 200 || b.Dy() > 200 {
		t.Fatalf("thumb exceeds cap: %dx%d", b.Dx(), b.Dy())
	}

	medium, _, err := image.Decode(bytes.NewReader(result.Medium))
	if err != nil {
		t.Fatalf("decode medium: %v", err)
	}
	if b := medium.Bounds(); b.Dx() > 600 || b.Dy() > 600 {
		t.Fatalf("medium exceeds cap: %dx%d", b.Dx(), b.Dy())
	}
}

func TestGenerateKeepsAspectRatio(t *testing.T) {
	data := jpegBytes(t, 1000, 500)

	result, err := Generate(data, 100, 400, 85)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	thumb, _, err := image.Decode(bytes.NewReader(result.Thumb))
	if err != nil {
		t.Fatalf("decode thumb: %v", err)
	}
	b := thumb.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("expected 100x50 thumb, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestGenerateRejectsGarbage(t *testing.T) {
	if _, err := Generate([]byte("definitely not an image"), 200, 600, 85); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestIsImageMime(t *testing.T) {
	for _, mime := range []string{"image/jpeg", "image/png", "image/gif"} {
		if !IsImageMime(mime) {
			t.Fatalf("expected %s to be decodable", mime)
		}
	}
	for _, mime := range []string{"video/mp4", "image/heic", "application/pdf", ""} {
		if IsImageMime(mime) {
			t.Fatalf("expected %s to be rejected", mime)
		}
	}
}
