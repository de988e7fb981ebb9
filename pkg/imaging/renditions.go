package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Renditions holds the downscaled variants produced for a still image.
// Thumb and Medium are JPEG-encoded and aspect-ratio preserving; Width and
// Height describe the original.
type Renditions struct {
	Width  int
	Height int
	Thumb  []byte
	Medium []byte
}

// IsImageMime reports whether the MIME type is one Generate can decode.
func IsImageMime(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// Generate decodes data and produces thumbnail and medium renditions capped
// at thumbMax/mediumMax pixels on the longest side.
func Generate(data []byte, thumbMax, mediumMax, quality int) (*Renditions, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	result := &Renditions{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	thumb, err := encodeScaled(src, thumbMax, quality)
	if err != nil {
		return nil, err
	}
	medium, err := encodeScaled(src, mediumMax, quality)
	if err != nil {
		return nil, err
	}

	result.Thumb = thumb
	result.Medium = medium
	return result, nil
}

func encodeScaled(src image.Image, maxPx, quality int) ([]byte, error) {
	if maxPx <= 0 {
		return nil, fmt.Errorf("rendition size must be positive")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	scaled := resize.Thumbnail(uint(maxPx), uint(maxPx), src, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding rendition: %w", err)
	}
	return buf.Bytes(), nil
}
