package enums

import (
	"fmt"
	"strings"
)

// MediaType distinguishes stills from motion media.
type MediaType string

const (
	MediaTypePhoto MediaType = "PHOTO"
	MediaTypeVideo MediaType = "VIDEO"
)

var validMediaTypes = []MediaType{
	MediaTypePhoto,
	MediaTypeVideo,
}

func (m MediaType) String() string {
	return string(m)
}

// IsValid reports whether the type is known.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}

// MediaTypeFromMime maps an upload's MIME type onto PHOTO or VIDEO.
func MediaTypeFromMime(mimeType string) MediaType {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/") {
		return MediaTypeVideo
	}
	return MediaTypePhoto
}
