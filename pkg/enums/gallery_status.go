package enums

import "fmt"

// GalleryStatus describes the publication state of a gallery.
type GalleryStatus string

const (
	GalleryStatusDraft     GalleryStatus = "DRAFT"
	GalleryStatusPublished GalleryStatus = "PUBLISHED"
)

var validGalleryStatuses = []GalleryStatus{
	GalleryStatusDraft,
	GalleryStatusPublished,
}

// String returns the literal string for the status.
func (g GalleryStatus) String() string {
	return string(g)
}

// IsValid reports whether the status is known.
func (g GalleryStatus) IsValid() bool {
	for _, candidate := range validGalleryStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGalleryStatus converts raw input into a GalleryStatus.
func ParseGalleryStatus(value string) (GalleryStatus, error) {
	for _, candidate := range validGalleryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gallery status %q", value)
}
