package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/enums"
)

// GalleryMedia is one uploaded object inside a gallery. SortOrder defines
// the display order and is unique per gallery for a race-free sequence of
// uploads.
type GalleryMedia struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GalleryID       uuid.UUID       `gorm:"column:gallery_id;type:uuid;not null;index:gallery_media_gallery_id_idx"`
	Filename        string          `gorm:"type:text;not null"`
	OriginalURL     string          `gorm:"column:original_url;type:text;not null"`
	ThumbnailURL    *string         `gorm:"column:thumbnail_url;type:text"`
	MediumURL       *string         `gorm:"column:medium_url;type:text"`
	Type            enums.MediaType `gorm:"type:text;not null;default:PHOTO"`
	Width           int             `gorm:"not null;default:0"`
	Height          int             `gorm:"not null;default:0"`
	SizeBytes       int64           `gorm:"column:size_bytes;not null;default:0"`
	DurationSeconds float64         `gorm:"column:duration_seconds;not null;default:0"`
	SortOrder       int             `gorm:"column:sort_order;not null;default:0"`
	Metadata        json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// DisplayURL prefers the thumbnail and falls back to the original, the rule
// used when promoting a media item to gallery cover.
func (m GalleryMedia) DisplayURL() string {
	if m.ThumbnailURL != nil && *m.ThumbnailURL != "" {
		return *m.ThumbnailURL
	}
	return m.OriginalURL
}
