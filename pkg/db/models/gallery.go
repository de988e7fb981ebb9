package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/enums"
)

// Gallery is a named collection of media with its own visibility policy.
// AccessCode gates anonymous guests; ExpiresAt is the gallery's own access
// window and is independent of guest-session TTLs.
type Gallery struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index:galleries_owner_id_idx"`
	Slug           string              `gorm:"type:text;not null;uniqueIndex:galleries_slug_key"`
	Title          string              `gorm:"type:text;not null"`
	Description    *string             `gorm:"type:text"`
	EventDate      *time.Time          `gorm:"column:event_date"`
	Status         enums.GalleryStatus `gorm:"type:text;not null;default:DRAFT"`
	CoverImageURL  *string             `gorm:"column:cover_image_url;type:text"`
	AccessCode     *string             `gorm:"column:access_code;type:text"`
	ExpiresAt      *time.Time          `gorm:"column:expires_at"`
	AllowDownload  bool                `gorm:"column:allow_download;not null;default:true"`
	AllowFavorites bool                `gorm:"column:allow_favorites;not null;default:true"`
	AllowComments  bool                `gorm:"column:allow_comments;not null;default:true"`
	AllowSharing   bool                `gorm:"column:allow_sharing;not null;default:true"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the gallery's own access window has lapsed.
func (g Gallery) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && now.After(*g.ExpiresAt)
}
