package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/enums"
)

// Favorite marks a media item as liked by exactly one identity: a client
// or a guest session, never both. Partial unique indexes enforce at most
// one row per (media, identity) pair.
type Favorite struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MediaID        uuid.UUID  `gorm:"column:media_id;type:uuid;not null;index:favorites_media_id_idx"`
	ClientID       *uuid.UUID `gorm:"column:client_id;type:uuid;index:favorites_media_client_key,unique,where:client_id IS NOT NULL"`
	GuestSessionID *uuid.UUID `gorm:"column:guest_session_id;type:uuid;index:favorites_media_guest_key,unique,where:guest_session_id IS NOT NULL"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Comment is an identity-authored note on a media item, 1..500 characters.
type Comment struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MediaID        uuid.UUID  `gorm:"column:media_id;type:uuid;not null;index:comments_media_id_idx"`
	Content        string     `gorm:"type:text;not null"`
	ClientID       *uuid.UUID `gorm:"column:client_id;type:uuid"`
	GuestSessionID *uuid.UUID `gorm:"column:guest_session_id;type:uuid"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Download is an append-only audit record: one row per download call, not
// per file.
type Download struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type           enums.DownloadType `gorm:"type:text;not null"`
	GalleryID      uuid.UUID          `gorm:"column:gallery_id;type:uuid;not null;index:downloads_gallery_id_idx"`
	MediaID        *uuid.UUID         `gorm:"column:media_id;type:uuid"`
	ClientID       *uuid.UUID         `gorm:"column:client_id;type:uuid"`
	GuestSessionID *uuid.UUID         `gorm:"column:guest_session_id;type:uuid"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// GalleryAnalytics is the append-only event log behind the owner dashboard.
type GalleryAnalytics struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GalleryID uuid.UUID       `gorm:"column:gallery_id;type:uuid;not null;index:gallery_analytics_gallery_id_idx"`
	Event     string          `gorm:"type:text;not null"`
	Metadata  json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime;index:gallery_analytics_created_at_idx"`
}

func (GalleryAnalytics) TableName() string { return "gallery_analytics" }
