package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a registered end customer who can be granted gallery access.
type Client struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Name         string     `gorm:"type:text;not null"`
	AvatarURL    *string    `gorm:"column:avatar_url;type:text"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// ClientAccess grants a client visibility into a gallery.
type ClientAccess struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID  uuid.UUID `gorm:"column:client_id;type:uuid;not null;index:client_access_client_id_idx;uniqueIndex:client_access_client_gallery_key"`
	GalleryID uuid.UUID `gorm:"column:gallery_id;type:uuid;not null;index:client_access_gallery_id_idx;uniqueIndex:client_access_client_gallery_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
