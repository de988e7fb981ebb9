package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestSession is the ephemeral identity handed out after a correct
// access-code entry. Expiry is fixed at creation; access never extends it.
type GuestSession struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GalleryID   uuid.UUID `gorm:"column:gallery_id;type:uuid;not null;index:guest_sessions_gallery_id_idx"`
	DisplayName *string   `gorm:"column:display_name;type:text"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// IsExpired reports whether the session is past its fixed expiry.
func (s GuestSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
