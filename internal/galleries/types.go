package galleries

import (
	"time"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
)

// CreateGalleryInput is the admin payload for a new gallery.
type CreateGalleryInput struct {
	Slug        string     `json:"slug" validate:"required,min=1,max=120"`
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	AccessCode  *string    `json:"access_code,omitempty" validate:"omitempty,min=4,max=64"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateGalleryInput carries partial gallery updates. Nil fields are left
// untouched; ClearAccessCode and ClearExpiresAt drop the stored values.
type UpdateGalleryInput struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	EventDate       *time.Time `json:"event_date,omitempty"`
	Status          *string    `json:"status,omitempty"`
	AccessCode      *string    `json:"access_code,omitempty" validate:"omitempty,min=4,max=64"`
	ClearAccessCode bool       `json:"clear_access_code,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	ClearExpiresAt  bool       `json:"clear_expires_at,omitempty"`
	AllowDownload   *bool      `json:"allow_download,omitempty"`
	AllowFavorites  *bool      `json:"allow_favorites,omitempty"`
	AllowComments   *bool      `json:"allow_comments,omitempty"`
	AllowSharing    *bool      `json:"allow_sharing,omitempty"`
}

// GalleryDTO is the admin view of a gallery.
type GalleryDTO struct {
	ID             uuid.UUID           `json:"id"`
	Slug           string              `json:"slug"`
	Title          string              `json:"title"`
	Description    *string             `json:"description,omitempty"`
	EventDate      *time.Time          `json:"event_date,omitempty"`
	Status         enums.GalleryStatus `json:"status"`
	CoverImageURL  *string             `json:"cover_image_url,omitempty"`
	HasAccessCode  bool                `json:"has_access_code"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`
	AllowDownload  bool                `json:"allow_download"`
	AllowFavorites bool                `json:"allow_favorites"`
	AllowComments  bool                `json:"allow_comments"`
	AllowSharing   bool                `json:"allow_sharing"`
	MediaCount     int64               `json:"media_count"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func toDTO(gallery *models.Gallery, mediaCount int64) GalleryDTO {
	return GalleryDTO{
		ID:             gallery.ID,
		Slug:           gallery.Slug,
		Title:          gallery.Title,
		Description:    gallery.Description,
		EventDate:      gallery.EventDate,
		Status:         gallery.Status,
		CoverImageURL:  gallery.CoverImageURL,
		HasAccessCode:  gallery.AccessCode != nil && *gallery.AccessCode != "",
		ExpiresAt:      gallery.ExpiresAt,
		AllowDownload:  gallery.AllowDownload,
		AllowFavorites: gallery.AllowFavorites,
		AllowComments:  gallery.AllowComments,
		AllowSharing:   gallery.AllowSharing,
		MediaCount:     mediaCount,
		CreatedAt:      gallery.CreatedAt,
		UpdatedAt:      gallery.UpdatedAt,
	}
}
