package access

import (
	"context"

	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates access-gate persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an access repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindGalleryBySlug loads a gallery by its public slug.
func (r *Repository) FindGalleryBySlug(ctx context.Context, slug string) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.WithContext(ctx).First(&gallery, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// CreateSession inserts a new guest session row.
func (r *Repository) CreateSession(ctx context.Context, session *models.GuestSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}
