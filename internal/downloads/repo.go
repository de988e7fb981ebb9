package downloads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates download persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a downloads repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindGalleryByID loads a gallery row by primary key.
func (r *Repository) FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.WithContext(ctx).First(&gallery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// FindMediaByID loads a media row by primary key.
func (r *Repository) FindMediaByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error) {
	var media models.GalleryMedia
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// ListMediaByGallery returns a gallery's media in ascending sort order.
func (r *Repository) ListMediaByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryMedia, error) {
	var rows []models.GalleryMedia
	err := r.db.WithContext(ctx).
		Where("gallery_id = ?", galleryID).
		Order("sort_order ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertDownload appends one audit row.
func (r *Repository) InsertDownload(ctx context.Context, download *models.Download) error {
	return r.db.WithContext(ctx).Create(download).Error
}
