package galleries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates gallery persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a gallery repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a gallery row.
func (r *Repository) Create(ctx context.Context, gallery *models.Gallery) error {
	return r.db.WithContext(ctx).Create(gallery).Error
}

// FindByID loads a gallery by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.WithContext(ctx).First(&gallery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// FindByIDForOwner loads a gallery only when the owner matches. A miss on
// either condition surfaces as gorm.ErrRecordNotFound.
func (r *Repository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.WithContext(ctx).First(&gallery, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// ListByOwner returns the owner's galleries, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Gallery, error) {
	var rows []models.Gallery
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Save persists the full gallery row.
func (r *Repository) Save(ctx context.Context, gallery *models.Gallery) error {
	return r.db.WithContext(ctx).Save(gallery).Error
}

// Delete removes the gallery row. Media rows go with it via FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Gallery{}, "id = ?", id).Error
}

// CountMedia returns the media row count for a gallery.
func (r *Repository) CountMedia(ctx context.Context, galleryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GalleryMedia{}).
		Where("gallery_id = ?", galleryID).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountMediaBatch returns media counts keyed by gallery id.
func (r *Repository) CountMediaBatch(ctx context.Context, galleryIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(galleryIDs))
	if len(galleryIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		GalleryID uuid.UUID `gorm:"column:gallery_id"`
		Total     int64     `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.GalleryMedia{}).
		Select("gallery_id", "COUNT(*) AS total").
		Where("gallery_id IN ?", galleryIDs).
		Group("gallery_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.GalleryID] = row.Total
	}
	return counts, nil
}
