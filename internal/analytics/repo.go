package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
)

// Repository encapsulates analytics persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repository bound to the provided gorm DB.
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

// FindGalleryForOwner loads a gallery only when the owner matches.
func (r *Repository) FindGalleryForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.WithContext(ctx).First(&gallery, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// InsertEvent appends one analytics row.
func (r *Repository) InsertEvent(ctx context.Context, event *models.GalleryAnalytics) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CountEvents counts analytics rows for a gallery and event name.
func (r *Repository) CountEvents(ctx context.Context, galleryID uuid.UUID, event string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GalleryAnalytics{}).
		Where("gallery_id = ? AND event = ?", galleryID, event).
		Count(&count).
		Error
	return count, err
}

// CountFavorites totals favorites across a gallery's media.
func (r *Repository) CountFavorites(ctx context.Context, galleryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("favorites f").
		Joins("JOIN gallery_media gm ON gm.id = f.media_id").
		Where("gm.gallery_id = ?", galleryID).
		Count(&count).
		Error
	return count, err
}

// CountComments totals comments across a gallery's media.
func (r *Repository) CountComments(ctx context.Context, galleryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("comments cm").
		Joins("JOIN gallery_media gm ON gm.id = cm.media_id").
		Where("gm.gallery_id = ?", galleryID).
		Count(&count).
		Error
	return count, err
}

// CountDownloadsByType groups the download audit log by type.
func (r *Repository) CountDownloadsByType(ctx context.Context, galleryID uuid.UUID) (map[enums.DownloadType]int64, error) {
	var rows []struct {
		Type  enums.DownloadType `gorm:"column:type"`
		Total int64              `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.Download{}).
		Select("type", "COUNT(*) AS total").
		Where("gallery_id = ?", galleryID).
		Group("type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	totals := make(map[enums.DownloadType]int64, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total
	}
	return totals, nil
}

// ViewCountsByDay returns per-day view totals since the cutoff, keyed by
// ISO date. Days are bucketed in UTC so keys line up with the summary
// histogram regardless of the server zone.
func (r *Repository) ViewCountsByDay(ctx context.Context, galleryID uuid.UUID, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Day   time.Time `gorm:"column:day"`
		Total int64     `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.GalleryAnalytics{}).
		Select("DATE_TRUNC('day', created_at AT TIME ZONE 'UTC') AS day", "COUNT(*) AS total").
		Where("gallery_id = ? AND event = ? AND created_at >= ?", galleryID, EventView, since).
		Group("day").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day.UTC().Format("2006-01-02")] = row.Total
	}
	return counts, nil
}
