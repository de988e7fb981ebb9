package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates gallery-media persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithSortOrder inserts a media row with the next sort_order for its
// gallery. The gallery row is locked FOR UPDATE so concurrent uploads get
// distinct, gap-free positions.
func (r *Repository) CreateWithSortOrder(ctx context.Context, media *models.GalleryMedia) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gallery models.Gallery
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&gallery, "id = ?", media.GalleryID).Error; err != nil {
			return err
		}

		var next int
		if err := tx.Model(&models.GalleryMedia{}).
			Where("gallery_id = ?", media.GalleryID).
			Select("COALESCE(MAX(sort_order), -1) + 1").
			Scan(&next).Error; err != nil {
			return err
		}

		media.SortOrder = next
		return tx.Create(media).Error
	})
}

// FindByID loads a media row by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error) {
	var media models.GalleryMedia
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// ListByGallery returns a gallery's media in ascending sort order.
func (r *Repository) ListByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryMedia, error) {
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

// ListFavoritedBy returns the gallery media the given actor has favorited,
// still in ascending sort order. Exactly one of clientID/guestSessionID is
// set.
func (r *Repository) ListFavoritedBy(ctx context.Context, galleryID uuid.UUID, clientID, guestSessionID *uuid.UUID) ([]models.GalleryMedia, error) {
	query := r.db.WithContext(ctx).
		Table("gallery_media gm").
		Select("gm.*").
		Joins("JOIN favorites f ON f.media_id = gm.id").
		Where("gm.gallery_id = ?", galleryID)

	switch {
	case clientID != nil:
		query = query.Where("f.client_id = ?", *clientID)
	case guestSessionID != nil:
		query = query.Where("f.guest_session_id = ?", *guestSessionID)
	default:
		return []models.GalleryMedia{}, nil
	}

	var rows []models.GalleryMedia
	if err := query.Order("gm.sort_order ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountEngagement aggregates favorite and comment totals per media id.
func (r *Repository) CountEngagement(ctx context.Context, mediaIDs []uuid.UUID) (map[uuid.UUID]EngagementCounts, error) {
	counts := make(map[uuid.UUID]EngagementCounts, len(mediaIDs))
	if len(mediaIDs) == 0 {
		return counts, nil
	}

	type row struct {
		MediaID uuid.UUID `gorm:"column:media_id"`
		Total   int64     `gorm:"column:total"`
	}

	var favorites []row
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Select("media_id", "COUNT(*) AS total").
		Where("media_id IN ?", mediaIDs).
		Group("media_id").
		Scan(&favorites).
		Error
	if err != nil {
		return nil, err
	}
	for _, f := range favorites {
		entry := counts[f.MediaID]
		entry.Favorites = f.Total
		counts[f.MediaID] = entry
	}

	var comments []row
	err = r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("media_id", "COUNT(*) AS total").
		Where("media_id IN ?", mediaIDs).
		Group("media_id").
		Scan(&comments).
		Error
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		entry := counts[c.MediaID]
		entry.Comments = c.Total
		counts[c.MediaID] = entry
	}

	return counts, nil
}

// ListComments returns a media item's comment thread oldest-first with
// author names resolved from clients and guest sessions.
func (r *Repository) ListComments(ctx context.Context, mediaID uuid.UUID) ([]CommentView, error) {
	var rows []CommentView
	err := r.db.WithContext(ctx).
		Table("comments cm").
		Select("cm.id", "cm.content", "COALESCE(c.name, gs.display_name, 'Guest') AS author_name", "cm.created_at").
		Joins("LEFT JOIN clients c ON c.id = cm.client_id").
		Joins("LEFT JOIN guest_sessions gs ON gs.id = cm.guest_session_id").
		Where("cm.media_id = ?", mediaID).
		Order("cm.created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetSortOrder updates one media row's position.
func (r *Repository) SetSortOrder(ctx context.Context, mediaID uuid.UUID, order int) error {
	return r.db.WithContext(ctx).
		Model(&models.GalleryMedia{}).
		Where("id = ?", mediaID).
		Update("sort_order", order).
		Error
}

// DeleteByIDs removes media rows by primary key.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&models.GalleryMedia{}, "id IN ?", ids).Error
}
