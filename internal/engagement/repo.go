package engagement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates favorite and comment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an engagement repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindMediaByID loads a media row by primary key.
func (r *Repository) FindMediaByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error) {
	var media models.GalleryMedia
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// FindGalleryByID loads a gallery row by primary key.
func (r *Repository) FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	var gallery models.Gallery
	if err := r.db.WithContext(ctx).First(&gallery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}

// ToggleFavorite flips the favorite state for one identity inside a single
// transaction and reports the resulting state.
func (r *Repository) ToggleFavorite(ctx context.Context, mediaID uuid.UUID, clientID, guestSessionID *uuid.UUID) (bool, error) {
	var favorited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("media_id = ?", mediaID)
		switch {
		case clientID != nil:
			query = query.Where("client_id = ?", *clientID)
		default:
			query = query.Where("guest_session_id = ?", *guestSessionID)
		}

		var existing models.Favorite
		err := query.First(&existing).Error
		switch {
		case err == nil:
			favorited = false
			return tx.Delete(&models.Favorite{}, "id = ?", existing.ID).Error
		case err == gorm.ErrRecordNotFound:
			favorited = true
			return tx.Create(&models.Favorite{
				ID:             uuid.New(),
				MediaID:        mediaID,
				ClientID:       clientID,
				GuestSessionID: guestSessionID,
			}).Error
		default:
			return err
		}
	})
	return favorited, err
}

// CreateComment inserts a comment row.
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindCommentByID loads a comment row by primary key.
func (r *Repository) FindCommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteCommentByID removes a comment row.
func (r *Repository) DeleteCommentByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}
