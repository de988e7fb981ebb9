package engagement

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
)

// MaxCommentLength caps comment content in characters.
const MaxCommentLength = 500

// CommentDTO is the response shape for a freshly added comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	MediaID    uuid.UUID `json:"media_id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type engagementRepository interface {
	FindMediaByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error)
	FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	ToggleFavorite(ctx context.Context, mediaID uuid.UUID, clientID, guestSessionID *uuid.UUID) (bool, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	FindCommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	DeleteCommentByID(ctx context.Context, id uuid.UUID) error
}

// Service exposes viewer engagement: favorites and comments.
type Service interface {
	ToggleFavorite(ctx context.Context, mediaID uuid.UUID, viewer *identity.Identity) (bool, error)
	AddComment(ctx context.Context, mediaID uuid.UUID, content string, viewer *identity.Identity) (CommentDTO, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID, viewer *identity.Identity) error
}

type service struct {
	repo engagementRepository
	now  func() time.Time
}

// NewService builds the engagement service with the required dependencies.
func NewService(repo engagementRepository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "engagement repo is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ToggleFavorite flips the viewer's favorite on a media item and returns
// the new state. Two calls in a row leave no net row behind.
func (s *service) ToggleFavorite(ctx context.Context, mediaID uuid.UUID, viewer *identity.Identity) (bool, error) {
	if viewer == nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to favorite media")
	}
	media, gallery, err := s.loadViewableMedia(ctx, mediaID)
	if err != nil {
		return false, err
	}
	if !gallery.AllowFavorites {
		return false, pkgerrors.New(pkgerrors.CodeForbidden, "favorites are disabled for this gallery")
	}

	favorited, err := s.repo.ToggleFavorite(ctx, media.ID, viewer.ClientRef(), viewer.GuestRef())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle favorite")
	}
	return favorited, nil
}

// AddComment validates length before any write and returns the stored
// comment with the viewer's display name.
func (s *service) AddComment(ctx context.Context, mediaID uuid.UUID, content string, viewer *identity.Identity) (CommentDTO, error) {
	if viewer == nil {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to comment")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "comment exceeds 500 characters")
	}

	media, gallery, err := s.loadViewableMedia(ctx, mediaID)
	if err != nil {
		return CommentDTO{}, err
	}
	if !gallery.AllowComments {
		return CommentDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "comments are disabled for this gallery")
	}

	comment := &models.Comment{
		ID:             uuid.New(),
		MediaID:        media.ID,
		Content:        content,
		ClientID:       viewer.ClientRef(),
		GuestSessionID: viewer.GuestRef(),
		CreatedAt:      s.now(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return CommentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}

	return CommentDTO{
		ID:         comment.ID,
		MediaID:    comment.MediaID,
		Content:    comment.Content,
		AuthorName: viewer.DisplayName,
		CreatedAt:  comment.CreatedAt,
	}, nil
}

// DeleteComment removes the viewer's own comment. Anyone else gets
// FORBIDDEN regardless of what they can see.
func (s *service) DeleteComment(ctx context.Context, commentID uuid.UUID, viewer *identity.Identity) error {
	if viewer == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to manage comments")
	}
	if commentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment id is required")
	}

	comment, err := s.repo.FindCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comment")
	}
	if !viewer.Matches(comment.ClientID, comment.GuestSessionID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can delete a comment")
	}

	if err := s.repo.DeleteCommentByID(ctx, comment.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}
	return nil
}

func (s *service) loadViewableMedia(ctx context.Context, mediaID uuid.UUID) (*models.GalleryMedia, *models.Gallery, error) {
	if mediaID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}
	media, err := s.repo.FindMediaByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	gallery, err := s.repo.FindGalleryByID(ctx, media.GalleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	if gallery.Status != enums.GalleryStatusPublished || gallery.IsExpired(s.now()) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}
	return media, gallery, nil
}
