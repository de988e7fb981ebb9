package galleries

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
)

type galleryRepository interface {
	Create(ctx context.Context, gallery *models.Gallery) error
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Gallery, error)
	Save(ctx context.Context, gallery *models.Gallery) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountMedia(ctx context.Context, galleryID uuid.UUID) (int64, error)
	CountMediaBatch(ctx context.Context, galleryIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// mediaPurger removes a gallery's stored objects ahead of row deletion.
type mediaPurger interface {
	PurgeGallery(ctx context.Context, galleryID uuid.UUID) error
}

// Service exposes owner-scoped gallery management. Ownership misses are
// reported as NOT_FOUND so foreign gallery ids stay unprobeable.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateGalleryInput) (GalleryDTO, error)
	Get(ctx context.Context, ownerID, galleryID uuid.UUID) (GalleryDTO, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]GalleryDTO, error)
	Update(ctx context.Context, ownerID, galleryID uuid.UUID, input UpdateGalleryInput) (GalleryDTO, error)
	Delete(ctx context.Context, ownerID, galleryID uuid.UUID) error
}

type service struct {
	repo  galleryRepository
	media mediaPurger
}

// NewService builds the gallery service with the required dependencies.
func NewService(repo galleryRepository, media mediaPurger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery repo is required")
	}
	if media == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media purger is required")
	}
	return &service{repo: repo, media: media}, nil
}

// Create inserts a DRAFT gallery. Slug collisions surface as CONFLICT.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateGalleryInput) (GalleryDTO, error) {
	if ownerID == uuid.Nil {
		return GalleryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	slug := strings.TrimSpace(input.Slug)
	title := strings.TrimSpace(input.Title)
	if slug == "" || title == "" {
		return GalleryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "slug and title are required")
	}

	gallery := &models.Gallery{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Slug:           slug,
		Title:          title,
		Description:    input.Description,
		EventDate:      input.EventDate,
		Status:         enums.GalleryStatusDraft,
		AccessCode:     input.AccessCode,
		ExpiresAt:      input.ExpiresAt,
		AllowDownload:  true,
		AllowFavorites: true,
		AllowComments:  true,
		AllowSharing:   true,
	}
	if err := s.repo.Create(ctx, gallery); err != nil {
		if db.IsUniqueViolation(err, "galleries_slug_key") {
			return GalleryDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return GalleryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gallery")
	}

	return toDTO(gallery, 0), nil
}

// Get loads one gallery for its owner.
func (s *service) Get(ctx context.Context, ownerID, galleryID uuid.UUID) (GalleryDTO, error) {
	gallery, err := s.loadOwned(ctx, ownerID, galleryID)
	if err != nil {
		return GalleryDTO{}, err
	}
	count, err := s.repo.CountMedia(ctx, gallery.ID)
	if err != nil {
		return GalleryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media")
	}
	return toDTO(gallery, count), nil
}

// List returns the owner's galleries with media counts.
func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]GalleryDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list galleries")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.repo.CountMediaBatch(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media")
	}

	dtos := make([]GalleryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toDTO(&rows[i], counts[rows[i].ID]))
	}
	return dtos, nil
}

// Update applies the provided partial changes.
func (s *service) Update(ctx context.Context, ownerID, galleryID uuid.UUID, input UpdateGalleryInput) (GalleryDTO, error) {
	gallery, err := s.loadOwned(ctx, ownerID, galleryID)
	if err != nil {
		return GalleryDTO{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return GalleryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		gallery.Title = title
	}
	if input.Description != nil {
		gallery.Description = input.Description
	}
	if input.EventDate != nil {
		gallery.EventDate = input.EventDate
	}
	if input.Status != nil {
		status, err := enums.ParseGalleryStatus(*input.Status)
		if err != nil {
			return GalleryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid gallery status")
		}
		gallery.Status = status
	}
	if input.ClearAccessCode {
		gallery.AccessCode = nil
	} else if input.AccessCode != nil {
		gallery.AccessCode = input.AccessCode
	}
	if input.ClearExpiresAt {
		gallery.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		gallery.ExpiresAt = input.ExpiresAt
	}
	if input.AllowDownload != nil {
		gallery.AllowDownload = *input.AllowDownload
	}
	if input.AllowFavorites != nil {
		gallery.AllowFavorites = *input.AllowFavorites
	}
	if input.AllowComments != nil {
		gallery.AllowComments = *input.AllowComments
	}
	if input.AllowSharing != nil {
		gallery.AllowSharing = *input.AllowSharing
	}

	if err := s.repo.Save(ctx, gallery); err != nil {
		return GalleryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gallery")
	}

	count, err := s.repo.CountMedia(ctx, gallery.ID)
	if err != nil {
		return GalleryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media")
	}
	return toDTO(gallery, count), nil
}

// Delete purges stored media objects best-effort, then removes the gallery
// row; the media rows cascade with it.
func (s *service) Delete(ctx context.Context, ownerID, galleryID uuid.UUID) error {
	gallery, err := s.loadOwned(ctx, ownerID, galleryID)
	if err != nil {
		return err
	}
	if err := s.media.PurgeGallery(ctx, gallery.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, gallery.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete gallery")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, galleryID uuid.UUID) (*models.Gallery, error) {
	if ownerID == uuid.Nil || galleryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id and gallery id are required")
	}
	gallery, err := s.repo.FindByIDForOwner(ctx, ownerID, galleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	return gallery, nil
}
