package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/imaging"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

type mediaRepository interface {
	CreateWithSortOrder(ctx context.Context, media *models.GalleryMedia) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error)
	ListByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryMedia, error)
	ListFavoritedBy(ctx context.Context, galleryID uuid.UUID, clientID, guestSessionID *uuid.UUID) ([]models.GalleryMedia, error)
	CountEngagement(ctx context.Context, mediaIDs []uuid.UUID) (map[uuid.UUID]EngagementCounts, error)
	ListComments(ctx context.Context, mediaID uuid.UUID) ([]CommentView, error)
	SetSortOrder(ctx context.Context, mediaID uuid.UUID, order int) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type galleryStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error)
	Save(ctx context.Context, gallery *models.Gallery) error
}

type objectStore interface {
	MediaKey(galleryID, filename string) string
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service manages gallery media: uploads, ordering, deletion, and the
// viewer-facing listings.
type Service interface {
	Upload(ctx context.Context, ownerID, galleryID uuid.UUID, input UploadInput) (MediaDTO, error)
	Reorder(ctx context.Context, ownerID, galleryID uuid.UUID, mediaIDs []uuid.UUID) error
	Delete(ctx context.Context, ownerID, mediaID uuid.UUID) error
	DeleteMany(ctx context.Context, ownerID, galleryID uuid.UUID, mediaIDs []uuid.UUID) error
	PurgeGallery(ctx context.Context, galleryID uuid.UUID) error
	SetCover(ctx context.Context, ownerID, mediaID uuid.UUID) error
	List(ctx context.Context, galleryID uuid.UUID, filter ListFilter, viewer *identity.Identity) ([]MediaDTO, error)
	GetByID(ctx context.Context, mediaID uuid.UUID) (MediaDetailDTO, error)
}

type service struct {
	repo      mediaRepository
	galleries galleryStore
	store     objectStore
	cfg       config.MediaConfig
	logg      *logger.Logger
}

// NewService builds the media service with the required dependencies.
func NewService(repo mediaRepository, galleries galleryStore, store objectStore, cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media repo is required")
	}
	if galleries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery store is required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object store is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if cfg.DeleteFanout <= 0 {
		cfg.DeleteFanout = 8
	}
	return &service{
		repo:      repo,
		galleries: galleries,
		store:     store,
		cfg:       cfg,
		logg:      logg,
	}, nil
}

// Upload stores the original object, derives renditions for photos, and
// inserts the media row with the gallery's next sort position. A rendition
// failure degrades to "no thumbnail" and never aborts the upload.
func (s *service) Upload(ctx context.Context, ownerID, galleryID uuid.UUID, input UploadInput) (MediaDTO, error) {
	gallery, err := s.loadOwned(ctx, ownerID, galleryID)
	if err != nil {
		return MediaDTO{}, err
	}

	filename := sanitizeFilename(input.Filename)
	if filename == "" {
		return MediaDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}
	if len(input.Data) == 0 {
		return MediaDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	galleryKey := gallery.ID.String()
	originalKey := s.store.MediaKey(galleryKey, filename)
	originalURL, err := s.store.Upload(ctx, originalKey, bytes.NewReader(input.Data), input.ContentType)
	if err != nil {
		return MediaDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store original")
	}

	media := &models.GalleryMedia{
		ID:          uuid.New(),
		GalleryID:   gallery.ID,
		Filename:    filename,
		OriginalURL: originalURL,
		Type:        enums.MediaTypeFromMime(input.ContentType),
		SizeBytes:   input.Size,
	}
	if media.SizeBytes == 0 {
		media.SizeBytes = int64(len(input.Data))
	}

	if media.Type == enums.MediaTypePhoto && imaging.IsImageMime(input.ContentType) {
		s.attachRenditions(ctx, media, galleryKey, filename, input.Data)
	}

	if err := s.repo.CreateWithSortOrder(ctx, media); err != nil {
		return MediaDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media")
	}

	if gallery.CoverImageURL == nil && media.Type == enums.MediaTypePhoto {
		cover := media.DisplayURL()
		gallery.CoverImageURL = &cover
		if err := s.galleries.Save(ctx, gallery); err != nil {
			s.logg.Warn(s.logg.WithGalleryID(ctx, gallery.ID.String()), "auto cover update failed")
		}
	}

	return toDTO(media, EngagementCounts{}), nil
}

func (s *service) attachRenditions(ctx context.Context, media *models.GalleryMedia, galleryKey, filename string, data []byte) {
	renditions, err := imaging.Generate(data, s.cfg.ThumbMaxPx, s.cfg.MediumMaxPx, s.cfg.JPEGQuality)
	if err != nil {
		s.logg.Warn(ctx, "rendition generation failed, keeping original only")
		return
	}
	media.Width = renditions.Width
	media.Height = renditions.Height

	thumbKey := s.store.MediaKey(galleryKey, "thumb_"+filename)
	if url, err := s.store.Upload(ctx, thumbKey, bytes.NewReader(renditions.Thumb), "image/jpeg"); err != nil {
		s.logg.Warn(ctx, "thumbnail upload failed")
	} else {
		media.ThumbnailURL = &url
	}

	mediumKey := s.store.MediaKey(galleryKey, "medium_"+filename)
	if url, err := s.store.Upload(ctx, mediumKey, bytes.NewReader(renditions.Medium), "image/jpeg"); err != nil {
		s.logg.Warn(ctx, "medium rendition upload failed")
	} else {
		media.MediumURL = &url
	}
}

// Reorder assigns positions by index. The submitted ids must be exactly the
// gallery's full member set.
func (s *service) Reorder(ctx context.Context, ownerID, galleryID uuid.UUID, mediaIDs []uuid.UUID) error {
	gallery, err := s.loadOwned(ctx, ownerID, galleryID)
	if err != nil {
		return err
	}

	existing, err := s.repo.ListByGallery(ctx, gallery.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	if len(mediaIDs) != len(existing) {
		return pkgerrors.New(pkgerrors.CodeValidation, "media ids must cover the whole gallery")
	}
	members := make(map[uuid.UUID]bool, len(existing))
	for _, m := range existing {
		members[m.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(mediaIDs))
	for _, id := range mediaIDs {
		if !members[id] || seen[id] {
			return pkgerrors.New(pkgerrors.CodeValidation, "media ids must cover the whole gallery")
		}
		seen[id] = true
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.DeleteFanout)
	for index, id := range mediaIDs {
		index, id := index, id
		group.Go(func() error {
			return s.repo.SetSortOrder(groupCtx, id, index)
		})
	}
	if err := group.Wait(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reorder media")
	}
	return nil
}

// Delete removes one media item: storage objects best-effort, then the row.
func (s *service) Delete(ctx context.Context, ownerID, mediaID uuid.UUID) error {
	media, err := s.loadOwnedMedia(ctx, ownerID, mediaID)
	if err != nil {
		return err
	}
	s.deleteObjects(ctx, []models.GalleryMedia{*media})
	if err := s.repo.DeleteByIDs(ctx, []uuid.UUID{media.ID}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media")
	}
	return nil
}

// DeleteMany removes the listed gallery members in one pass. Ids outside
// the gallery are ignored.
func (s *service) DeleteMany(ctx context.Context, ownerID, galleryID uuid.UUID, mediaIDs []uuid.UUID) error {
	gallery, err := s.loadOwned(ctx, ownerID, galleryID)
	if err != nil {
		return err
	}
	if len(mediaIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "media ids are required")
	}

	existing, err := s.repo.ListByGallery(ctx, gallery.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}

	wanted := make(map[uuid.UUID]bool, len(mediaIDs))
	for _, id := range mediaIDs {
		wanted[id] = true
	}
	var victims []models.GalleryMedia
	var victimIDs []uuid.UUID
	for _, m := range existing {
		if wanted[m.ID] {
			victims = append(victims, m)
			victimIDs = append(victimIDs, m.ID)
		}
	}
	if len(victims) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}

	s.deleteObjects(ctx, victims)
	if err := s.repo.DeleteByIDs(ctx, victimIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media")
	}
	return nil
}

// PurgeGallery deletes every stored object for a gallery ahead of the
// gallery row's removal. Storage failures are logged, never fatal.
func (s *service) PurgeGallery(ctx context.Context, galleryID uuid.UUID) error {
	rows, err := s.repo.ListByGallery(ctx, galleryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	s.deleteObjects(ctx, rows)
	return nil
}

// SetCover points the gallery cover at this media item.
func (s *service) SetCover(ctx context.Context, ownerID, mediaID uuid.UUID) error {
	media, err := s.loadOwnedMedia(ctx, ownerID, mediaID)
	if err != nil {
		return err
	}
	gallery, err := s.galleries.FindByIDForOwner(ctx, ownerID, media.GalleryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	cover := media.DisplayURL()
	gallery.CoverImageURL = &cover
	if err := s.galleries.Save(ctx, gallery); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save gallery")
	}
	return nil
}

// List returns a viewable gallery's media ascending by sort order with
// engagement counts. filter=favorites narrows to the viewer's favorites
// and requires a resolved identity.
func (s *service) List(ctx context.Context, galleryID uuid.UUID, filter ListFilter, viewer *identity.Identity) ([]MediaDTO, error) {
	if _, err := s.loadViewable(ctx, galleryID); err != nil {
		return nil, err
	}

	var rows []models.GalleryMedia
	var err error
	switch filter {
	case FilterNone:
		rows, err = s.repo.ListByGallery(ctx, galleryID)
	case FilterFavorites:
		if viewer == nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to filter by favorites")
		}
		rows, err = s.repo.ListFavoritedBy(ctx, galleryID, viewer.ClientRef(), viewer.GuestRef())
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown filter")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.repo.CountEngagement(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count engagement")
	}

	dtos := make([]MediaDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toDTO(&rows[i], counts[rows[i].ID]))
	}
	return dtos, nil
}

// GetByID returns one viewable media item with its gallery's permission
// flags and full comment thread.
func (s *service) GetByID(ctx context.Context, mediaID uuid.UUID) (MediaDetailDTO, error) {
	if mediaID == uuid.Nil {
		return MediaDetailDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}
	media, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MediaDetailDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return MediaDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}

	gallery, err := s.loadViewable(ctx, media.GalleryID)
	if err != nil {
		return MediaDetailDTO{}, err
	}

	counts, err := s.repo.CountEngagement(ctx, []uuid.UUID{media.ID})
	if err != nil {
		return MediaDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count engagement")
	}
	comments, err := s.repo.ListComments(ctx, media.ID)
	if err != nil {
		return MediaDetailDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	if comments == nil {
		comments = []CommentView{}
	}

	return MediaDetailDTO{
		MediaDTO: toDTO(media, counts[media.ID]),
		Permissions: GalleryPermissions{
			AllowDownload:  gallery.AllowDownload,
			AllowFavorites: gallery.AllowFavorites,
			AllowComments:  gallery.AllowComments,
			AllowSharing:   gallery.AllowSharing,
		},
		Comments: comments,
	}, nil
}

// deleteObjects fans out best-effort storage deletes for every rendition of
// the given rows. Failures aggregate into one logged warning.
func (s *service) deleteObjects(ctx context.Context, rows []models.GalleryMedia) {
	keys := make([]string, 0, len(rows)*3)
	for _, m := range rows {
		galleryKey := m.GalleryID.String()
		keys = append(keys, s.store.MediaKey(galleryKey, m.Filename))
		if m.ThumbnailURL != nil {
			keys = append(keys, s.store.MediaKey(galleryKey, "thumb_"+m.Filename))
		}
		if m.MediumURL != nil {
			keys = append(keys, s.store.MediaKey(galleryKey, "medium_"+m.Filename))
		}
	}
	if len(keys) == 0 {
		return
	}

	results := make([]error, len(keys))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.DeleteFanout)
	for i, key := range keys {
		i, key := i, key
		group.Go(func() error {
			results[i] = s.store.Delete(groupCtx, key)
			return nil
		})
	}
	_ = group.Wait()

	if err := multierr.Combine(results...); err != nil {
		s.logg.Error(ctx, "storage delete incomplete", err)
	}
}

func (s *service) loadOwned(ctx context.Context, ownerID, galleryID uuid.UUID) (*models.Gallery, error) {
	if ownerID == uuid.Nil || galleryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id and gallery id are required")
	}
	gallery, err := s.galleries.FindByIDForOwner(ctx, ownerID, galleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	return gallery, nil
}

func (s *service) loadOwnedMedia(ctx context.Context, ownerID, mediaID uuid.UUID) (*models.GalleryMedia, error) {
	if ownerID == uuid.Nil || mediaID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id and media id are required")
	}
	media, err := s.repo.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	if _, err := s.galleries.FindByIDForOwner(ctx, ownerID, media.GalleryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	return media, nil
}

func (s *service) loadViewable(ctx context.Context, galleryID uuid.UUID) (*models.Gallery, error) {
	if galleryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery id is required")
	}
	gallery, err := s.galleries.FindByID(ctx, galleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	if !gallery.Status.IsValid() || gallery.Status != enums.GalleryStatusPublished || gallery.IsExpired(nowFunc()) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
	}
	return gallery, nil
}

var nowFunc = time.Now

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
