package downloads

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
)

// Archive is a finished in-memory ZIP plus its download filename.
type Archive struct {
	Data     []byte
	Filename string
}

type downloadRepository interface {
	FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	FindMediaByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error)
	ListMediaByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryMedia, error)
	InsertDownload(ctx context.Context, download *models.Download) error
}

type objectFetcher interface {
	MediaKey(galleryID, filename string) string
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// Service builds batch archives and single-file downloads, recording one
// audit row per call.
type Service interface {
	BuildZip(ctx context.Context, galleryID uuid.UUID, mediaIDs []uuid.UUID, viewer *identity.Identity) (Archive, error)
	Single(ctx context.Context, mediaID uuid.UUID, viewer *identity.Identity) (string, error)
}

type service struct {
	repo  downloadRepository
	store objectFetcher
	now   func() time.Time
}

// NewService builds the downloads service with the required dependencies.
func NewService(repo downloadRepository, store objectFetcher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "downloads repo is required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object store is required")
	}
	return &service{repo: repo, store: store, now: time.Now}, nil
}

// BuildZip streams the selected originals into an in-memory archive. An
// empty selection means the whole gallery (type ALL); a subset is
// intersected with the gallery's media (type SELECTION) and must not end
// up empty.
func (s *service) BuildZip(ctx context.Context, galleryID uuid.UUID, mediaIDs []uuid.UUID, viewer *identity.Identity) (Archive, error) {
	if viewer == nil {
		return Archive{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to download")
	}
	gallery, err := s.loadDownloadable(ctx, galleryID)
	if err != nil {
		return Archive{}, err
	}

	rows, err := s.repo.ListMediaByGallery(ctx, gallery.ID)
	if err != nil {
		return Archive{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}

	downloadType := enums.DownloadTypeAll
	selection := rows
	if len(mediaIDs) > 0 {
		downloadType = enums.DownloadTypeSelection
		wanted := make(map[uuid.UUID]bool, len(mediaIDs))
		for _, id := range mediaIDs {
			wanted[id] = true
		}
		selection = selection[:0:0]
		for _, row := range rows {
			if wanted[row.ID] {
				selection = append(selection, row)
			}
		}
	}
	if len(selection) == 0 {
		return Archive{}, pkgerrors.New(pkgerrors.CodeNotFound, "no media to download")
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	used := map[string]int{}
	for _, row := range selection {
		entryName := dedupedName(used, row.Filename)
		entry, err := writer.Create(entryName)
		if err != nil {
			return Archive{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create archive entry")
		}

		key := s.store.MediaKey(row.GalleryID.String(), row.Filename)
		object, err := s.store.Fetch(ctx, key)
		if err != nil {
			return Archive{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch original")
		}
		_, copyErr := io.Copy(entry, object)
		object.Close()
		if copyErr != nil {
			return Archive{}, pkgerrors.Wrap(pkgerrors.CodeDependency, copyErr, "stream original")
		}
	}
	if err := writer.Close(); err != nil {
		return Archive{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize archive")
	}

	download := &models.Download{
		ID:             uuid.New(),
		Type:           downloadType,
		GalleryID:      gallery.ID,
		ClientID:       viewer.ClientRef(),
		GuestSessionID: viewer.GuestRef(),
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertDownload(ctx, download); err != nil {
		return Archive{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record download")
	}

	return Archive{
		Data:     buf.Bytes(),
		Filename: archiveFilename(gallery.Title),
	}, nil
}

// Single records a SINGLE download and returns the original URL for the
// caller to redirect to.
func (s *service) Single(ctx context.Context, mediaID uuid.UUID, viewer *identity.Identity) (string, error) {
	if viewer == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to download")
	}
	if mediaID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}

	media, err := s.repo.FindMediaByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	if _, err := s.loadDownloadable(ctx, media.GalleryID); err != nil {
		return "", err
	}

	mediaRef := media.ID
	download := &models.Download{
		ID:             uuid.New(),
		Type:           enums.DownloadTypeSingle,
		GalleryID:      media.GalleryID,
		MediaID:        &mediaRef,
		ClientID:       viewer.ClientRef(),
		GuestSessionID: viewer.GuestRef(),
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertDownload(ctx, download); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record download")
	}

	return media.OriginalURL, nil
}

func (s *service) loadDownloadable(ctx context.Context, galleryID uuid.UUID) (*models.Gallery, error) {
	if galleryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery id is required")
	}
	gallery, err := s.repo.FindGalleryByID(ctx, galleryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	if gallery.Status != enums.GalleryStatusPublished || gallery.IsExpired(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "gallery is not available for download")
	}
	if !gallery.AllowDownload {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "downloads are disabled for this gallery")
	}
	return gallery, nil
}

// dedupedName keeps stored filenames as entry names, suffixing repeats
// with " (n)" ahead of the extension.
func dedupedName(used map[string]int, filename string) string {
	count := used[filename]
	used[filename] = count + 1
	if count == 0 {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s (%d)%s", base, count, ext)
}

// archiveFilename strips the gallery title down to alphanumerics.
func archiveFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "gallery"
	}
	return name + "_photos.zip"
}
