package media

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

type fakeMediaRepo struct {
	rows     map[uuid.UUID]*models.GalleryMedia
	comments map[uuid.UUID][]CommentView
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{
		rows:     map[uuid.UUID]*models.GalleryMedia{},
		comments: map[uuid.UUID][]CommentView{},
	}
}

func (f *fakeMediaRepo) CreateWithSortOrder(ctx context.Context, media *models.GalleryMedia) error {
	next := 0
	for _, row := range f.rows {
		if row.GalleryID == media.GalleryID && row.SortOrder >= next {
			next = row.SortOrder + 1
		}
	}
	media.SortOrder = next
	f.rows[media.ID] = media
	return nil
}

func (f *fakeMediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GalleryMedia, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeMediaRepo) ListByGallery(ctx context.Context, galleryID uuid.UUID) ([]models.GalleryMedia, error) {
	var rows []models.GalleryMedia
	for _, row := range f.rows {
		if row.GalleryID == galleryID {
			rows = append(rows, *row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SortOrder < rows[j].SortOrder })
	return rows, nil
}

func (f *fakeMediaRepo) ListFavoritedBy(ctx context.Context, galleryID uuid.UUID, clientID, guestSessionID *uuid.UUID) ([]models.GalleryMedia, error) {
	return nil, nil
}

func (f *fakeMediaRepo) CountEngagement(ctx context.Context, mediaIDs []uuid.UUID) (map[uuid.UUID]EngagementCounts, error) {
	return map[uuid.UUID]EngagementCounts{}, nil
}

func (f *fakeMediaRepo) ListComments(ctx context.Context, mediaID uuid.UUID) ([]CommentView, error) {
	return f.comments[mediaID], nil
}

func (f *fakeMediaRepo) SetSortOrder(ctx context.Context, mediaID uuid.UUID, order int) error {
	row, ok := f.rows[mediaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.SortOrder = order
	return nil
}

func (f *fakeMediaRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(f.rows, id)
	}
	return nil
}

type fakeGalleryStore struct {
	galleries map[uuid.UUID]*models.Gallery
	saved     int
}

func newFakeGalleryStore() *fakeGalleryStore {
	return &fakeGalleryStore{galleries: map[uuid.UUID]*models.Gallery{}}
}

func (f *fakeGalleryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	g, ok := f.galleries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (f *fakeGalleryStore) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error) {
	g, ok := f.galleries[id]
	if !ok || g.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (f *fakeGalleryStore) Save(ctx context.Context, gallery *models.Gallery) error {
	f.galleries[gallery.ID] = gallery
	f.saved++
	return nil
}

type fakeObjectStore struct {
	uploads []string
	deleted []string
}

func (f *fakeObjectStore) MediaKey(galleryID, filename string) string {
	return "media/" + galleryID + "/" + filename
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	f.uploads = append(f.uploads, key)
	return "https://cdn.example/" + key, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{ThumbMaxPx: 400, MediumMaxPx: 1600, JPEGQuality: 85, DeleteFanout: 4}
}

func newMediaService(t *testing.T, repo *fakeMediaRepo, galleries *fakeGalleryStore, store *fakeObjectStore) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "media-test", Output: io.Discard})
	svc, err := NewService(repo, galleries, store, testMediaConfig(), logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func seedGallery(galleries *fakeGalleryStore, ownerID uuid.UUID, status enums.GalleryStatus) *models.Gallery {
	gallery := &models.Gallery{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Slug:           "g-" + uuid.NewString()[:8],
		Title:          "Test Gallery",
		Status:         status,
		AllowDownload:  true,
		AllowFavorites: true,
		AllowComments:  true,
		AllowSharing:   true,
	}
	galleries.galleries[gallery.ID] = gallery
	return gallery
}

func TestUploadPhotoCreatesRenditionsAndCover(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	store := &fakeObjectStore{}
	svc := newMediaService(t, repo, galleries, store)

	ownerID := uuid.New()
	gallery := seedGallery(galleries, ownerID, enums.GalleryStatusDraft)

	dto, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
		Filename:    "first.jpg",
		ContentType: "image/jpeg",
		Data:        jpegBytes(t, 800, 600),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if dto.Type != enums.MediaTypePhoto {
		t.Fatalf("expected PHOTO, got %s", dto.Type)
	}
	if dto.Width != 800 || dto.Height != 600 {
		t.Fatalf("dimensions not recorded: %dx%d", dto.Width, dto.Height)
	}
	if dto.ThumbnailURL == nil || dto.MediumURL == nil {
		t.Fatalf("renditions missing: %+v", dto)
	}
	if len(store.uploads) != 3 {
		t.Fatalf("expected original+thumb+medium uploads, got %v", store.uploads)
	}
	if gallery.CoverImageURL == nil || *gallery.CoverImageURL != *dto.ThumbnailURL {
		t.Fatalf("first photo must become cover via thumbnail, got %v", gallery.CoverImageURL)
	}
}

func TestUploadBrokenImageDegradesToOriginal(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	store := &fakeObjectStore{}
	svc := newMediaService(t, repo, galleries, store)

	ownerID := uuid.New()
	gallery := seedGallery(galleries, ownerID, enums.GalleryStatusDraft)

	dto, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
		Filename:    "broken.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("not a jpeg"),
	})
	if err != nil {
		t.Fatalf("upload must survive rendition failure: %v", err)
	}
	if dto.ThumbnailURL != nil || dto.MediumURL != nil {
		t.Fatalf("no renditions expected: %+v", dto)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected only the original upload, got %v", store.uploads)
	}
}

func TestUploadSequenceAssignsContiguousSortOrders(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	store := &fakeObjectStore{}
	svc := newMediaService(t, repo, galleries, store)

	ownerID := uuid.New()
	gallery := seedGallery(galleries, ownerID, enums.GalleryStatusDraft)

	for i, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		dto, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
			Filename:    name,
			ContentType: "video/mp4",
			Data:        []byte("frames"),
		})
		if err != nil {
			t.Fatalf("Upload %s: %v", name, err)
		}
		if dto.SortOrder != i {
			t.Fatalf("expected sort order %d for %s, got %d", i, name, dto.SortOrder)
		}
		if dto.Type != enums.MediaTypeVideo {
			t.Fatalf("expected VIDEO for %s", name)
		}
	}
}

func TestUploadForeignGalleryMasksAsNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	svc := newMediaService(t, repo, galleries, &fakeObjectStore{})

	gallery := seedGallery(galleries, uuid.New(), enums.GalleryStatusDraft)

	_, err := svc.Upload(context.Background(), uuid.New(), gallery.ID, UploadInput{
		Filename:    "x.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("data"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestReorderRequiresFullMemberSet(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	svc := newMediaService(t, repo, galleries, &fakeObjectStore{})

	ownerID := uuid.New()
	gallery := seedGallery(galleries, ownerID, enums.GalleryStatusDraft)

	var ids []uuid.UUID
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		dto, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
			Filename: name, ContentType: "video/mp4", Data: []byte("x"),
		})
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		ids = append(ids, dto.ID)
	}

	err := svc.Reorder(context.Background(), ownerID, gallery.ID, ids[:2])
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("partial set must fail validation, got %v", err)
	}

	err = svc.Reorder(context.Background(), ownerID, gallery.ID, []uuid.UUID{ids[0], ids[1], uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("foreign id must fail validation, got %v", err)
	}

	reversed := []uuid.UUID{ids[2], ids[1], ids[0]}
	if err := svc.Reorder(context.Background(), ownerID, gallery.ID, reversed); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	for index, id := range reversed {
		if repo.rows[id].SortOrder != index {
			t.Fatalf("media %s has order %d, want %d", id, repo.rows[id].SortOrder, index)
		}
	}
}

func TestDeleteManyRemovesStorageObjects(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	store := &fakeObjectStore{}
	svc := newMediaService(t, repo, galleries, store)

	ownerID := uuid.New()
	gallery := seedGallery(galleries, ownerID, enums.GalleryStatusDraft)

	first, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
		Filename: "a.jpg", ContentType: "image/jpeg", Data: jpegBytes(t, 100, 100),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	second, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
		Filename: "b.mp4", ContentType: "video/mp4", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	store.deleted = nil
	err = svc.DeleteMany(context.Background(), ownerID, gallery.ID, []uuid.UUID{first.ID, second.ID, uuid.New()})
	if err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("rows not deleted: %d remain", len(repo.rows))
	}
	// a.jpg has three objects (original, thumb, medium); b.mp4 only one.
	if len(store.deleted) != 4 {
		t.Fatalf("expected 4 storage deletes, got %v", store.deleted)
	}
}

func TestListFavoritesRequiresIdentity(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	svc := newMediaService(t, repo, galleries, &fakeObjectStore{})

	gallery := seedGallery(galleries, uuid.New(), enums.GalleryStatusPublished)

	_, err := svc.List(context.Background(), gallery.ID, FilterFavorites, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}

	viewer := identity.Client(uuid.New(), "Ada")
	if _, err := svc.List(context.Background(), gallery.ID, FilterFavorites, &viewer); err != nil {
		t.Fatalf("List with identity: %v", err)
	}
}

func TestViewerAccessMasksDraftGalleries(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	svc := newMediaService(t, repo, galleries, &fakeObjectStore{})

	gallery := seedGallery(galleries, uuid.New(), enums.GalleryStatusDraft)

	_, err := svc.List(context.Background(), gallery.ID, FilterNone, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("draft gallery must read as missing, got %v", err)
	}
}

func TestGetByIDIncludesPermissionsAndComments(t *testing.T) {
	t.Parallel()

	repo := newFakeMediaRepo()
	galleries := newFakeGalleryStore()
	svc := newMediaService(t, repo, galleries, &fakeObjectStore{})

	ownerID := uuid.New()
	gallery := seedGallery(galleries, ownerID, enums.GalleryStatusPublished)
	gallery.AllowDownload = false

	dto, err := svc.Upload(context.Background(), ownerID, gallery.ID, UploadInput{
		Filename: "a.mp4", ContentType: "video/mp4", Data: []byte("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	repo.comments[dto.ID] = []CommentView{{ID: uuid.New(), Content: "lovely", AuthorName: "Ada"}}

	detail, err := svc.GetByID(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if detail.Permissions.AllowDownload {
		t.Fatal("permissions should mirror the gallery flags")
	}
	if len(detail.Comments) != 1 || detail.Comments[0].AuthorName != "Ada" {
		t.Fatalf("unexpected comments %+v", detail.Comments)
	}
}
