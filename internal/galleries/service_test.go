package galleries

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
)

type fakeGalleryRepo struct {
	galleries map[uuid.UUID]*models.Gallery
	deleted   []uuid.UUID
}

func newFakeGalleryRepo() *fakeGalleryRepo {
	return &fakeGalleryRepo{galleries: map[uuid.UUID]*models.Gallery{}}
}

func (f *fakeGalleryRepo) Create(ctx context.Context, gallery *models.Gallery) error {
	for _, existing := range f.galleries {
		if existing.Slug == gallery.Slug {
			return fmt.Errorf(`duplicate key value violates unique constraint "galleries_slug_key"`)
		}
	}
	f.galleries[gallery.ID] = gallery
	return nil
}

func (f *fakeGalleryRepo) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error) {
	gallery, ok := f.galleries[id]
	if !ok || gallery.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	return gallery, nil
}

func (f *fakeGalleryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Gallery, error) {
	var rows []models.Gallery
	for _, gallery := range f.galleries {
		if gallery.OwnerID == ownerID {
			rows = append(rows, *gallery)
		}
	}
	return rows, nil
}

func (f *fakeGalleryRepo) Save(ctx context.Context, gallery *models.Gallery) error {
	f.galleries[gallery.ID] = gallery
	return nil
}

func (f *fakeGalleryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.galleries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeGalleryRepo) CountMedia(ctx context.Context, galleryID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeGalleryRepo) CountMediaBatch(ctx context.Context, galleryIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return map[uuid.UUID]int64{}, nil
}

type fakePurger struct {
	purged []uuid.UUID
	err    error
}

func (f *fakePurger) PurgeGallery(ctx context.Context, galleryID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.purged = append(f.purged, galleryID)
	return nil
}

func newTestService(t *testing.T, repo *fakeGalleryRepo, purger *fakePurger) Service {
	t.Helper()
	svc, err := NewService(repo, purger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateGalleryDefaults(t *testing.T) {
	t.Parallel()

	repo := newFakeGalleryRepo()
	svc := newTestService(t, repo, &fakePurger{})

	ownerID := uuid.New()
	dto, err := svc.Create(context.Background(), ownerID, CreateGalleryInput{
		Slug:  "smith-wedding",
		Title: "Smith Wedding",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Status != enums.GalleryStatusDraft {
		t.Fatalf("new gallery must start DRAFT, got %s", dto.Status)
	}
	if !dto.AllowDownload || !dto.AllowFavorites || !dto.AllowComments || !dto.AllowSharing {
		t.Fatalf("permission flags must default on: %+v", dto)
	}
	if dto.HasAccessCode {
		t.Fatal("no access code expected")
	}
}

func TestCreateGallerySlugConflict(t *testing.T) {
	t.Parallel()

	repo := newFakeGalleryRepo()
	svc := newTestService(t, repo, &fakePurger{})

	ownerID := uuid.New()
	input := CreateGalleryInput{Slug: "smith-wedding", Title: "Smith Wedding"}
	if _, err := svc.Create(context.Background(), ownerID, input); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := svc.Create(context.Background(), ownerID, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestOwnershipMissMasksAsNotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeGalleryRepo()
	svc := newTestService(t, repo, &fakePurger{})

	owner := uuid.New()
	stranger := uuid.New()
	dto, err := svc.Create(context.Background(), owner, CreateGalleryInput{Slug: "g", Title: "G"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Get(context.Background(), stranger, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for foreign owner, got %v", err)
	}
}

func TestUpdateGalleryPartial(t *testing.T) {
	t.Parallel()

	repo := newFakeGalleryRepo()
	svc := newTestService(t, repo, &fakePurger{})

	ownerID := uuid.New()
	code := "654321"
	dto, err := svc.Create(context.Background(), ownerID, CreateGalleryInput{
		Slug: "g", Title: "G", AccessCode: &code,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	published := "PUBLISHED"
	off := false
	expiry := time.Now().Add(30 * 24 * time.Hour)
	updated, err := svc.Update(context.Background(), ownerID, dto.ID, UpdateGalleryInput{
		Status:        &published,
		AllowDownload: &off,
		ExpiresAt:     &expiry,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != enums.GalleryStatusPublished {
		t.Fatalf("status not updated: %s", updated.Status)
	}
	if updated.AllowDownload {
		t.Fatal("allow_download should be off")
	}
	if !updated.HasAccessCode {
		t.Fatal("access code must survive unrelated updates")
	}
	if updated.ExpiresAt == nil {
		t.Fatal("expiry not set")
	}

	cleared, err := svc.Update(context.Background(), ownerID, dto.ID, UpdateGalleryInput{
		ClearAccessCode: true,
		ClearExpiresAt:  true,
	})
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if cleared.HasAccessCode || cleared.ExpiresAt != nil {
		t.Fatalf("clears not applied: %+v", cleared)
	}
}

func TestUpdateGalleryInvalidStatus(t *testing.T) {
	t.Parallel()

	repo := newFakeGalleryRepo()
	svc := newTestService(t, repo, &fakePurger{})

	ownerID := uuid.New()
	dto, err := svc.Create(context.Background(), ownerID, CreateGalleryInput{Slug: "g", Title: "G"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bogus := "ARCHIVED"
	_, err = svc.Update(context.Background(), ownerID, dto.ID, UpdateGalleryInput{Status: &bogus})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestDeleteGalleryPurgesStorageFirst(t *testing.T) {
	t.Parallel()

	repo := newFakeGalleryRepo()
	purger := &fakePurger{}
	svc := newTestService(t, repo, purger)

	ownerID := uuid.New()
	dto, err := svc.Create(context.Background(), ownerID, CreateGalleryInput{Slug: "g", Title: "G"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), ownerID, dto.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != dto.ID {
		t.Fatalf("expected purge of %s, got %v", dto.ID, purger.purged)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("gallery row not deleted: %v", repo.deleted)
	}
}
