package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/api/middleware"
	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/internal/media"
	"github.com/silvergrain/studio-backend/pkg/config"
)

type stubMediaService struct {
	uploaded  []media.UploadInput
	ownerID   uuid.UUID
	galleryID uuid.UUID
}

func (s *stubMediaService) Upload(_ context.Context, ownerID, galleryID uuid.UUID, input media.UploadInput) (media.MediaDTO, error) {
	s.ownerID = ownerID
	s.galleryID = galleryID
	s.uploaded = append(s.uploaded, input)
	return media.MediaDTO{ID: uuid.New(), Filename: input.Filename}, nil
}

func (s *stubMediaService) Reorder(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) error {
	return nil
}

func (s *stubMediaService) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s *stubMediaService) DeleteMany(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) error {
	return nil
}

func (s *stubMediaService) PurgeGallery(context.Context, uuid.UUID) error        { return nil }
func (s *stubMediaService) SetCover(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s *stubMediaService) List(context.Context, uuid.UUID, media.ListFilter, *identity.Identity) ([]media.MediaDTO, error) {
	return nil, nil
}

func (s *stubMediaService) GetByID(context.Context, uuid.UUID) (media.MediaDetailDTO, error) {
	return media.MediaDetailDTO{}, nil
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func uploadRequest(t *testing.T, owner, gallery uuid.UUID, body *bytes.Buffer, contentType string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("galleryId", gallery.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithOwnerID(ctx, owner.String())
	return req.WithContext(ctx)
}

func TestMediaUploadPlumbsFile(t *testing.T) {
	svc := &stubMediaService{}
	handler := MediaUpload(svc, config.MediaConfig{MaxUploadMB: 10}, nil)

	owner := uuid.New()
	gallery := uuid.New()
	payload := []byte("fake image bytes")
	body, contentType := multipartBody(t, "file", "wedding_001.jpg", payload)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, uploadRequest(t, owner, gallery, body, contentType))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(svc.uploaded))
	}
	got := svc.uploaded[0]
	if got.Filename != "wedding_001.jpg" {
		t.Fatalf("unexpected filename %q", got.Filename)
	}
	if got.Size != int64(len(payload)) || !bytes.Equal(got.Data, payload) {
		t.Fatal("upload payload not plumbed through")
	}
	if svc.ownerID != owner || svc.galleryID != gallery {
		t.Fatal("owner or gallery id not plumbed through")
	}
}

func TestMediaUploadRejectsMissingFile(t *testing.T) {
	svc := &stubMediaService{}
	handler := MediaUpload(svc, config.MediaConfig{MaxUploadMB: 10}, nil)

	body, contentType := multipartBody(t, "attachment", "wedding_001.jpg", []byte("data"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, uploadRequest(t, uuid.New(), uuid.New(), body, contentType))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(svc.uploaded) != 0 {
		t.Fatalf("expected no uploads, got %d", len(svc.uploaded))
	}
}

func TestMediaUploadRequiresOwnerContext(t *testing.T) {
	svc := &stubMediaService{}
	handler := MediaUpload(svc, config.MediaConfig{MaxUploadMB: 10}, nil)

	body, contentType := multipartBody(t, "file", "wedding_001.jpg", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("galleryId", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
