package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/api/responses"
	"github.com/silvergrain/studio-backend/api/validators"
	"github.com/silvergrain/studio-backend/internal/media"
	"github.com/silvergrain/studio-backend/pkg/config"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

type mediaOrderRequest struct {
	MediaIDs []uuid.UUID `json:"media_ids" validate:"required,min=1"`
}

type mediaBulkDeleteRequest struct {
	MediaIDs []uuid.UUID `json:"media_ids" validate:"required,min=1"`
}

// MediaUpload ingests one multipart file into a gallery. The original is
// stored verbatim; image renditions are best-effort.
func MediaUpload(svc media.Service, mediaCfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := ownerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		galleryID, err := pathUUID(r, "galleryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit := mediaCfg.MaxUploadBytes()
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed or oversized upload"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload"))
			return
		}

		input := media.UploadInput{
			Filename:    header.Filename,
			ContentType: uploadContentType(header, data),
			Size:        int64(len(data)),
			Data:        data,
		}

		dto, err := svc.Upload(ctx, owner, galleryID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MediaReorder replaces the full gallery ordering in one call.
func MediaReorder(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := ownerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		galleryID, err := pathUUID(r, "galleryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload mediaOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Reorder(ctx, owner, galleryID, payload.MediaIDs); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reordered"})
	}
}

// MediaBulkDelete removes a set of gallery items and their objects.
func MediaBulkDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := ownerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		galleryID, err := pathUUID(r, "galleryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload mediaBulkDeleteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteMany(ctx, owner, galleryID, payload.MediaIDs); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := ownerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		mediaID, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, owner, mediaID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MediaSetCover promotes one item to the gallery cover image.
func MediaSetCover(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		owner, err := ownerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		mediaID, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetCover(ctx, owner, mediaID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cover set"})
	}
}

func uploadContentType(header *multipart.FileHeader, data []byte) string {
	if ct := strings.TrimSpace(header.Header.Get("Content-Type")); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}
