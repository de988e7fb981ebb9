package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/api/middleware"
	"github.com/silvergrain/studio-backend/api/responses"
	"github.com/silvergrain/studio-backend/api/validators"
	"github.com/silvergrain/studio-backend/internal/analytics"
	"github.com/silvergrain/studio-backend/internal/downloads"
	"github.com/silvergrain/studio-backend/internal/engagement"
	"github.com/silvergrain/studio-backend/internal/media"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

type batchDownloadRequest struct {
	GalleryID uuid.UUID   `json:"gallery_id" validate:"required"`
	MediaIDs  []uuid.UUID `json:"media_ids,omitempty"`
}

type analyticsEventRequest struct {
	GalleryID uuid.UUID      `json:"gallery_id" validate:"required"`
	Event     string         `json:"event" validate:"required"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ViewGalleryMedia lists a published gallery's media for a viewer,
// optionally restricted to the viewer's favorites.
func ViewGalleryMedia(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		galleryID, err := pathUUID(r, "galleryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filter := media.FilterNone
		switch strings.TrimSpace(r.URL.Query().Get("filter")) {
		case "":
		case "favorites":
			filter = media.FilterFavorites
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown filter"))
			return
		}

		dtos, err := svc.List(ctx, galleryID, filter, middleware.ViewerFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dtos)
	}
}

// ViewMediaDetail returns a single item with permissions and comments.
func ViewMediaDetail(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		mediaID, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetByID(ctx, mediaID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// FavoriteToggle flips the viewer's favorite on one item.
func FavoriteToggle(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		mediaID, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		favorited, err := svc.ToggleFavorite(ctx, mediaID, middleware.ViewerFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"favorited": favorited})
	}
}

// CommentAdd posts a comment on behalf of the resolved viewer.
func CommentAdd(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		mediaID, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload commentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.AddComment(ctx, mediaID, payload.Content, middleware.ViewerFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// CommentDelete removes the viewer's own comment.
func CommentDelete(svc engagement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}

		commentID, err := pathUUID(r, "commentId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteComment(ctx, commentID, middleware.ViewerFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MediaDownload records the download and redirects to the original object.
func MediaDownload(svc downloads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "downloads service unavailable"))
			return
		}

		mediaID, err := pathUUID(r, "mediaId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		url, err := svc.Single(ctx, mediaID, middleware.ViewerFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
	}
}

// BatchDownload streams a ZIP of the requested originals.
func BatchDownload(svc downloads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "downloads service unavailable"))
			return
		}

		var payload batchDownloadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		archive, err := svc.BuildZip(ctx, payload.GalleryID, payload.MediaIDs, middleware.ViewerFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="`+archive.Filename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(archive.Data); err != nil && logg != nil {
			logg.Warn(logg.WithField(ctx, "filename", archive.Filename), "zip stream interrupted")
		}
	}
}

// AnalyticsEvent records a viewer event. Insert failures never surface.
func AnalyticsEvent(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		var payload analyticsEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Track(ctx, payload.GalleryID, payload.Event, payload.Metadata, middleware.ViewerFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
