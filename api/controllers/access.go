package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/silvergrain/studio-backend/api/responses"
	"github.com/silvergrain/studio-backend/api/validators"
	"github.com/silvergrain/studio-backend/internal/access"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

type accessVerifyRequest struct {
	Code      string `json:"code" validate:"required"`
	GuestName string `json:"guest_name,omitempty" validate:"omitempty,max=120"`
}

// AccessProbe tells an anonymous visitor whether a share link is live and
// whether it needs a code. Draft galleries look like missing ones.
func AccessProbe(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "access service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		probe, err := svc.CheckAccess(ctx, slug)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, probe)
	}
}

// AccessVerify exchanges a gallery access code for a guest session.
func AccessVerify(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "access service unavailable"))
			return
		}

		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		var payload accessVerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		grant, err := svc.VerifyAccessCode(ctx, slug, payload.Code, payload.GuestName)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, grant)
	}
}
