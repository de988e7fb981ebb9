package middleware

import (
	"net/http"
	"strings"

	"github.com/silvergrain/studio-backend/api/responses"
	pkgauth "github.com/silvergrain/studio-backend/pkg/auth"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

// OwnerAuth validates an owner bearer token and seeds the request context
// with the owner id. Client tokens are rejected here; the admin surface is
// owner-only.
func OwnerAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.Kind != enums.ActorKindOwner {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner credentials required"))
				return
			}

			ctx := WithOwnerID(r.Context(), claims.SubjectID.String())
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"owner_id": claims.SubjectID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
