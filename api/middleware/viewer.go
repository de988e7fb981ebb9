package middleware

import (
	"net/http"
	"strings"

	"github.com/silvergrain/studio-backend/api/responses"
	"github.com/silvergrain/studio-backend/internal/identity"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

const guestSessionHeader = "X-Guest-Session"

// Viewer resolves an optional viewer identity from the client token or a
// guest session id and stores it in the context. The client token travels
// as an Authorization bearer header or a clientToken query parameter.
// Requests without credentials pass through with a nil viewer; handlers
// that need one reject those themselves. A guest session id that was
// supplied but does not resolve is rejected outright so a stale session
// never degrades into an anonymous request.
func Viewer(resolver *identity.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("clientToken")
			}
			sessionID := r.Header.Get(guestSessionHeader)
			if sessionID == "" {
				sessionID = r.URL.Query().Get("guestSessionId")
			}

			viewer, err := resolver.Resolve(r.Context(), token, sessionID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if viewer == nil && strings.TrimSpace(sessionID) != "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown or expired guest session"))
				return
			}

			ctx := WithViewer(r.Context(), viewer)
			if viewer != nil && logg != nil {
				fields := map[string]any{"viewer_kind": string(viewer.Kind)}
				if ref := viewer.ClientRef(); ref != nil {
					fields["client_id"] = ref.String()
				}
				if ref := viewer.GuestRef(); ref != nil {
					fields["guest_session_id"] = ref.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
