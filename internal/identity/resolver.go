package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/auth"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
)

type clientFinder interface {
	FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type sessionFinder interface {
	FindSessionByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error)
}

// Resolver turns request credentials into an Identity. Bad or stale
// credentials resolve to nil rather than an error so callers can treat
// viewer identity as optional.
type Resolver struct {
	clients  clientFinder
	sessions sessionFinder
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewResolver builds an identity resolver over the provided lookups.
func NewResolver(clients clientFinder, sessions sessionFinder, jwtCfg config.JWTConfig) (*Resolver, error) {
	if clients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client lookup is required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session lookup is required")
	}
	return &Resolver{
		clients:  clients,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		now:      time.Now,
	}, nil
}

// VerifyClientToken resolves a bearer token to a client identity. Parse
// failures, expired tokens, wrong actor kinds, and unknown subjects all
// return (nil, nil); only infrastructure faults surface as errors.
func (r *Resolver) VerifyClientToken(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	claims, err := auth.ParseAccessToken(r.jwtCfg, token)
	if err != nil {
		return nil, nil
	}
	if claims.Kind != enums.ActorKindClient {
		return nil, nil
	}

	client, err := r.clients.FindClientByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	id := Client(client.ID, client.Name)
	return &id, nil
}

// VerifyGuestSession resolves a guest session id to a guest identity.
// Unknown and expired sessions return (nil, nil).
func (r *Resolver) VerifyGuestSession(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}

	session, err := r.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest session")
	}
	if session.IsExpired(r.now()) {
		return nil, nil
	}

	name := ""
	if session.DisplayName != nil {
		name = *session.DisplayName
	}
	id := Guest(session.ID, name)
	return &id, nil
}

// Resolve tries the client token first and falls back to the guest
// session. A valid token wins even when a session id is also present.
func (r *Resolver) Resolve(ctx context.Context, token, sessionID string) (*Identity, error) {
	if id, err := r.VerifyClientToken(ctx, token); err != nil || id != nil {
		return id, err
	}
	return r.VerifyGuestSession(ctx, sessionID)
}
