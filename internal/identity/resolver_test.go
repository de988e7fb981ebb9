package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/auth"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
)

type stubClientFinder struct {
	client *models.Client
	err    error
}

func (s stubClientFinder) FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.client == nil || s.client.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

type stubSessionFinder struct {
	session *models.GuestSession
	err     error
}

func (s stubSessionFinder) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.session == nil || s.session.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.session, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "silvergrain-test", ExpirationMinutes: 30}
}

func mintClientToken(t *testing.T, cfg config.JWTConfig, clientID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		SubjectID: clientID,
		Kind:      enums.ActorKindClient,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	return token
}

func TestVerifyClientTokenSuccess(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	client := &models.Client{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}

	resolver, err := NewResolver(stubClientFinder{client: client}, stubSessionFinder{}, cfg)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.VerifyClientToken(context.Background(), mintClientToken(t, cfg, client.ID))
	if err != nil {
		t.Fatalf("VerifyClientToken: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity")
	}
	if id.Kind != KindClient || id.ClientID != client.ID || id.DisplayName != "Ada" {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifyClientTokenGarbageIsNil(t *testing.T) {
	t.Parallel()

	resolver, err := NewResolver(stubClientFinder{}, stubSessionFinder{}, testJWTConfig())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		id, err := resolver.VerifyClientToken(context.Background(), token)
		if err != nil {
			t.Fatalf("VerifyClientToken(%q): %v", token, err)
		}
		if id != nil {
			t.Fatalf("expected nil identity for %q", token)
		}
	}
}

func TestVerifyClientTokenUnknownSubjectIsNil(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	resolver, err := NewResolver(stubClientFinder{}, stubSessionFinder{}, cfg)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.VerifyClientToken(context.Background(), mintClientToken(t, cfg, uuid.New()))
	if err != nil {
		t.Fatalf("VerifyClientToken: %v", err)
	}
	if id != nil {
		t.Fatalf("expected nil identity, got %+v", id)
	}
}

func TestVerifyClientTokenOwnerKindIsNil(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	ownerID := uuid.New()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		SubjectID: ownerID,
		Kind:      enums.ActorKindOwner,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	resolver, err := NewResolver(stubClientFinder{}, stubSessionFinder{}, cfg)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.VerifyClientToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyClientToken: %v", err)
	}
	if id != nil {
		t.Fatalf("owner token must not resolve to a viewer identity, got %+v", id)
	}
}

func TestVerifyGuestSession(t *testing.T) {
	t.Parallel()

	name := "Wedding Guest"
	session := &models.GuestSession{
		ID:          uuid.New(),
		GalleryID:   uuid.New(),
		DisplayName: &name,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	resolver, err := NewResolver(stubClientFinder{}, stubSessionFinder{session: session}, testJWTConfig())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.VerifyGuestSession(context.Background(), session.ID.String())
	if err != nil {
		t.Fatalf("VerifyGuestSession: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity")
	}
	if id.Kind != KindGuest || id.GuestSessionID != session.ID || id.DisplayName != name {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifyGuestSessionExpiredIsNil(t *testing.T) {
	t.Parallel()

	session := &models.GuestSession{
		ID:        uuid.New(),
		GalleryID: uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	resolver, err := NewResolver(stubClientFinder{}, stubSessionFinder{session: session}, testJWTConfig())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.VerifyGuestSession(context.Background(), session.ID.String())
	if err != nil {
		t.Fatalf("VerifyGuestSession: %v", err)
	}
	if id != nil {
		t.Fatalf("expected nil identity for expired session, got %+v", id)
	}
}

func TestResolveTokenWinsOverSession(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	client := &models.Client{ID: uuid.New(), Name: "Ada"}
	session := &models.GuestSession{ID: uuid.New(), GalleryID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}

	resolver, err := NewResolver(stubClientFinder{client: client}, stubSessionFinder{session: session}, cfg)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.Resolve(context.Background(), mintClientToken(t, cfg, client.ID), session.ID.String())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id == nil || id.Kind != KindClient {
		t.Fatalf("expected client identity, got %+v", id)
	}
}

func TestResolveFallsBackToSession(t *testing.T) {
	t.Parallel()

	session := &models.GuestSession{ID: uuid.New(), GalleryID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}

	resolver, err := NewResolver(stubClientFinder{}, stubSessionFinder{session: session}, testJWTConfig())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	id, err := resolver.Resolve(context.Background(), "bad-token", session.ID.String())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id == nil || id.Kind != KindGuest {
		t.Fatalf("expected guest identity, got %+v", id)
	}
}
