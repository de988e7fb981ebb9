package accounts

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/auth"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
	"github.com/silvergrain/studio-backend/pkg/security"
)

type fakeAccountRepo struct {
	clients   map[string]*models.Client
	owners    map[string]*models.User
	grants    map[string]bool
	galleries []AccessibleGallery
	createErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		clients: map[string]*models.Client{},
		owners:  map[string]*models.User{},
		grants:  map[string]bool{},
	}
}

func (f *fakeAccountRepo) CreateClient(ctx context.Context, client *models.Client) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.clients[client.Email]; exists {
		return fmt.Errorf(`duplicate key value violates unique constraint "clients_email_key"`)
	}
	f.clients[client.Email] = client
	return nil
}

func (f *fakeAccountRepo) FindClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	client, ok := f.clients[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return client, nil
}

func (f *fakeAccountRepo) FindOwnerByEmail(ctx context.Context, email string) (*models.User, error) {
	owner, ok := f.owners[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return owner, nil
}

func (f *fakeAccountRepo) TouchClientLogin(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeAccountRepo) GrantAccess(ctx context.Context, clientID, galleryID uuid.UUID) error {
	f.grants[clientID.String()+"/"+galleryID.String()] = true
	return nil
}

func (f *fakeAccountRepo) RevokeAccess(ctx context.Context, clientID, galleryID uuid.UUID) error {
	delete(f.grants, clientID.String()+"/"+galleryID.String())
	return nil
}

func (f *fakeAccountRepo) ListAccessibleGalleries(ctx context.Context, clientID uuid.UUID) ([]AccessibleGallery, error) {
	return f.galleries, nil
}

func testService(t *testing.T, repo *fakeAccountRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "accounts-test", Output: io.Discard})
	svc, err := NewService(repo, config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "silvergrain-test",
		ExpirationMinutes: 30,
	}, config.PasswordConfig{}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	svc := testService(t, repo)

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.Client.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %s", session.Client.Email)
	}
	if session.Token == "" {
		t.Fatal("expected token")
	}

	stored := repo.clients["ada@example.com"]
	if stored == nil {
		t.Fatal("client not persisted")
	}
	if stored.PasswordHash == "correct horse" {
		t.Fatal("password stored in plaintext")
	}
	if ok, err := security.VerifyPassword("correct horse", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}

	login, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := auth.ParseAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "silvergrain-test",
		ExpirationMinutes: 30,
	}, login.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Kind != enums.ActorKindClient || claims.SubjectID != stored.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	svc := testService(t, repo)

	input := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginRejectionsAreUniform(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	svc := testService(t, repo)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, unknownErr := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"})
	_, badPassErr := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})

	for _, err := range []error{unknownErr, badPassErr} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected UNAUTHORIZED, got %v", err)
		}
	}
	if unknownErr.Error() != badPassErr.Error() {
		t.Fatalf("rejections differ: %q vs %q", unknownErr, badPassErr)
	}
}

func TestOwnerLoginMintsOwnerToken(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	hash, err := security.HashPassword("studio pass", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	owner := &models.User{ID: uuid.New(), Name: "Silvergrain Studio", Email: "studio@example.com", PasswordHash: hash}
	repo.owners[owner.Email] = owner

	svc := testService(t, repo)

	session, err := svc.OwnerLogin(context.Background(), LoginInput{Email: "studio@example.com", Password: "studio pass"})
	if err != nil {
		t.Fatalf("OwnerLogin: %v", err)
	}

	claims, err := auth.ParseAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "silvergrain-test",
		ExpirationMinutes: 30,
	}, session.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Kind != enums.ActorKindOwner || claims.SubjectID != owner.ID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestGrantAndRevokeAccess(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	svc := testService(t, repo)

	clientID := uuid.New()
	galleryID := uuid.New()

	if err := svc.GrantAccess(context.Background(), clientID, galleryID); err != nil {
		t.Fatalf("GrantAccess: %v", err)
	}
	if !repo.grants[clientID.String()+"/"+galleryID.String()] {
		t.Fatal("grant not recorded")
	}

	if err := svc.RevokeAccess(context.Background(), clientID, galleryID); err != nil {
		t.Fatalf("RevokeAccess: %v", err)
	}
	if repo.grants[clientID.String()+"/"+galleryID.String()] {
		t.Fatal("grant not removed")
	}

	if err := svc.GrantAccess(context.Background(), uuid.Nil, galleryID); err == nil {
		t.Fatal("expected validation error for nil client id")
	}
}
