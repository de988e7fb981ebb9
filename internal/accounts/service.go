package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/auth"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
	"github.com/silvergrain/studio-backend/pkg/security"
)

type accountRepository interface {
	CreateClient(ctx context.Context, client *models.Client) error
	FindClientByEmail(ctx context.Context, email string) (*models.Client, error)
	FindOwnerByEmail(ctx context.Context, email string) (*models.User, error)
	TouchClientLogin(ctx context.Context, id uuid.UUID) error
	GrantAccess(ctx context.Context, clientID, galleryID uuid.UUID) error
	RevokeAccess(ctx context.Context, clientID, galleryID uuid.UUID) error
	ListAccessibleGalleries(ctx context.Context, clientID uuid.UUID) ([]AccessibleGallery, error)
}

// Service exposes registration, login, and gallery grants.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (ClientSession, error)
	Login(ctx context.Context, input LoginInput) (ClientSession, error)
	OwnerLogin(ctx context.Context, input LoginInput) (OwnerSession, error)
	GrantAccess(ctx context.Context, clientID, galleryID uuid.UUID) error
	RevokeAccess(ctx context.Context, clientID, galleryID uuid.UUID) error
}

type service struct {
	repo        accountRepository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the accounts service with the required dependencies.
func NewService(repo accountRepository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accounts repo is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Register creates a client account and returns a fresh session.
func (s *service) Register(ctx context.Context, input RegisterInput) (ClientSession, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if name == "" || email == "" || input.Password == "" {
		return ClientSession{}, pkgerrors.New(pkgerrors.CodeValidation, "name, email, and password are required")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return ClientSession{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	client := &models.Client{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.CreateClient(ctx, client); err != nil {
		if db.IsUniqueViolation(err, "") {
			return ClientSession{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return ClientSession{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create client")
	}

	return s.mintClientSession(ctx, client)
}

// Login verifies client credentials and returns a session with the
// galleries the client can view. Unknown email and bad password produce
// the same rejection.
func (s *service) Login(ctx context.Context, input LoginInput) (ClientSession, error) {
	email := normalizeEmail(input.Email)

	client, err := s.repo.FindClientByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientSession{}, invalidCredentials()
		}
		return ClientSession{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	ok, err := security.VerifyPassword(input.Password, client.PasswordHash)
	if err != nil || !ok {
		return ClientSession{}, invalidCredentials()
	}

	if err := s.repo.TouchClientLogin(ctx, client.ID); err != nil {
		s.logg.Warn(ctx, "stamp client login failed")
	}

	return s.mintClientSession(ctx, client)
}

// OwnerLogin verifies studio-owner credentials for the admin surface.
func (s *service) OwnerLogin(ctx context.Context, input LoginInput) (OwnerSession, error) {
	email := normalizeEmail(input.Email)

	owner, err := s.repo.FindOwnerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OwnerSession{}, invalidCredentials()
		}
		return OwnerSession{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
	}

	ok, err := security.VerifyPassword(input.Password, owner.PasswordHash)
	if err != nil || !ok {
		return OwnerSession{}, invalidCredentials()
	}

	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		SubjectID: owner.ID,
		Kind:      enums.ActorKindOwner,
	})
	if err != nil {
		return OwnerSession{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return OwnerSession{
		Token: token,
		Owner: OwnerDTO{ID: owner.ID, Name: owner.Name, Email: owner.Email},
	}, nil
}

// GrantAccess lets a client see a gallery. Duplicate grants are a no-op.
func (s *service) GrantAccess(ctx context.Context, clientID, galleryID uuid.UUID) error {
	if clientID == uuid.Nil || galleryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id and gallery id are required")
	}
	if err := s.repo.GrantAccess(ctx, clientID, galleryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "grant access")
	}
	return nil
}

// RevokeAccess removes a client's grant regardless of prior state.
func (s *service) RevokeAccess(ctx context.Context, clientID, galleryID uuid.UUID) error {
	if clientID == uuid.Nil || galleryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id and gallery id are required")
	}
	if err := s.repo.RevokeAccess(ctx, clientID, galleryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke access")
	}
	return nil
}

func (s *service) mintClientSession(ctx context.Context, client *models.Client) (ClientSession, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		SubjectID: client.ID,
		Kind:      enums.ActorKindClient,
	})
	if err != nil {
		return ClientSession{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	galleries, err := s.repo.ListAccessibleGalleries(ctx, client.ID)
	if err != nil {
		return ClientSession{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accessible galleries")
	}
	if galleries == nil {
		galleries = []AccessibleGallery{}
	}

	return ClientSession{
		Token: token,
		Client: ClientDTO{
			ID:        client.ID,
			Name:      client.Name,
			Email:     client.Email,
			AvatarURL: client.AvatarURL,
			CreatedAt: client.CreatedAt,
		},
		Galleries: galleries,
	}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
