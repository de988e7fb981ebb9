package access

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
)

// Probe is the public, pre-auth view of a gallery share link.
type Probe struct {
	Exists        bool    `json:"exists"`
	Expired       bool    `json:"expired"`
	RequiresCode  bool    `json:"requires_code"`
	Title         string  `json:"title,omitempty"`
	CoverImageURL *string `json:"cover_image_url,omitempty"`
}

// Grant is the result of a successful access-code verification.
type Grant struct {
	SessionID uuid.UUID `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type galleryBySlugFinder interface {
	FindGalleryBySlug(ctx context.Context, slug string) (*models.Gallery, error)
}

type sessionCreator interface {
	CreateSession(ctx context.Context, session *models.GuestSession) error
}

// Service gates anonymous guests through gallery access codes.
type Service interface {
	CheckAccess(ctx context.Context, slug string) (Probe, error)
	VerifyAccessCode(ctx context.Context, slug, code, guestName string) (Grant, error)
}

type service struct {
	galleries galleryBySlugFinder
	sessions  sessionCreator
	cfg       config.GuestConfig
	now       func() time.Time
}

// NewService builds the access gate with the required dependencies.
func NewService(galleries galleryBySlugFinder, sessions sessionCreator, cfg config.GuestConfig) (Service, error) {
	if galleries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery repo is required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session repo is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &service{
		galleries: galleries,
		sessions:  sessions,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// CheckAccess reports whether a share link is viewable without revealing
// anything about unpublished galleries.
func (s *service) CheckAccess(ctx context.Context, slug string) (Probe, error) {
	gallery, err := s.lookup(ctx, slug)
	if err != nil {
		return Probe{}, err
	}
	if gallery == nil || gallery.Status != enums.GalleryStatusPublished {
		return Probe{Exists: false}, nil
	}
	if gallery.IsExpired(s.now()) {
		return Probe{Exists: true, Expired: true, Title: gallery.Title}, nil
	}
	return Probe{
		Exists:        true,
		RequiresCode:  gallery.AccessCode != nil && *gallery.AccessCode != "",
		Title:         gallery.Title,
		CoverImageURL: gallery.CoverImageURL,
	}, nil
}

// VerifyAccessCode checks the submitted code and mints a guest session on
// success. The comparison is exact and constant-time; no trimming or case
// folding is applied to the stored or submitted code.
func (s *service) VerifyAccessCode(ctx context.Context, slug, code, guestName string) (Grant, error) {
	gallery, err := s.lookup(ctx, slug)
	if err != nil {
		return Grant{}, err
	}
	if gallery == nil || gallery.Status != enums.GalleryStatusPublished || gallery.IsExpired(s.now()) {
		return Grant{}, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
	}

	stored := ""
	if gallery.AccessCode != nil {
		stored = *gallery.AccessCode
	}
	if stored == "" || !codesEqual(stored, code) {
		return Grant{}, pkgerrors.New(pkgerrors.CodeInvalidAccessCode, "invalid access code")
	}

	session := &models.GuestSession{
		ID:        uuid.New(),
		GalleryID: gallery.ID,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
	}
	if name := strings.TrimSpace(guestName); name != "" {
		session.DisplayName = &name
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return Grant{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create guest session")
	}

	return Grant{SessionID: session.ID, ExpiresAt: session.ExpiresAt}, nil
}

func (s *service) lookup(ctx context.Context, slug string) (*models.Gallery, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	gallery, err := s.galleries.FindGalleryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}
	return gallery, nil
}

func codesEqual(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
