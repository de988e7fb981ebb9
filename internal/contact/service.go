package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

// MessageInput is the contact-form payload.
type MessageInput struct {
	Name    string `json:"name" validate:"required,min=1,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// rateCounter is the fixed-window counter behind per-IP limiting. Redis
// backs it in production so the window is shared across processes.
type rateCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

type messageStore interface {
	CreateMessage(ctx context.Context, message *models.ContactMessage) error
}

// Service persists contact-form messages behind a per-IP rate limit.
type Service interface {
	Submit(ctx context.Context, remoteIP string, input MessageInput) error
}

type service struct {
	store   messageStore
	counter rateCounter
	cfg     config.ContactRateLimitConfig
	logg    *logger.Logger
}

// NewService builds the contact service with the required dependencies.
func NewService(store messageStore, counter rateCounter, cfg config.ContactRateLimitConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message store is required")
	}
	if counter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate counter is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	if cfg.IPLimit <= 0 {
		cfg.IPLimit = 5
	}
	return &service{store: store, counter: counter, cfg: cfg, logg: logg}, nil
}

// Submit checks the sender's window and stores the message. The counter
// increments before the write, so rejected attempts still consume budget.
func (s *service) Submit(ctx context.Context, remoteIP string, input MessageInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	message := strings.TrimSpace(input.Message)
	if name == "" || email == "" || message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name, email, and message are required")
	}

	key := s.counter.RateLimitKey("contact:" + remoteIP)
	count, err := s.counter.IncrWithTTL(ctx, key, s.cfg.Window)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check")
	}
	if count > int64(s.cfg.IPLimit) {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many messages, try again later")
	}

	row := &models.ContactMessage{
		ID:      uuid.New(),
		Name:    name,
		Email:   email,
		Message: message,
	}
	if err := s.store.CreateMessage(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store message")
	}
	s.logg.Info(ctx, "contact message received")
	return nil
}
