package contact

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

type fakeMessageStore struct {
	messages []*models.ContactMessage
}

func (f *fakeMessageStore) CreateMessage(ctx context.Context, message *models.ContactMessage) error {
	f.messages = append(f.messages, message)
	return nil
}

type fakeCounter struct {
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCounter) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.counts[key]++
	if f.counts[key] == 1 {
		f.ttls[key] = ttl
	}
	return f.counts[key], nil
}

func (f *fakeCounter) RateLimitKey(scope string) string {
	return "sg:rate_limit:" + scope
}

func newContactService(t *testing.T, store *fakeMessageStore, counter *fakeCounter) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "contact-test", Output: io.Discard})
	svc, err := NewService(store, counter, config.ContactRateLimitConfig{Window: time.Hour, IPLimit: 5}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validInput() MessageInput {
	return MessageInput{Name: "Ada", Email: "ada@example.com", Message: "Availability for a June wedding?"}
}

func TestSubmitStoresMessage(t *testing.T) {
	t.Parallel()

	store := &fakeMessageStore{}
	counter := newFakeCounter()
	svc := newContactService(t, store, counter)

	if err := svc.Submit(context.Background(), "203.0.113.7", validInput()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(store.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(store.messages))
	}
	if ttl := counter.ttls["sg:rate_limit:contact:203.0.113.7"]; ttl != time.Hour {
		t.Fatalf("window ttl not applied, got %s", ttl)
	}
}

func TestSubmitRateLimitPerIP(t *testing.T) {
	t.Parallel()

	store := &fakeMessageStore{}
	counter := newFakeCounter()
	svc := newContactService(t, store, counter)

	for i := 0; i < 5; i++ {
		if err := svc.Submit(context.Background(), "203.0.113.7", validInput()); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	err := svc.Submit(context.Background(), "203.0.113.7", validInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED, got %v", err)
	}
	if len(store.messages) != 5 {
		t.Fatalf("rejected submit must not store, got %d", len(store.messages))
	}

	// A different address has its own window.
	if err := svc.Submit(context.Background(), "198.51.100.1", validInput()); err != nil {
		t.Fatalf("other ip: %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	store := &fakeMessageStore{}
	svc := newContactService(t, store, newFakeCounter())

	err := svc.Submit(context.Background(), "203.0.113.7", MessageInput{Name: " ", Email: "", Message: ""})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if len(store.messages) != 0 {
		t.Fatal("invalid message must not be stored")
	}
}
