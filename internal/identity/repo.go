package identity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository provides the lookups the resolver needs.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an identity repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindClientByID loads a client row by primary key.
func (r *Repository) FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindSessionByID loads a guest session row by primary key.
func (r *Repository) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	var session models.GuestSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}
