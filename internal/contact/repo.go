package contact

import (
	"context"

	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates contact-message persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contact repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateMessage inserts a contact-form message.
func (r *Repository) CreateMessage(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}
