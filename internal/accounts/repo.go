package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/pkg/db/models"
)

// Repository encapsulates account persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateClient inserts a new client row.
func (r *Repository) CreateClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// FindClientByEmail loads a client by unique email.
func (r *Repository) FindClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// FindOwnerByEmail loads a studio owner by unique email.
func (r *Repository) FindOwnerByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchClientLogin stamps last_login_at for a client.
func (r *Repository) TouchClientLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("last_login_at", gorm.Expr("now()")).
		Error
}

// GrantAccess inserts a client-gallery grant and ignores duplicates.
func (r *Repository) GrantAccess(ctx context.Context, clientID, galleryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO client_access (client_id, gallery_id) VALUES (?, ?) ON CONFLICT (client_id, gallery_id) DO NOTHING`, clientID, galleryID).
		Error
}

// RevokeAccess drops a client-gallery grant if it exists.
func (r *Repository) RevokeAccess(ctx context.Context, clientID, galleryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("client_id = ? AND gallery_id = ?", clientID, galleryID).
		Delete(&models.ClientAccess{}).
		Error
}

// ListAccessibleGalleries returns published galleries the client was granted.
func (r *Repository) ListAccessibleGalleries(ctx context.Context, clientID uuid.UUID) ([]AccessibleGallery, error) {
	var rows []AccessibleGallery
	err := r.db.WithContext(ctx).
		Table("client_access ca").
		Select("g.id", "g.slug", "g.title", "g.cover_image_url", "g.event_date").
		Joins("JOIN galleries g ON g.id = ca.gallery_id").
		Where("ca.client_id = ? AND g.status = ?", clientID, "PUBLISHED").
		Order("g.event_date DESC NULLS LAST").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
