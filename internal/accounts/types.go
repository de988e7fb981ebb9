package accounts

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput is the client self-registration payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginInput is the credential payload for client and owner logins.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientDTO is the public shape of a client account.
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerDTO is the public shape of a studio owner account.
type OwnerDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// AccessibleGallery is a gallery summary surfaced on client login.
type AccessibleGallery struct {
	ID            uuid.UUID  `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	CoverImageURL *string    `json:"cover_image_url,omitempty"`
	EventDate     *time.Time `json:"event_date,omitempty"`
}

// ClientSession is the client login result.
type ClientSession struct {
	Token     string              `json:"token"`
	Client    ClientDTO           `json:"client"`
	Galleries []AccessibleGallery `json:"galleries"`
}

// OwnerSession is the owner login result.
type OwnerSession struct {
	Token string   `json:"token"`
	Owner OwnerDTO `json:"owner"`
}
