package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	SubjectID uuid.UUID
	Kind      enums.ActorKind
}

// AccessTokenClaims represents the typed JWT issued to owners and clients.
type AccessTokenClaims struct {
	SubjectID uuid.UUID       `json:"subject_id"`
	Kind      enums.ActorKind `json:"kind"`
	jwt.RegisteredClaims
}
