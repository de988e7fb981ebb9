package identity

import (
	"github.com/google/uuid"
)

// Kind discriminates the two actor classes behind engagement traffic.
type Kind string

const (
	KindClient Kind = "client"
	KindGuest  Kind = "guest"
)

// Identity is the resolved actor behind a request: a registered client or
// an access-code guest, never both. Engagement code switches on Kind
// instead of probing optional token fields.
type Identity struct {
	Kind           Kind
	ClientID       uuid.UUID
	GuestSessionID uuid.UUID
	DisplayName    string
}

// Client builds a client-backed identity.
func Client(id uuid.UUID, name string) Identity {
	return Identity{Kind: KindClient, ClientID: id, DisplayName: name}
}

// Guest builds a guest-session-backed identity.
func Guest(sessionID uuid.UUID, name string) Identity {
	if name == "" {
		name = "Guest"
	}
	return Identity{Kind: KindGuest, GuestSessionID: sessionID, DisplayName: name}
}

// ClientRef returns the client id column value for this identity.
func (i Identity) ClientRef() *uuid.UUID {
	if i.Kind != KindClient {
		return nil
	}
	id := i.ClientID
	return &id
}

// GuestRef returns the guest session id column value for this identity.
func (i Identity) GuestRef() *uuid.UUID {
	if i.Kind != KindGuest {
		return nil
	}
	id := i.GuestSessionID
	return &id
}

// Matches reports whether a stored (clientID, guestSessionID) pair belongs
// to this identity. Exactly one side is compared, never both.
func (i Identity) Matches(clientID, guestSessionID *uuid.UUID) bool {
	switch i.Kind {
	case KindClient:
		return clientID != nil && *clientID == i.ClientID
	case KindGuest:
		return guestSessionID != nil && *guestSessionID == i.GuestSessionID
	}
	return false
}
