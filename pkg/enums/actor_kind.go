package enums

import "fmt"

// ActorKind identifies which credential class a JWT was minted for.
type ActorKind string

const (
	ActorKindOwner  ActorKind = "owner"
	ActorKindClient ActorKind = "client"
)

var validActorKinds = []ActorKind{
	ActorKindOwner,
	ActorKindClient,
}

func (a ActorKind) String() string {
	return string(a)
}

// IsValid reports whether the kind is known.
func (a ActorKind) IsValid() bool {
	for _, candidate := range validActorKinds {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorKind converts raw input into an ActorKind.
func ParseActorKind(value string) (ActorKind, error) {
	for _, candidate := range validActorKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor kind %q", value)
}
