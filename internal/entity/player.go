package entity

import (
	"errors"
	"fmt"
)

// Role decides who dials, who speaks first in the handshake, who moves first
// and who decides on a rematch.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleInitiator, RoleResponder:
		return Role(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, value)
	}
}

// Mark returns the mark a role plays with. The initiator is always X.
func (that Role) Mark() Mark {
	if that == RoleInitiator {
		return PlayerX
	}
	return PlayerO
}

func (that Role) MovesFirst() bool {
	return that == RoleInitiator
}

func (that Role) DecidesRematch() bool {
	return that == RoleInitiator
}

type Player struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}
