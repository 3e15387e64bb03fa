package models

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient, nil
	case RoleContractor:
		return RoleContractor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// PartyColumn is the contracts column that holds a profile acting in role r.
func (r Role) PartyColumn() (string, error) {
	switch r {
	case RoleClient:
		return "client_id", nil
	case RoleContractor:
		return "contractor_id", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
	}
}
