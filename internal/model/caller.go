// internal/model/caller.go
package model

import (
	"fmt"
	"strings"
)

// Role is the caller's organizational role as supplied by the identity
// provider. Only the constants below are valid.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleCoordinator Role = "attestation_coordinator"
	RoleEmployee    Role = "employee"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleCoordinator, RoleEmployee:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Caller is the identity the dashboard is rendered for.
type Caller struct {
	Role  Role   `json:"role"`
	Email string `json:"email"`
}
