package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an organizational role attached to users and contacts.
type Role string

const (
	RolePrincipal     Role = "PRINCIPAL"
	RoleVicePrincipal Role = "VICE_PRINCIPAL"
	RoleHOD           Role = "HOD"
	RoleStaff         Role = "STAFF"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RolePrincipal, RoleVicePrincipal, RoleHOD, RoleStaff:
		return true
	}
	return false
}

func ParseRoleFromString(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
	return r, nil
}

// Contact is a message recipient. Inactive contacts are never resolved
// as delivery targets.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Role      Role
	Active    bool
	AccountID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: contact name is required", ErrValidation)
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", ErrValidation, c.Role)
	}
	return nil
}

// Group is a named collection of contacts with set-valued membership.
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
