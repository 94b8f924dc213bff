package enums

import (
	"fmt"
	"strings"
)

// Role is the closed set of marketplace actor roles. It is fixed at registration.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
	RoleDelivery Role = "delivery"
)

var validRoles = []Role{
	RoleCustomer,
	RoleVendor,
	RoleAdmin,
	RoleDelivery,
}

// Roles returns every role in declaration order.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// SelfRegistrable reports whether the role may be picked on public registration.
func (r Role) SelfRegistrable() bool {
	return r.IsValid() && r != RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid role %q", value)
}
