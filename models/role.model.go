package models

import (
	"fmt"
	"strings"
)

// Role is fixed when the profile is created and never changes afterwards.
type Role string

const (
	RoleStudent      Role = "Student"
	RoleOrganization Role = "Organization"
	RoleAdmin        Role = "Admin"
)

// ParseRole accepts the role name in any letter case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "organization":
		return RoleOrganization, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether an account with this role may sign up on its own.
// Admin accounts are provisioned out of band.
func (r Role) SelfRegistrable() bool {
	switch r {
	case RoleStudent, RoleOrganization:
		return true
	case RoleAdmin:
		return false
	default:
		panic(fmt.Sprintf("unhandled role %q", string(r)))
	}
}
