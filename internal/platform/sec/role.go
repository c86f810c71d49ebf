// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"slices"
	"strings"
)

// # User Roles

// UserRole is the authorization level a token grants inside its tenant.
type UserRole string

const (
	// Tenant administration: users, tenants, groups
	RoleAdmin UserRole = "admin"

	// Can manage accounts and forecasts of their business unit
	RoleManager UserRole = "manager"

	// Default role for dashboard readers
	RoleUser UserRole = "user"
)

// hierarchy lists roles from least to most privileged.
var hierarchy = []UserRole{RoleUser, RoleManager, RoleAdmin}

// ParseRole normalizes the role claim of a token. Unknown roles come back
// empty, which ranks below every known role.
func ParseRole(raw string) UserRole {
	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(hierarchy, role) {
		return ""
	}
	return role
}

// # Role Hierarchy

// AtLeast reports whether r ranks at or above target.
// Unknown roles never qualify.
func (r UserRole) AtLeast(target UserRole) bool {
	rank := slices.Index(hierarchy, r)
	return rank >= 0 && rank >= slices.Index(hierarchy, target)
}
