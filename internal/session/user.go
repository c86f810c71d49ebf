// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"github.com/taibuivan/finboard/internal/platform/sec"
	"github.com/taibuivan/finboard/pkg/pointer"
)

// # Session State Machine

// State is the lifecycle stage of a visitor session.
//
//	Uninitialized -> Restoring -> {Authenticated, Unauthenticated}
//	Authenticated -> Unauthenticated   (logout, refresh failure)
//	Unauthenticated -> Authenticated   (login)
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateRestoring       State = "restoring"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// # Domain Models

// User is the identity derived from the decoded token claims. It is never
// fetched from the backend on its own.
type User struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Role           string  `json:"role"`
	TenantID       string  `json:"tenant_id"`
	BusinessUnitID *string `json:"business_unit_id,omitempty"`
	DepartmentID   *string `json:"department_id,omitempty"`
}

// UserFromClaims maps decoded claims onto a User. Missing string claims stay
// empty strings; missing optional ids stay nil.
func UserFromClaims(claims *sec.AuthClaims) *User {
	if claims == nil {
		return nil
	}
	return &User{
		ID:             claims.Subject,
		Username:       claims.Username,
		Email:          claims.Email,
		FirstName:      claims.FirstName,
		LastName:       claims.LastName,
		Role:           claims.Role,
		TenantID:       claims.TenantID,
		BusinessUnitID: pointer.Clone(claims.BusinessUnitID),
		DepartmentID:   pointer.Clone(claims.DepartmentID),
	}
}

// Session is the state published to every consumer of one request.
//
// The bearer token never leaves the gateway, so it is not serialized.
type Session struct {
	State                      State  `json:"state"`
	Token                      string `json:"-"`
	User                       *User  `json:"user"`
	IsLoading                  bool   `json:"is_loading"`
	NeedsBusinessUnitSelection bool   `json:"needs_business_unit_selection"`
}

// Restoring is the session value published while storage is being read.
func Restoring() Session {
	return Session{State: StateRestoring, IsLoading: true}
}

// Anonymous is the session of a visitor without a usable token.
func Anonymous() Session {
	return Session{State: StateUnauthenticated}
}

// Authenticated reports whether the session holds a token and a user.
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated && s.Token != "" && s.User != nil
}

// Role returns the user's role, or an empty role for anonymous sessions.
func (s Session) Role() sec.UserRole {
	if s.User == nil {
		return ""
	}
	return sec.ParseRole(s.User.Role)
}
