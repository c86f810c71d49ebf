// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec decodes the bearer tokens issued by the REST backend.
//
// # Security
//
// [DecodeClaims] does NOT verify the token signature. The gateway never holds
// the backend's signing key, so the decoded claims are a presentation
// convenience only: they pick the greeting, the menu entries, and the page a
// visitor is redirected to. Every authorization decision of consequence is
// taken again by the backend, which validates the signature on each call.
package sec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a backend access token.
type AuthClaims struct {
	jwt.RegisteredClaims

	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id"`

	// Optional scoping claims. A user without a business unit must pick one.
	BusinessUnitID *string `json:"business_unit_id,omitempty"`
	DepartmentID   *string `json:"department_id,omitempty"`
}

// Expired reports whether the token carries an expiry that lies before now.
// A token without an "exp" claim never expires from the gateway's view.
func (c *AuthClaims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// DecodeError reports a token that is not a well-formed JWT.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sec: malformed token: %s: %v", e.Reason, e.Err)
	}
	return "sec: malformed token: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

/*
DecodeClaims parses the payload of a bearer token without verifying it.

Parameters:
  - token: string (three dot-separated, base64url-encoded segments)

Returns:
  - *AuthClaims: The decoded claims
  - error: *DecodeError when the token is malformed
*/
func DecodeClaims(token string) (*AuthClaims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(segments))}
	}

	for index, segment := range segments {
		if segment == "" && index < 2 {
			return nil, &DecodeError{Reason: fmt.Sprintf("segment %d is empty", index+1)}
		}
		if _, err := parser.DecodeSegment(segment); err != nil {
			return nil, &DecodeError{Reason: fmt.Sprintf("segment %d is not base64url", index+1), Err: err}
		}
	}

	claims := &AuthClaims{}
	_, _, err := parser.ParseUnverified(token, claims)

	// An algorithm the gateway does not know is irrelevant: nothing is verified here.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, &DecodeError{Reason: "payload is not a claims object", Err: err}
	}

	return claims, nil
}
