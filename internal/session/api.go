// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"

	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/upstream"
	"github.com/taibuivan/finboard/pkg/pointer"
)

// # Contracts & Types

// TokenGrant is the backend's answer to login, refresh and business unit selection.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthAPI is the part of the REST backend the session manager talks to.
type AuthAPI interface {
	// Login exchanges credentials for a token grant.
	Login(ctx context.Context, username, password string) (*TokenGrant, error)

	// Signup forwards an arbitrary signup payload and returns the raw answer.
	// A nil token sends no Authorization header.
	Signup(ctx context.Context, payload json.RawMessage, token *string) (*upstream.Response, error)

	// Refresh exchanges a refresh token for a new grant.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)

	// NeedsBusinessUnitSelection asks whether the token's user must pick a business unit.
	NeedsBusinessUnitSelection(ctx context.Context, token string) (bool, error)

	// SelectBusinessUnit scopes the session to one business unit.
	SelectBusinessUnit(ctx context.Context, token, businessUnitID string) (*TokenGrant, error)
}

// HTTPAuthAPI implements [AuthAPI] over the upstream client.
type HTTPAuthAPI struct {
	client *upstream.Client
}

// NewHTTPAuthAPI creates the backend binding.
func NewHTTPAuthAPI(client *upstream.Client) *HTTPAuthAPI {
	return &HTTPAuthAPI{client: client}
}

func (api *HTTPAuthAPI) Login(ctx context.Context, username, password string) (*TokenGrant, error) {
	body := map[string]string{FieldUsername: username, FieldPassword: password}

	var grant TokenGrant
	if err := api.client.PostJSON(ctx, constants.UpstreamLogin, "", body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (api *HTTPAuthAPI) Signup(ctx context.Context, payload json.RawMessage, token *string) (*upstream.Response, error) {
	return api.client.Post(ctx, constants.UpstreamSignup, pointer.Val(token), payload)
}

func (api *HTTPAuthAPI) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var grant TokenGrant
	if err := api.client.PostJSON(ctx, constants.UpstreamRefresh, "", body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (api *HTTPAuthAPI) NeedsBusinessUnitSelection(ctx context.Context, token string) (bool, error) {
	var answer struct {
		NeedsSelection bool `json:"needs_selection"`
	}
	if err := api.client.GetJSON(ctx, constants.UpstreamNeedsBusinessUnit, nil, token, &answer); err != nil {
		return false, err
	}
	return answer.NeedsSelection, nil
}

func (api *HTTPAuthAPI) SelectBusinessUnit(ctx context.Context, token, businessUnitID string) (*TokenGrant, error) {
	body := map[string]string{FieldBusinessUnitID: businessUnitID}

	var grant TokenGrant
	if err := api.client.PostJSON(ctx, constants.UpstreamSelectBusinessUnit, token, body, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}
