// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

// # Event Routing Keys

const (
	EventLogin                = "session.login"
	EventLogout               = "session.logout"
	EventRefreshFailed        = "session.refresh_failed"
	EventBusinessUnitSelected = "session.business_unit_selected"
)

// # Request Fields

const (
	FieldUsername       = "username"
	FieldPassword       = "password"
	FieldEmail          = "email"
	FieldBusinessUnitID = "business_unit_id"
)
