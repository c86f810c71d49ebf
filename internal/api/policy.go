// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"github.com/taibuivan/finboard/internal/platform/middleware"
	"github.com/taibuivan/finboard/internal/platform/sec"
)

// Policy is the route protection table of the gateway. Pages and API routes
// are listed together; the first matching rule wins.
var Policy = middleware.RoutePolicy{
	// Entry points
	{Pattern: "/login", Access: middleware.Public},
	{Pattern: "/signup", Access: middleware.Public},
	{Pattern: "/auth/*", Access: middleware.Public, API: true},

	// Business unit selection is the only page open to pending users
	{Pattern: "/select-business-unit", Access: middleware.Protected, AllowPendingBusinessUnit: true},

	// Tenant administration
	{Pattern: "/admin/*", Access: middleware.Protected, MinRole: sec.RoleAdmin},

	// Financial pages
	{Pattern: "/", Access: middleware.Protected},
	{Pattern: "/dashboard", Access: middleware.Protected},
	{Pattern: "/accounts", Access: middleware.Protected},
	{Pattern: "/transactions", Access: middleware.Protected},
	{Pattern: "/forecasts", Access: middleware.Protected, MinRole: sec.RoleManager},
	{Pattern: "/reports/*", Access: middleware.Protected},

	// JSON API
	{Pattern: "/api/ui/*", Access: middleware.Protected, AllowPendingBusinessUnit: true, API: true},
	{Pattern: "/api/*", Access: middleware.Protected, API: true},
}
