// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/constants"
	"github.com/taibuivan/finboard/internal/platform/respond"
	"github.com/taibuivan/finboard/internal/platform/sec"
	"github.com/taibuivan/finboard/internal/session"
)

// # Route Policy

// Access tells whether a route needs a session.
type Access int

const (
	Public Access = iota
	Protected
)

// Rule protects every path matching Pattern.
//
// Pattern is either an exact path ("/dashboard") or a prefix ending in "/*"
// ("/admin/*"), which also matches the bare prefix ("/admin").
type Rule struct {
	Pattern string
	Access  Access

	// MinRole is the lowest role allowed in. Empty means any signed-in user.
	MinRole sec.UserRole

	// AllowPendingBusinessUnit admits users who still have to pick a business unit.
	AllowPendingBusinessUnit bool

	// API rules answer with JSON errors instead of redirects.
	API bool
}

func (r Rule) matches(path string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// RoutePolicy is the single route protection table shared by pages and API
// routes. The first matching rule wins; unmatched paths are public.
type RoutePolicy []Rule

// Match returns the first rule matching path.
func (p RoutePolicy) Match(path string) (Rule, bool) {
	for _, rule := range p {
		if rule.matches(path) {
			return rule, true
		}
	}
	return Rule{}, false
}

// # Decisions

// Decision is the outcome of consulting the policy for one request.
type Decision int

const (
	Allow Decision = iota
	Loading
	RedirectLogin
	RedirectBusinessUnit
	Forbidden
	Unauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectBusinessUnit:
		return "redirect_business_unit"
	case Forbidden:
		return "forbidden"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

/*
Decide applies the policy to one request.

Parameters:
  - path: string (the cleaned URL path)
  - current: session.Session
  - present: bool (false while no restore step has published a session)

Returns:
  - Decision: Loading whenever the session is not settled yet, so that no
    protected content is produced before the visitor is known
*/
func (p RoutePolicy) Decide(path string, current session.Session, present bool) Decision {
	rule, ok := p.Match(path)
	if !ok || rule.Access == Public {
		return Allow
	}

	if !present || current.IsLoading {
		return Loading
	}

	if !current.Authenticated() {
		if rule.API {
			return Unauthorized
		}
		return RedirectLogin
	}

	if current.NeedsBusinessUnitSelection && !rule.AllowPendingBusinessUnit {
		if rule.API {
			return Forbidden
		}
		return RedirectBusinessUnit
	}

	if rule.MinRole != "" && !current.Role().AtLeast(rule.MinRole) {
		return Forbidden
	}

	return Allow
}

// # Guard Middleware

// PlaceholderFunc renders the loading page with the given status.
type PlaceholderFunc func(writer http.ResponseWriter, request *http.Request, status int)

// GuardOptions configures where the guard sends visitors.
type GuardOptions struct {
	LoginPath        string
	BusinessUnitPath string
	Placeholder      PlaceholderFunc
}

/*
Guard enforces policy on every request.

Protected children are rendered only on Allow. A redirect is a single
303 See Other whose body is the loading placeholder. API rules answer with
401 or 403 JSON errors instead.

Must be registered AFTER [LoadSession].
*/
func Guard(policy RoutePolicy, options GuardOptions) func(http.Handler) http.Handler {
	if options.LoginPath == "" {
		options.LoginPath = constants.LoginPath
	}
	if options.BusinessUnitPath == "" {
		options.BusinessUnitPath = constants.BusinessUnitPath
	}
	if options.Placeholder == nil {
		options.Placeholder = func(writer http.ResponseWriter, _ *http.Request, status int) {
			writer.WriteHeader(status)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			current, present := session.FromContext(request.Context())
			decision, rule := policy.evaluate(request, current, present)

			switch decision {
			case Allow:
				next.ServeHTTP(writer, request)

			case Loading:
				if rule.API {
					respond.Error(writer, request, apperr.ServiceUnavailable("Session is not ready yet"))
					return
				}
				writer.Header().Set("Cache-Control", "no-store")
				options.Placeholder(writer, request, http.StatusOK)

			case RedirectLogin:
				redirect(writer, request, options, options.LoginPath+"?"+url.Values{"next": {request.URL.RequestURI()}}.Encode())

			case RedirectBusinessUnit:
				redirect(writer, request, options, options.BusinessUnitPath)

			case Unauthorized:
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))

			case Forbidden:
				if !rule.API {
					options.Placeholder(writer, request, http.StatusForbidden)
					return
				}
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			}
		})
	}
}

// evaluate decides on every spelling of the request path the router may
// dispatch on and keeps the first refusal.
func (p RoutePolicy) evaluate(request *http.Request, current session.Session, present bool) (Decision, Rule) {
	var allowed Rule
	for i, candidate := range RequestPaths(request) {
		decision := p.Decide(candidate, current, present)
		rule, _ := p.Match(candidate)
		if decision != Allow {
			return decision, rule
		}
		if i == 0 {
			allowed = rule
		}
	}
	return Allow, allowed
}

// RequestPaths returns the cleaned decoded path of request, followed by the
// cleaned escaped path when the URL carries one that differs.
func RequestPaths(request *http.Request) []string {
	paths := []string{CleanPath(request.URL.Path)}
	if raw := request.URL.RawPath; raw != "" {
		if routed := CleanPath(raw); routed != paths[0] {
			paths = append(paths, routed)
		}
	}
	return paths
}

// CleanPath returns the canonical form of p: rooted, without repeated or
// trailing slashes and with dot segments resolved.
func CleanPath(p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func redirect(writer http.ResponseWriter, request *http.Request, options GuardOptions, location string) {
	writer.Header().Set("Location", location)
	writer.Header().Set("Cache-Control", "no-store")
	options.Placeholder(writer, request, http.StatusSeeOther)
}
