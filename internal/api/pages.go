// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/finboard/internal/platform/ctxutil"
	"github.com/taibuivan/finboard/internal/platform/middleware"
	"github.com/taibuivan/finboard/internal/session"
	"github.com/taibuivan/finboard/web"
)

// PageRoutes lists every page served with the frontend shell.
var PageRoutes = []string{
	"/login",
	"/signup",
	"/select-business-unit",
	"/",
	"/dashboard",
	"/accounts",
	"/transactions",
	"/forecasts",
	"/reports/cash-flow",
	"/admin/users",
	"/admin/tenants",
	"/admin/groups",
	"/admin/subgroups",
}

// Pages renders the embedded HTML templates.
type Pages struct {
	shell   *template.Template
	loading *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	shell, err := template.ParseFS(web.Templates, "templates/shell.html")
	if err != nil {
		return nil, fmt.Errorf("api: parse shell template: %w", err)
	}

	loading, err := template.ParseFS(web.Templates, "templates/loading.html")
	if err != nil {
		return nil, fmt.Errorf("api: parse loading template: %w", err)
	}

	return &Pages{shell: shell, loading: loading}, nil
}

// Shell serves the frontend shell with the visitor session embedded.
func (p *Pages) Shell(writer http.ResponseWriter, request *http.Request) {
	current, ok := session.FromContext(request.Context())
	if !ok {
		current = session.Anonymous()
	}

	route := middleware.CleanPath(request.URL.Path)
	p.render(writer, request, p.shell, http.StatusOK, map[string]any{
		"Title":   pageTitle(route),
		"Path":    route,
		"Session": current,
	})
}

// Placeholder serves the loading page. A redirect status links to the
// Location header already set by the caller.
func (p *Pages) Placeholder(writer http.ResponseWriter, request *http.Request, status int) {
	p.render(writer, request, p.loading, status, map[string]any{
		"Location":  writer.Header().Get("Location"),
		"Forbidden": status == http.StatusForbidden,
	})
}

func (p *Pages) render(writer http.ResponseWriter, request *http.Request, page *template.Template, status int, data any) {
	var buffer bytes.Buffer
	if err := page.Execute(&buffer, data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "page_render_failed", slog.Any("error", err))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(status)
	_, _ = buffer.WriteTo(writer)
}

// pageTitle derives "Cash Flow" from "/reports/cash-flow".
func pageTitle(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "Dashboard"
	}

	words := strings.Split(last, "-")
	for index, word := range words {
		if word != "" {
			words[index] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}
