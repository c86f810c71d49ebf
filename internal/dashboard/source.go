// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/finboard/internal/platform/ctxutil"
)

// Source is one strategy for obtaining a dashboard section.
type Source[T any] interface {
	Name() string
	Fetch(ctx context.Context, query Query) (T, error)
}

type sourceFunc[T any] struct {
	name  string
	fetch func(ctx context.Context, query Query) (T, error)
}

// NewSource adapts a function into a [Source].
func NewSource[T any](name string, fetch func(ctx context.Context, query Query) (T, error)) Source[T] {
	return sourceFunc[T]{name: name, fetch: fetch}
}

func (s sourceFunc[T]) Name() string { return s.name }

func (s sourceFunc[T]) Fetch(ctx context.Context, query Query) (T, error) {
	return s.fetch(ctx, query)
}

// Attempt records one failed source of a chain.
type Attempt struct {
	Source string
	Err    error
}

// ExhaustedError is returned when every source of a chain failed.
type ExhaustedError struct {
	Section  string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", attempt.Source, attempt.Err))
	}
	return fmt.Sprintf("dashboard: %s unavailable (%s)", e.Section, strings.Join(parts, "; "))
}

// Unwrap exposes every attempt's error to [errors.Is] and [errors.As].
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		errs = append(errs, attempt.Err)
	}
	return errs
}

// Chain tries its sources in order.
type Chain[T any] struct {
	section string
	sources []Source[T]
}

// NewChain creates a chain for section. The first source is the preferred one.
func NewChain[T any](section string, sources ...Source[T]) Chain[T] {
	return Chain[T]{section: section, sources: sources}
}

// Section returns the section name.
func (c Chain[T]) Section() string { return c.section }

/*
Fetch returns the first successful source result.

Returns:
  - T: The result of the first source that succeeded
  - error: *ExhaustedError when every source failed
*/
func (c Chain[T]) Fetch(ctx context.Context, query Query) (T, error) {
	logger := ctxutil.GetLogger(ctx)
	exhausted := &ExhaustedError{Section: c.section}

	for index, source := range c.sources {
		result, err := source.Fetch(ctx, query)
		if err == nil {
			if index > 0 {
				logger.InfoContext(ctx, "dashboard_fallback_used",
					slog.String("section", c.section),
					slog.String("source", source.Name()),
					slog.Int("year", query.Year),
				)
			}
			return result, nil
		}

		logger.WarnContext(ctx, "dashboard_source_failed",
			slog.String("section", c.section),
			slog.String("source", source.Name()),
			slog.Int("year", query.Year),
			slog.Any("error", err),
		)
		exhausted.Attempts = append(exhausted.Attempts, Attempt{Source: source.Name(), Err: err})
	}

	if len(exhausted.Attempts) == 0 {
		exhausted.Attempts = append(exhausted.Attempts, Attempt{Source: "none", Err: errors.New("no source configured")})
	}

	var zero T
	return zero, exhausted
}
