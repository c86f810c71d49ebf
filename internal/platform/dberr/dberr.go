// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level storage errors and
// higher-level application errors.
package dberr

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/finboard/internal/platform/apperr"
)

var (
	// ErrNotFound is the standard error returned when a key or row doesn't exist.
	ErrNotFound = apperr.NotFound("Entry")
)

// Wrap inspects a storage error and wraps it into a meaningful [apperr.AppError].
// It hides driver details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping, whatever the backend
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) || errors.Is(err, redis.Nil) {
		return ErrNotFound
	}

	// 2. Everything else is a server-side failure
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
