// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/finboard/internal/platform/apperr"
	"github.com/taibuivan/finboard/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "get"))

	for _, missing := range []error{pgx.ErrNoRows, sql.ErrNoRows, redis.Nil} {
		assert.ErrorIs(t, dberr.Wrap(missing, "get"), dberr.ErrNotFound)
	}

	cause := errors.New("connection reset")
	wrapped := dberr.Wrap(cause, "kv set")
	ae := apperr.As(wrapped)
	if assert.NotNil(t, ae) {
		assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
		assert.ErrorIs(t, wrapped, cause)
	}
}
