package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"domain passthrough", NewConflict("taken", nil), http.StatusConflict, "CONFLICT"},
		{"wrapped domain", fmt.Errorf("wrap: %w", NewForbidden("nope")), http.StatusForbidden, "FORBIDDEN"},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, "NOT_FOUND"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "TIMEOUT"},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "CONFLICT"},
		{"foreign key violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), http.StatusConflict, "CONFLICT"},
		{"fiber error", fiber.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestInternalErrorIsRedacted(t *testing.T) {
	de := ToDomainError(errors.New("pq: password authentication failed for user admin"))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, de, "password authentication failed")
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.False(t, IsNotFound(NewConflict("x", nil)))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, HasStatus(NewValidationError("bad", nil), http.StatusBadRequest))
}
