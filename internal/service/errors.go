package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// requireID rejects values that cannot be a stored id.
func requireID(id, resource string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid %s id", resource), map[string]any{"id": id})
	}
	return nil
}

// storeError maps repository failures onto the domain taxonomy for resource.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewUnavailable("storage did not respond in time, please retry", err)
	default:
		return err
	}
}
