package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/mail"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	notificationWarning = "operation completed, but the notification email could not be sent"
	notificationFailure = "operation completed, but the notification could not be dispatched"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Message: message})
}

// respondNotified answers a committed mutation. A failed notification turns the
// response into 202 with a warning; the mutation is never rolled back.
func respondNotified(c *fiber.Ctx, logger *zap.Logger, status int, data any, notifyErr error) error {
	if notifyErr == nil {
		return respond(c, status, data)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.Envelope{Success: true, Data: data, Message: notifyFailed(c, logger, notifyErr)})
}

// notifyFailed logs a notification failure and returns the client warning.
// Mail transport failures are logged at warn, anything else at error.
func notifyFailed(c *fiber.Ctx, logger *zap.Logger, err error) string {
	if mail.IsSendEmailError(err) {
		logger.Warn("notification email not delivered", zap.String("path", c.Path()), zap.Error(err))
		return notificationWarning
	}
	logger.Error("notification not dispatched", zap.String("path", c.Path()), zap.Error(err))
	return notificationFailure
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if val := c.Query(key); val != "" {
		return &val
	}
	return nil
}
