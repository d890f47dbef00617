package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AuthHandler exposes login and email verification endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	verification *service.VerificationService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, verification *service.VerificationService, dispatcher events.Dispatcher, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, verification: verification, dispatcher: dispatcher, logger: logger}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.LoginResponse{
		Token:     result.Token.Value,
		ExpiresAt: result.Token.ExpiresAt,
		User:      dto.NewUserResponse(result.User),
	})
}

// RequestVerification handles POST /auth/verify-email/request/:id and mails a
// fresh code to the account's address.
func (h *AuthHandler) RequestVerification(c *fiber.Ctx) error {
	var req service.VerificationRequestInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, code, err := h.verification.RequestVerification(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}

	event := events.New(events.EventEmailVerificationRequested, events.Actor{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
		events.EmailVerificationPayload{
			UserID:   user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Code:     code.Code,
			ValidFor: h.verification.TTL(),
		})
	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		notifyFailed(c, h.logger.With(zap.String("user_id", user.ID)), err)
		return c.Status(fiber.StatusAccepted).JSON(dto.Envelope{
			Success: true,
			Message: "verification code created, but the email could not be sent; please request a new code",
		})
	}
	return respondMessage(c, fiber.StatusOK, "verification code sent")
}

// ConfirmVerification handles POST /auth/verify-email/confirm/:id.
func (h *AuthHandler) ConfirmVerification(c *fiber.Ctx) error {
	var req service.VerificationConfirmInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.verification.ConfirmVerification(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponse(user))
}
