package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RequireRole authenticates the caller and then rejects identities whose role
// differs from role.
func (m *AuthMiddleware) RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.authenticate(c)
		if err != nil {
			return err
		}
		if principal.Role != role {
			return apperrors.NewForbidden("access restricted to role " + string(role))
		}
		return c.Next()
	}
}
