package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewUserResponse(user))
}

// List handles GET /users?role=&limit=&skip=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := service.UserListFilter{
		Limit:  parseInt(c.Query("limit"), 0),
		Offset: parseInt(c.Query("skip"), 0),
	}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filter.Role = &r
	}
	users, err := h.users.GetUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponses(users))
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUserByID(c.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponse(user))
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponse(user))
}

// Update handles PUT /users/:id. Users may only update themselves.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := selfOnly(c, "update")
	if err != nil {
		return err
	}
	var req service.UpdateUserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponse(user))
}

// Delete handles DELETE /users/:id. Users may only delete themselves.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := selfOnly(c, "delete")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return respondMessage(c, fiber.StatusOK, "user deleted")
}

func selfOnly(c *fiber.Ctx, action string) (string, error) {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return "", err
	}
	id := c.Params("id")
	if principal.UserID != id {
		return "", apperrors.NewForbidden("you can only " + action + " your own account")
	}
	return id, nil
}
