package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RatingsHandler exposes rating endpoints.
type RatingsHandler struct {
	ratings *service.RatingService
	tickets *service.TicketService
	logger  *zap.Logger
}

func NewRatingsHandler(ratings *service.RatingService, tickets *service.TicketService, logger *zap.Logger) *RatingsHandler {
	return &RatingsHandler{ratings: ratings, tickets: tickets, logger: logger}
}

// CreateRating POST /ratings/:id where id is the ticket. Only the owner of a
// closed ticket may rate it.
func (h *RatingsHandler) CreateRating(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req service.RatingScoreInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.tickets.GetTicketByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if ticket.UserID != principal.UserID {
		return apperrors.NewForbidden("only the ticket owner can rate it")
	}
	if ticket.Status != domain.TicketStatusClosed || ticket.TechnicianID == nil {
		return apperrors.NewValidationError("only closed tickets can be rated", map[string]any{"status": ticket.Status})
	}

	rating, err := h.ratings.CreateRating(c.UserContext(), service.CreateRatingInput{
		TicketID:     ticket.ID,
		UserID:       principal.UserID,
		UserName:     principal.Name,
		TechnicianID: *ticket.TechnicianID,
		Score:        req.Score,
		Comment:      req.Comment,
	})
	if err != nil {
		return err
	}

	if err := h.tickets.LinkRatingToTicket(c.UserContext(), ticket.ID, rating.ID); err != nil {
		h.logger.Warn("rating not linked to ticket",
			zap.String("ticket_id", ticket.ID),
			zap.String("rating_id", rating.ID),
			zap.Error(err))
	}
	return respond(c, fiber.StatusCreated, dto.NewRatingResponse(rating))
}

// GetRating GET /ratings/:id.
func (h *RatingsHandler) GetRating(c *fiber.Ctx) error {
	rating, err := h.ratings.GetRatingByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewRatingResponse(rating))
}

// GetRatingByTicket GET /ratings/ticket/:id.
func (h *RatingsHandler) GetRatingByTicket(c *fiber.Ctx) error {
	rating, err := h.ratings.GetRatingByTicketID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewRatingResponse(rating))
}

// ListByTechnician GET /ratings/technician/:id.
func (h *RatingsHandler) ListByTechnician(c *fiber.Ctx) error {
	technicianID := c.Params("id")
	ratings, err := h.ratings.GetRatings(c.UserContext(), service.RatingListFilter{TechnicianID: &technicianID})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewRatingResponses(ratings))
}

// DeleteRating DELETE /ratings/:id. Only the author may delete.
func (h *RatingsHandler) DeleteRating(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.ratings.DeleteRating(c.UserContext(), c.Params("id"), principal.UserID); err != nil {
		return err
	}
	return respondMessage(c, fiber.StatusOK, "rating deleted")
}
