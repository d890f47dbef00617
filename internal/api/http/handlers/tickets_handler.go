package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets    *service.TicketService
	users      *service.UserService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, users *service.UserService, dispatcher events.Dispatcher, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, users: users, dispatcher: dispatcher, logger: logger}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req service.CreateTicketInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), principal.UserID, req)
	if err != nil {
		return err
	}

	notifyErr := h.dispatcher.Publish(c.UserContext(), events.New(events.EventTicketCreated,
		events.ActorFromIdentity(principal.Identity),
		events.TicketPayload{Ticket: ticket, OwnerEmail: principal.Email}))
	return respondNotified(c, h.logger, fiber.StatusCreated, dto.NewTicketResponse(ticket), notifyErr)
}

// ListTickets GET /tickets?user=&technician=&status=&limit=&skip=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{
		UserID:       optionalQuery(c, "user"),
		TechnicianID: optionalQuery(c, "technician"),
		Limit:        parseInt(c.Query("limit"), 0),
		Offset:       parseInt(c.Query("skip"), 0),
	}
	if status := c.Query("status"); status != "" {
		s := domain.TicketStatus(status)
		filter.Status = &s
	}
	tickets, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewTicketResponses(tickets))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicketByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewTicketResponse(ticket))
}

// DeleteTicket DELETE /tickets/:id. Only the owner may delete.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicketByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if ticket.UserID != principal.UserID {
		return apperrors.NewForbidden("only the ticket owner can delete it")
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), ticket.ID); err != nil {
		return err
	}
	return respondMessage(c, fiber.StatusOK, "ticket deleted")
}

// AcceptTicket PATCH /tickets/accept/:id.
func (h *TicketsHandler) AcceptTicket(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.AcceptTicket(c.UserContext(), c.Params("id"), principal.UserID)
	if err != nil {
		return err
	}
	notifyErr := h.notifyOwner(c.UserContext(), events.EventTicketAccepted, principal, ticket)
	return respondNotified(c, h.logger, fiber.StatusOK, dto.NewTicketResponse(ticket), notifyErr)
}

// ResolveTicket PATCH /tickets/resolve/:id.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req service.ResolveTicketInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.ResolveTicket(c.UserContext(), c.Params("id"), principal.UserID, req)
	if err != nil {
		return err
	}
	notifyErr := h.notifyOwner(c.UserContext(), events.EventTicketResolved, principal, ticket)
	return respondNotified(c, h.logger, fiber.StatusOK, dto.NewTicketResponse(ticket), notifyErr)
}

func (h *TicketsHandler) notifyOwner(ctx context.Context, eventType events.EventType, principal *auth.Principal, ticket *domain.Ticket) error {
	owner, err := h.users.GetUserByID(ctx, ticket.UserID)
	if err != nil {
		return err
	}
	return h.dispatcher.Publish(ctx, events.New(eventType,
		events.ActorFromIdentity(principal.Identity),
		events.TicketPayload{Ticket: ticket, OwnerEmail: owner.Email}))
}
