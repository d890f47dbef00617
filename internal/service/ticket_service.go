package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Title              string   `json:"title" validate:"required,notblank,min=3,max=200"`
	Description        string   `json:"description" validate:"required,notblank,min=5,max=1000"`
	AttemptedSolutions []string `json:"attemptedSolutions" validate:"max=20,dive,notblank,max=500"`
	AdditionalInfo     string   `json:"additionalInfo" validate:"max=1000"`
}

// ResolveTicketInput carries the technician's solution.
type ResolveTicketInput struct {
	Solution string `json:"solution" validate:"required,notblank,max=2000"`
}

// TicketListFilter describes listing filters. Nil fields are ignored.
type TicketListFilter struct {
	UserID       *string
	TechnicianID *string
	Status       *domain.TicketStatus
	Limit        int
	Offset       int
}

// TicketService drives the open -> in_progress -> closed lifecycle.
type TicketService struct {
	tickets repository.TicketRepository
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// CreateTicket opens a ticket for userID. Titles are unique among open tickets.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input CreateTicketInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.AdditionalInfo = strings.TrimSpace(input.AdditionalInfo)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.tickets.FindOpenByTitle(ctx, input.Title); err == nil {
		return nil, openTitleConflict(input.Title)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError(err, "ticket")
	}

	attempted := make([]string, 0, len(input.AttemptedSolutions))
	for _, solution := range input.AttemptedSolutions {
		attempted = append(attempted, strings.TrimSpace(solution))
	}

	ticket := &domain.Ticket{
		Title:              input.Title,
		Description:        input.Description,
		Status:             domain.TicketStatusOpen,
		AttemptedSolutions: attempted,
		AdditionalInfo:     input.AdditionalInfo,
		UserID:             userID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, openTitleConflict(input.Title)
		}
		if apperrors.IsForeignKeyViolation(err) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, storeError(err, "ticket")
	}
	return ticket, nil
}

func (s *TicketService) GetTicketByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := requireID(id, "ticket"); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return ticket, nil
}

// ListTickets returns tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	if filter.UserID != nil {
		if err := requireID(*filter.UserID, "user"); err != nil {
			return nil, err
		}
	}
	if filter.TechnicianID != nil {
		if err := requireID(*filter.TechnicianID, "technician"); err != nil {
			return nil, err
		}
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("status must be one of [open in_progress closed]", nil)
	}

	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		UserID:       filter.UserID,
		TechnicianID: filter.TechnicianID,
		Status:       filter.Status,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return tickets, nil
}

// AcceptTicket assigns an open ticket to technicianID. Only one concurrent
// caller can win; the rest get a Conflict.
func (s *TicketService) AcceptTicket(ctx context.Context, id, technicianID string) (*domain.Ticket, error) {
	if err := requireID(id, "ticket"); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.Accept(ctx, id, technicianID)
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError(err, "ticket")
	}

	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	return nil, apperrors.NewConflict("ticket is not open", map[string]any{"status": current.Status})
}

// ResolveTicket closes an in-progress ticket. Only the assigned technician may
// resolve it.
func (s *TicketService) ResolveTicket(ctx context.Context, id, technicianID string, input ResolveTicketInput) (*domain.Ticket, error) {
	if err := requireID(id, "ticket"); err != nil {
		return nil, err
	}
	input.Solution = strings.TrimSpace(input.Solution)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Resolve(ctx, id, technicianID, input.Solution)
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError(err, "ticket")
	}

	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket")
	}
	if current.Status != domain.TicketStatusInProgress {
		return nil, apperrors.NewConflict("ticket is not in progress", map[string]any{"status": current.Status})
	}
	return nil, apperrors.NewForbidden("ticket is assigned to another technician")
}

// DeleteTicket removes a ticket regardless of status. Ownership is checked by the caller.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	if err := requireID(id, "ticket"); err != nil {
		return err
	}
	return storeError(s.tickets.Delete(ctx, id), "ticket")
}

// LinkRatingToTicket records ratingID on the ticket.
func (s *TicketService) LinkRatingToTicket(ctx context.Context, ticketID, ratingID string) error {
	return storeError(s.tickets.SetRating(ctx, ticketID, ratingID), "ticket")
}

func openTitleConflict(title string) error {
	return apperrors.NewConflict("an open ticket with this title already exists", map[string]any{"title": title})
}
