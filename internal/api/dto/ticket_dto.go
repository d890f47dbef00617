package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Status             domain.TicketStatus `json:"status"`
	AttemptedSolutions []string            `json:"attemptedSolutions"`
	AdditionalInfo     string              `json:"additionalInfo"`
	UserID             string              `json:"user_id"`
	TechnicianID       *string             `json:"technician_id"`
	Solution           *string             `json:"solution"`
	RatingID           *string             `json:"ratingId"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	attempted := ticket.AttemptedSolutions
	if attempted == nil {
		attempted = []string{}
	}
	return TicketResponse{
		ID:                 ticket.ID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		Status:             ticket.Status,
		AttemptedSolutions: attempted,
		AdditionalInfo:     ticket.AdditionalInfo,
		UserID:             ticket.UserID,
		TechnicianID:       ticket.TechnicianID,
		Solution:           ticket.Solution,
		RatingID:           ticket.RatingID,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
	}
}

func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}
