package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RatingResponse is the public view of a rating.
type RatingResponse struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	TechnicianID string    `json:"technician_id"`
	Score        int       `json:"score"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewRatingResponse(rating *domain.Rating) RatingResponse {
	return RatingResponse{
		ID:           rating.ID,
		TicketID:     rating.TicketID,
		UserID:       rating.UserID,
		UserName:     rating.UserName,
		TechnicianID: rating.TechnicianID,
		Score:        rating.Score,
		Comment:      rating.Comment,
		CreatedAt:    rating.CreatedAt,
	}
}

func NewRatingResponses(ratings []domain.Rating) []RatingResponse {
	out := make([]RatingResponse, 0, len(ratings))
	for i := range ratings {
		out = append(out, NewRatingResponse(&ratings[i]))
	}
	return out
}
