package domain

import "time"

const (
	MinRatingScore      = 1
	MaxRatingScore      = 5
	MaxRatingCommentLen = 500
)

// Rating is a requester's evaluation of a closed ticket. UserName and
// TechnicianID are copied at creation time and never resynchronized.
type Rating struct {
	ID           string
	TicketID     string
	UserID       string
	UserName     string
	TechnicianID string
	Score        int
	Comment      string
	CreatedAt    time.Time
}
