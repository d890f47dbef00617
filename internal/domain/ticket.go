package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// TechnicianID is set iff Status is in_progress or closed; Solution is set iff
// Status is closed.
type Ticket struct {
	ID                 string
	Title              string
	Description        string
	Status             TicketStatus
	AttemptedSolutions []string
	AdditionalInfo     string
	UserID             string
	TechnicianID       *string
	Solution           *string
	RatingID           *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AssignedTo reports whether the ticket is held by the given technician.
func (t *Ticket) AssignedTo(technicianID string) bool {
	return t.TechnicianID != nil && *t.TechnicianID == technicianID
}
