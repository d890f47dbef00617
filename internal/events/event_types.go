package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated              EventType = "ticket_created"
	EventTicketAccepted             EventType = "ticket_accepted"
	EventTicketResolved             EventType = "ticket_resolved"
	EventEmailVerificationRequested EventType = "email_verification_requested"
)

// Actor is the authenticated caller that caused the event.
type Actor struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ActorFromIdentity copies token claims into an Actor.
func ActorFromIdentity(identity domain.Identity) Actor {
	return Actor{ID: identity.UserID, Name: identity.Name, Email: identity.Email, Role: identity.Role}
}

// Event represents a domain event emitted by controllers after a committed change.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketPayload carries the ticket as committed and the address of its owner.
// Used by created, accepted and resolved events.
type TicketPayload struct {
	Ticket     *domain.Ticket `json:"ticket"`
	OwnerEmail string         `json:"owner_email"`
}

// EmailVerificationPayload carries a freshly issued verification code.
type EmailVerificationPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Code     string        `json:"-"`
	ValidFor time.Duration `json:"valid_for"`
}
