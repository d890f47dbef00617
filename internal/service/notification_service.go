package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mail"
)

// NotificationService turns domain events into emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	renderer   *mail.Renderer
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, renderer *mail.Renderer, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		renderer:   renderer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAccepted, n.handleTicketAccepted)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
	n.dispatcher.Subscribe(events.EventEmailVerificationRequested, n.handleVerificationRequested)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, err := ticketPayload(event)
	if err != nil {
		return err
	}
	return n.deliver(ctx, event, payload.OwnerEmail, mail.TemplateTicketConfirmation, mail.TicketEmail{
		Ticket: payload.Ticket,
		SentAt: event.Timestamp,
	})
}

func (n *NotificationService) handleTicketAccepted(ctx context.Context, event events.Event) error {
	payload, err := ticketPayload(event)
	if err != nil {
		return err
	}
	return n.deliver(ctx, event, payload.OwnerEmail, mail.TemplateTicketInProgress, mail.TicketEmail{
		Ticket:          payload.Ticket,
		TechnicianName:  event.Actor.Name,
		TechnicianEmail: event.Actor.Email,
		SentAt:          event.Timestamp,
	})
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	payload, err := ticketPayload(event)
	if err != nil {
		return err
	}
	data := mail.TicketEmail{
		Ticket:          payload.Ticket,
		TechnicianName:  event.Actor.Name,
		TechnicianEmail: event.Actor.Email,
		SentAt:          event.Timestamp,
	}
	if payload.Ticket.Solution != nil {
		data.Solution = *payload.Ticket.Solution
	}
	return n.deliver(ctx, event, payload.OwnerEmail, mail.TemplateTicketClosed, data)
}

func (n *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.EmailVerificationPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	validFor := payload.ValidFor
	if validFor <= 0 {
		validFor = 15 * time.Minute
	}
	return n.deliver(ctx, event, payload.Email, mail.TemplateVerifyEmail, mail.VerificationEmail{
		Name:     payload.Name,
		Code:     payload.Code,
		ValidFor: validFor,
	})
}

// deliver renders and sends one message. Every failure is reported as a
// mail.SendEmailError so publishers can degrade instead of failing.
func (n *NotificationService) deliver(ctx context.Context, event events.Event, to string, tmpl mail.Template, data any) error {
	body, err := n.renderer.Render(tmpl, data)
	if err == nil {
		err = n.mailer.Send(ctx, to, mail.Subjects[tmpl], body)
	}
	if err == nil {
		n.logger.Debug("notification sent", zap.String("event_type", string(event.Type)), zap.String("to", to))
		return nil
	}

	n.logger.Warn("notification failed",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("to", to),
		zap.Error(err))
	if mail.IsSendEmailError(err) {
		return err
	}
	return &mail.SendEmailError{To: to, Err: err}
}

func ticketPayload(event events.Event) (events.TicketPayload, error) {
	payload, ok := event.Payload.(events.TicketPayload)
	if !ok || payload.Ticket == nil {
		return events.TicketPayload{}, fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return payload, nil
}
