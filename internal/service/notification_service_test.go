package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mail"
	"github.com/spec-kit/helpdesk-service/internal/mail/mailtest"
)

func newNotificationFixture(t *testing.T) (events.Dispatcher, *mailtest.Recorder) {
	t.Helper()
	renderer, err := mail.NewRenderer()
	require.NoError(t, err)
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &mailtest.Recorder{}
	NewNotificationService(dispatcher, recorder, renderer, zap.NewNop()).RegisterHandlers()
	return dispatcher, recorder
}

func TestNotificationsForTicketLifecycle(t *testing.T) {
	dispatcher, recorder := newNotificationFixture(t)
	ctx := context.Background()
	tech := events.Actor{ID: uuid.NewString(), Name: "Tina", Email: "tina@example.com", Role: domain.RoleTechnician}
	solution := "Reseated RAM"
	ticket := &domain.Ticket{ID: uuid.NewString(), Title: "PC won't boot", Description: "Black screen", Status: domain.TicketStatusOpen, CreatedAt: time.Now()}

	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTicketCreated, events.Actor{}, events.TicketPayload{Ticket: ticket, OwnerEmail: "ana@example.com"})))
	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", last.To)
	assert.Equal(t, mail.Subjects[mail.TemplateTicketConfirmation], last.Subject)

	ticket.Status = domain.TicketStatusInProgress
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTicketAccepted, tech, events.TicketPayload{Ticket: ticket, OwnerEmail: "ana@example.com"})))
	last, _ = recorder.Last()
	assert.Equal(t, mail.Subjects[mail.TemplateTicketInProgress], last.Subject)
	assert.Contains(t, last.Body, "Tina")

	ticket.Status = domain.TicketStatusClosed
	ticket.Solution = &solution
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTicketResolved, tech, events.TicketPayload{Ticket: ticket, OwnerEmail: "ana@example.com"})))
	last, _ = recorder.Last()
	assert.Equal(t, mail.Subjects[mail.TemplateTicketClosed], last.Subject)
	assert.Contains(t, last.Body, "Reseated RAM")

	assert.Len(t, recorder.Messages(), 3)
}

func TestVerificationNotificationCarriesCode(t *testing.T) {
	dispatcher, recorder := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.New(events.EventEmailVerificationRequested, events.Actor{}, events.EmailVerificationPayload{
		UserID: uuid.NewString(), Name: "Ana", Email: "ana@example.com", Code: "004217", ValidFor: 15 * time.Minute,
	}))
	require.NoError(t, err)

	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", last.To)
	assert.Contains(t, last.Body, "004217")
}

func TestNotificationFailureIsSendEmailError(t *testing.T) {
	dispatcher, recorder := newNotificationFixture(t)
	recorder.Fail = errors.New("smtp down")
	ticket := &domain.Ticket{ID: uuid.NewString(), Title: "PC won't boot", Status: domain.TicketStatusOpen}

	err := dispatcher.Publish(context.Background(), events.New(events.EventTicketCreated, events.Actor{}, events.TicketPayload{Ticket: ticket, OwnerEmail: "ana@example.com"}))
	require.Error(t, err)
	assert.True(t, mail.IsSendEmailError(err))
}

func TestNotificationRejectsUnexpectedPayload(t *testing.T) {
	dispatcher, _ := newNotificationFixture(t)
	err := dispatcher.Publish(context.Background(), events.New(events.EventTicketAccepted, events.Actor{}, "oops"))
	require.Error(t, err)
	assert.False(t, mail.IsSendEmailError(err))
}
