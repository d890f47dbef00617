package mail

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestRendererTemplates(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	ticket := &domain.Ticket{
		Title:       "PC won't boot",
		Description: "<b>black screen</b>",
		Status:      domain.TicketStatusOpen,
		CreatedAt:   time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	body, err := renderer.Render(TemplateTicketConfirmation, TicketEmail{Ticket: ticket})
	require.NoError(t, err)
	assert.Contains(t, body, "PC won&#39;t boot")
	assert.Contains(t, body, "&lt;b&gt;black screen&lt;/b&gt;")
	assert.Contains(t, body, "01/03/2025 10:30 UTC")
	assert.Contains(t, body, "Open")

	ticket.Status = domain.TicketStatusInProgress
	body, err = renderer.Render(TemplateTicketInProgress, TicketEmail{Ticket: ticket, TechnicianName: "Tina", TechnicianEmail: "tina@example.com"})
	require.NoError(t, err)
	assert.Contains(t, body, "Tina")
	assert.Contains(t, body, "tina@example.com")

	ticket.Status = domain.TicketStatusClosed
	body, err = renderer.Render(TemplateTicketClosed, TicketEmail{Ticket: ticket, TechnicianName: "Tina", Solution: "Reseated RAM", SentAt: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, body, "Reseated RAM")
	assert.Contains(t, body, "Resolved")

	body, err = renderer.Render(TemplateVerifyEmail, VerificationEmail{Name: "Ana", Code: "012345", ValidFor: 15 * time.Minute})
	require.NoError(t, err)
	assert.Contains(t, body, "012345")
	assert.Contains(t, body, "15 minutes")
}

func TestRendererUnknownTemplate(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, err = renderer.Render(Template("missing.html"), nil)
	assert.Error(t, err)
}

func TestSendEmailErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("notify: %w", &SendEmailError{To: "ana@example.com", Err: cause})

	assert.True(t, IsSendEmailError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsSendEmailError(cause))
}

func TestNewMailerWithoutHostLogsOnly(t *testing.T) {
	mailer := NewMailer(config.MailConfig{}, zap.NewNop())
	_, ok := mailer.(*LogMailer)
	require.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), "ana@example.com", "subject", "<p>hi</p>"))
}

func TestSMTPMailerFailuresAreSendEmailErrors(t *testing.T) {
	mailer := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: 1, From: "noreply@example.com", FromName: "Helpdesk"})

	err := mailer.Send(context.Background(), "ana@example.com", "subject", "<p>hi</p>")
	require.Error(t, err)
	assert.True(t, IsSendEmailError(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = mailer.Send(ctx, "ana@example.com", "subject", "<p>hi</p>")
	assert.True(t, IsSendEmailError(err))
	assert.ErrorIs(t, err, context.Canceled)
}
