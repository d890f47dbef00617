package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Mailer delivers rendered HTML messages.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SendEmailError reports a failed delivery. The operation that triggered the
// message has already been committed when this is returned.
type SendEmailError struct {
	To  string
	Err error
}

func (e *SendEmailError) Error() string {
	return fmt.Sprintf("could not send email to %s: %v", e.To, e.Err)
}

func (e *SendEmailError) Unwrap() error {
	return e.Err
}

// IsSendEmailError reports whether err contains a SendEmailError.
func IsSendEmailError(err error) bool {
	var sendErr *SendEmailError
	return errors.As(err, &sendErr)
}

// NewMailer returns an SMTP mailer, or a log-only mailer when no host is configured.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		logger.Warn("SMTP host not configured, emails will only be logged")
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends through an SMTP relay. Port 465 implies implicit TLS.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPMailer builds the dialer from configuration.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	m := gomail.NewMessage()
	if cfg.FromName != "" {
		from = m.FormatAddress(from, cfg.FromName)
	}
	return &SMTPMailer{
		from:   from,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return &SendEmailError{To: to, Err: err}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return &SendEmailError{To: to, Err: err}
		}
		return nil
	case <-ctx.Done():
		return &SendEmailError{To: to, Err: ctx.Err()}
	}
}

// LogMailer only logs outgoing messages.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	l.logger.Info("email delivery skipped", zap.String("to", to), zap.String("subject", subject))
	return nil
}
