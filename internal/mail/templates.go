package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names an embedded email body.
type Template string

const (
	TemplateTicketConfirmation Template = "ticket_confirmation.html"
	TemplateTicketInProgress   Template = "ticket_in_progress.html"
	TemplateTicketClosed       Template = "ticket_closed.html"
	TemplateVerifyEmail        Template = "verify_email.html"
)

// Subjects used for each template.
var Subjects = map[Template]string{
	TemplateTicketConfirmation: "Ticket confirmation",
	TemplateTicketInProgress:   "Ticket in progress",
	TemplateTicketClosed:       "Ticket closed",
	TemplateVerifyEmail:        "Email verification",
}

// TicketEmail feeds the ticket templates.
type TicketEmail struct {
	Ticket          *domain.Ticket
	TechnicianName  string
	TechnicianEmail string
	Solution        string
	SentAt          time.Time
}

// VerificationEmail feeds the verify-email template.
type VerificationEmail struct {
	Name     string
	Code     string
	ValidFor time.Duration
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("mail").Funcs(template.FuncMap{
		"statusLabel": statusLabel,
		"formatTime": func(t time.Time) string {
			return t.UTC().Format("02/01/2006 15:04 UTC")
		},
		"minutes": func(d time.Duration) int {
			return int(d / time.Minute)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render returns the HTML body for name.
func (r *Renderer) Render(name Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(name), data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func statusLabel(status domain.TicketStatus) string {
	switch status {
	case domain.TicketStatusOpen:
		return "Open"
	case domain.TicketStatusInProgress:
		return "In progress"
	case domain.TicketStatusClosed:
		return "Resolved"
	default:
		return string(status)
	}
}
