// Package mailtest provides a Mailer that records messages instead of sending them.
package mailtest

import (
	"context"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/mail"
)

// Message is one recorded delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Recorder captures messages. When Fail is set every Send returns a
// mail.SendEmailError wrapping it.
type Recorder struct {
	mu       sync.Mutex
	messages []Message

	Fail error
}

func (r *Recorder) Send(_ context.Context, to, subject, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return &mail.SendEmailError{To: to, Err: r.Fail}
	}
	r.messages = append(r.messages, Message{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Messages returns a copy of what has been sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message and whether there was one.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

var _ mail.Mailer = (*Recorder)(nil)
