// Package contact defines what happens to a submitted contact form.
//
// The page only collects a name, an email address, and a message. Where the
// message goes is decided by a Sink chosen at startup: discard it, keep it in
// the local inbox, relay it by mail, or post it to a webhook.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field length limits, in characters.
const (
	MaxNameLen    = 120
	MaxEmailLen   = 254
	MaxMessageLen = 5000
)

// Message is one contact form submission.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Body       string    `json:"message"`
	RemoteIP   string    `json:"-"`
	ReceivedAt time.Time `json:"received_at"`
}

// Form is the raw input of the contact form.
type Form struct {
	Name    string
	Email   string
	Message string
}

// ValidationError maps form field names to a user-facing problem.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "contact: invalid form: " + strings.Join(parts, "; ")
}

// IsInvalid reports whether err is a ValidationError and returns it.
func IsInvalid(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Normalize trims every field.
func (f Form) Normalize() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// Validate checks a normalized form.
func (f Form) Validate() error {
	fields := make(map[string]string)
	switch n := utf8.RuneCountInString(f.Name); {
	case n == 0:
		fields["name"] = "Please tell me your name."
	case n > MaxNameLen:
		fields["name"] = fmt.Sprintf("Name must be at most %d characters.", MaxNameLen)
	}
	switch {
	case f.Email == "":
		fields["email"] = "An email address is required."
	case len(f.Email) > MaxEmailLen:
		fields["email"] = "Email address is too long."
	default:
		if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
			fields["email"] = "That does not look like an email address."
		}
	}
	switch n := utf8.RuneCountInString(f.Message); {
	case n == 0:
		fields["message"] = "Please write a message."
	case n > MaxMessageLen:
		fields["message"] = fmt.Sprintf("Message must be at most %d characters.", MaxMessageLen)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// NewMessage normalizes and validates f and stamps it with an id and time.
func NewMessage(f Form, remoteIP string, now time.Time) (Message, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Message{}, err
	}
	return Message{
		ID:         uuid.NewString(),
		Name:       f.Name,
		Email:      f.Email,
		Body:       f.Message,
		RemoteIP:   remoteIP,
		ReceivedAt: now.UTC(),
	}, nil
}

// Sink receives accepted messages.
type Sink interface {
	Deliver(ctx context.Context, m Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, m Message) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, m Message) error { return f(ctx, m) }

// Discard accepts every message and keeps nothing.
var Discard Sink = SinkFunc(func(context.Context, Message) error { return nil })

// Multi delivers to every sink, continuing past failures. The returned error
// joins all failures.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, m Message) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Deliver(ctx, m); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
