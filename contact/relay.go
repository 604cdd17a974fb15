package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/smtp"
	"strings"
	"time"
)

// SMTPSink relays messages to a mailbox through an SMTP server.
type SMTPSink struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string // defaults to Username
	To       string

	// send is smtp.SendMail; replaced in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Deliver implements Sink.
func (s *SMTPSink) Deliver(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Host == "" || s.To == "" {
		return fmt.Errorf("contact: smtp sink is not configured")
	}
	port := s.Port
	if port == "" {
		port = "587"
	}
	from := s.From
	if from == "" {
		from = s.Username
	}
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(net.JoinHostPort(s.Host, port), auth, from, []string{s.To}, composeMail(from, s.To, m)); err != nil {
		return fmt.Errorf("contact: smtp relay: %w", err)
	}
	return nil
}

// composeMail builds the RFC 5322 message. Header values come from
// validated input but are still stripped of line breaks.
func composeMail(from, to string, m Message) []byte {
	clean := strings.NewReplacer("\r", " ", "\n", " ")
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Reply-To: %s\r\n", clean.Replace(m.Email))
	fmt.Fprintf(&b, "Subject: Portfolio contact: %s\r\n", clean.Replace(m.Name))
	fmt.Fprintf(&b, "Date: %s\r\n", m.ReceivedAt.Format(time.RFC1123Z))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "Name: %s\r\nEmail: %s\r\n\r\n", clean.Replace(m.Name), clean.Replace(m.Email))
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

// WebhookSink posts each message as JSON.
type WebhookSink struct {
	URL    string
	Client *http.Client
}

// NewWebhookSink returns a WebhookSink with a 10 second timeout.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

// Deliver implements Sink. Any non-2xx response is an error.
func (w *WebhookSink) Deliver(ctx context.Context, m Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("contact: encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("contact: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("contact: webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("contact: webhook returned %s", resp.Status)
	}
	return nil
}
