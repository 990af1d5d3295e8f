// Package mailer sends plain-text emails with an optional attachment over
// SMTP with implicit TLS.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when no SMTP server is configured.
var ErrNotConfigured = errors.New("SMTP server not configured")

// Config holds the SMTP settings. The sender address doubles as the login.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
}

// Message is an email to send.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	// Attachment is the path of a file to attach, if any.
	Attachment string
}

// Sender delivers messages through the configured server.
type Sender struct {
	config Config
	// auth is negotiated with the server from the mechanisms it offers.
	auth mail.SMTPAuthType
	// dial sends the message; replaced in tests.
	dial func(ctx context.Context, msg *mail.Msg) error
}

// NewSender creates a sender for cfg.
func NewSender(cfg Config) *Sender {
	s := &Sender{config: cfg, auth: mail.SMTPAuthAutoDiscover}
	s.dial = s.dialAndSend
	return s
}

// IsConfigured reports whether a server is set.
func (s *Sender) IsConfigured() bool {
	return s.config.Server != ""
}

// Build assembles the MIME message.
func (s *Sender) Build(message Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(message.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", message.From, err)
	}
	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", message.To, err)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Body)

	if message.Attachment != "" {
		msg.AttachFile(message.Attachment,
			mail.WithFileName(filepath.Base(message.Attachment)),
			mail.WithFileContentType(mail.TypeAppOctetStream),
		)
	}
	return msg, nil
}

// Send builds and delivers message.
func (s *Sender) Send(ctx context.Context, message Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}

	msg, err := s.Build(message)
	if err != nil {
		return err
	}
	if err := s.dial(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *Sender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(s.config.Server,
		mail.WithPort(s.config.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(s.auth),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
