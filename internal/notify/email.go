package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/Dan9191/gold-savings/internal/config"
	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/jordan-wright/email"
)

// ErrNoRecipient is returned when a notification has no email address
var ErrNoRecipient = errors.New("notification has no recipient")

// Email sends notifications via SMTP
type Email struct {
	from string
	send func(e *email.Email) error
}

// NewEmail creates an SMTP email strategy
func NewEmail(cfg *config.Config) *Email {
	addr := fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)
	auth := smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	return &Email{
		from: cfg.SenderEmail,
		send: func(e *email.Email) error { return e.Send(addr, auth) },
	}
}

func (s *Email) Name() string { return "email" }

// Deliver formats and sends the notification as a plain-text email
func (s *Email) Deliver(_ context.Context, n models.Notification) error {
	if n.Recipient == "" {
		return ErrNoRecipient
	}
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{n.Recipient}
	e.Subject = n.Title
	e.Text = []byte(n.Body + "\n\nBest regards,\nSavings Scheme Service")

	if err := s.send(e); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
