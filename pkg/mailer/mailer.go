package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/promolink/promolink-backend/pkg/config"
	"github.com/promolink/promolink-backend/pkg/logger"
)

// Email is a single outbound message.
type Email struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Sender sends transactional email. Callers treat failures as
// best-effort: log and move on, never retry into the provider.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

type sendgridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logg   *logger.Logger
}

// New builds a SendGrid-backed sender, or a no-op sender when the API
// key is absent so environments without email credentials keep working.
func New(cfg config.SendgridConfig, logg *logger.Logger) Sender {
	if !cfg.Configured() {
		return &noopSender{logg: logg}
	}
	return &sendgridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail("Promolink", cfg.DefaultFrom),
		logg:   logg,
	}
}

func (s *sendgridSender) Send(ctx context.Context, msg Email) error {
	if msg.To == "" {
		return errors.New("recipient email is required")
	}
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(s.from, msg.Subject, to, msg.PlainText, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type noopSender struct {
	logg *logger.Logger
}

func (n *noopSender) Send(ctx context.Context, msg Email) error {
	if n.logg != nil {
		fields := map[string]any{"to": msg.To, "subject": msg.Subject}
		n.logg.Info(n.logg.WithFields(ctx, fields), "email provider not configured, skipping send")
	}
	return nil
}
