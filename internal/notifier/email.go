package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/myconcall-sys/myconcall/internal/config"
)

// emailNotifier sends the run summary over SMTP.
type emailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewEmail creates an email notifier from SMTP settings.
func NewEmail(cfg config.SMTP) Notifier {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &emailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		to:     cfg.To,
	}
}

// Send delivers one plain-text message.
func (n *emailNotifier) Send(ctx context.Context, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}
	return nil
}
