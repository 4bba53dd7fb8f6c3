package lead

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

// SMTPConfig holds the settings used to notify sales about new leads.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// Notifier emails sales whenever a lead is captured.
type Notifier struct {
	cfg    SMTPConfig
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewNotifier(cfg SMTPConfig, logger *logrus.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (n *Notifier) Submit(_ context.Context, l Lead) error {
	e := n.message(l)

	addr := fmt.Sprintf("%s:%s", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := n.send(e, addr, auth); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}

	n.logger.WithField("to", n.cfg.To).Info("lead notification sent")
	return nil
}

func (n *Notifier) message(l Lead) *email.Email {
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{n.cfg.To}
	e.Subject = "New ROI calculator callback request"

	body := fmt.Sprintf("A prospect asked for a callback.\n\nEmail: %s\n", l.Email)
	body += fmt.Sprintf("Scenario: %s\n", l.Mode)
	body += fmt.Sprintf("Estimated annual savings: $%s\n", roi.Money(l.Savings))
	body += fmt.Sprintf("Submitted: %s\n", l.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	e.Text = []byte(body)
	return e
}
