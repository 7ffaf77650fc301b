package mailer

import (
	"context"
	"fmt"

	"lab-booking/config"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// SMTPNotifier sends HTML email through the configured SMTP relay
type SMTPNotifier struct {
	client   *mail.Client
	from     string
	fromName string
}

func NewSMTPNotifier(cfg config.SMTPConfig) (*SMTPNotifier, error) {
	client, err := mail.NewClient(
		cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize smtp client: %w", err)
	}

	return &SMTPNotifier{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
	}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, html string) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(n.fromName, n.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	return n.client.DialAndSendWithContext(ctx, msg)
}

// LogNotifier writes emails to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, html string) error {
	n.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"bytes":   len(html),
	}).Info("SMTP not configured, email logged instead of sent")
	return nil
}
