// Package mail delivers transactional email. Delivery is best effort: callers
// enqueue messages on a Dispatcher and never see transport errors.
package mail

import (
	"context"
	"log/slog"

	"learnstudio/internal/config"

	"github.com/samber/oops"
	gomail "github.com/wneessen/go-mail"
)

// Mailer sends one HTML message
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer sends through an authenticated SMTP relay
type SMTPMailer struct {
	from   string
	client *gomail.Client
}

// NewSMTPMailer builds a client for cfg. Port 465 uses implicit TLS, any other port STARTTLS.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Email),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(cfg.Server, opts...)
	if err != nil {
		return nil, oops.Code("SMTP_CONFIG_INVALID").With("server", cfg.Server).Wrap(err)
	}
	return &SMTPMailer{from: cfg.Email, client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return oops.Code("MAIL_BAD_SENDER").With("from", m.from).Wrap(err)
	}
	if err := msg.To(to); err != nil {
		return oops.Code("MAIL_BAD_RECIPIENT").With("to", to).Wrap(err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("to", to).Wrap(err)
	}
	return nil
}

// LogMailer stands in for SMTP in development. Bodies are never logged since they hold codes.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	m.logger.InfoContext(ctx, "smtp not configured, mail not delivered", "to", to, "subject", subject)
	return nil
}
