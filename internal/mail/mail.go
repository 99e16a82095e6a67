// Package mail delivers account mails over SMTP, or logs them when no relay
// is configured.
package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message is an outgoing mail.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig describes the relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	NoTLS    bool
}

// SMTPMailer sends through an SMTP relay with go-mail.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
	send   func(client *gomail.Client, msg *gomail.Msg) error
}

// NewSMTPMailer validates cfg and returns a mailer.
func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail: from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
		send: func(client *gomail.Client, msg *gomail.Msg) error {
			return client.DialAndSend(msg)
		},
	}, nil
}

func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	out.Subject(msg.Subject)
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("mail: from: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: to: %w", err)
	}
	contentType := gomail.TypeTextPlain
	if msg.HTML {
		contentType = gomail.TypeTextHTML
	}
	out.SetBodyString(contentType, msg.Body)
	out.SetCharset(gomail.CharsetUTF8)
	return out, nil
}

func (m *SMTPMailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{}
	if m.cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(m.cfg.Port))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		)
	}
	if m.cfg.NoTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	return gomail.NewClient(m.cfg.Host, opts...)
}

// Send delivers msg.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	client, err := m.client()
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}
	m.logger.Info("sending mail", zap.String("subject", msg.Subject), zap.String("to", msg.To))
	if err := m.send(client, out); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

// LogMailer writes messages to the logger instead of sending them.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("mail not sent, no smtp relay configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// PasswordReset composes the reset mail for link.
func PasswordReset(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your Track Journal password",
		Body: "We received a request to reset the password for your Track Journal account.\n\n" +
			"Open the link below to choose a new password:\n\n" + link + "\n\n" +
			"If you did not ask for this, you can ignore this mail.\n",
	}
}
