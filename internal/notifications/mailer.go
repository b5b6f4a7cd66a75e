package notifications

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/angelmondragon/phoneshop-backend/pkg/config"
	"github.com/angelmondragon/phoneshop-backend/pkg/logger"
)

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendgridMailer sends through the SendGrid v3 mail API.
type SendgridMailer struct {
	client   sendgridClient
	from     string
	fromName string
}

// NewSendgridMailer builds a mailer for the configured API key and sender.
func NewSendgridMailer(cfg config.SendgridConfig) (*SendgridMailer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("sendgrid api key required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from address required")
	}
	return &SendgridMailer{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		from:     cfg.DefaultFrom,
		fromName: cfg.FromName,
	}, nil
}

func (m *SendgridMailer) Send(ctx context.Context, msg *Message) error {
	email := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)
	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used when
// no SendGrid key is configured.
type LogMailer struct {
	logg *logger.Logger
}

func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, msg *Message) error {
	if m.logg == nil {
		return nil
	}
	ctx = m.logg.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	m.logg.Info(ctx, "email not delivered; sendgrid disabled")
	m.logg.Debug(ctx, msg.Text)
	return nil
}

// NewMailer picks SendGrid when configured and the log mailer otherwise.
func NewMailer(cfg config.SendgridConfig, logg *logger.Logger) (Mailer, error) {
	if !cfg.Enabled() {
		return NewLogMailer(logg), nil
	}
	mailer, err := NewSendgridMailer(cfg)
	if err != nil {
		return nil, err
	}
	return mailer, nil
}
