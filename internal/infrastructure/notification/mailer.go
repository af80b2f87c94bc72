// Package notification delivers tenant emails through SendGrid and admin
// chat messages through an incoming webhook.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const sendGridEndpoint = "/v3/mail/send"

// ErrNoRecipient is returned for a message without an address
var ErrNoRecipient = errors.New("email has no recipient")

// Email is a rendered message for one recipient
type Email struct {
	ToName    string
	ToAddress string
	Subject   string
	Text      string
	HTML      string
}

// Mailer sends emails
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// NewMailer returns a SendGrid mailer when an API key is configured and a
// log-only mailer otherwise
func NewMailer(cfg config.NotificationConfig, appName string, logger *zap.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Info("SendGrid API key not set, emails will only be logged")
		return NewLogMailer(logger)
	}
	return NewSendGridMailer(cfg, appName, logger)
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	logger     *zap.Logger
}

// NewSendGridMailer creates a SendGrid mailer
func NewSendGridMailer(cfg config.NotificationConfig, appName string, logger *zap.Logger) *SendGridMailer {
	host := cfg.SendGridHost
	if host == "" {
		host = "https://api.sendgrid.com"
	}
	prefix := ""
	if appName != "" {
		prefix = "[" + appName + "] "
	}
	return &SendGridMailer{
		key:        cfg.SendGridAPIKey,
		host:       host,
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		subjPrefix: prefix,
		logger:     logger.Named("sendgrid"),
	}
}

// Send delivers msg; a 4xx/5xx answer is an error
func (m *SendGridMailer) Send(ctx context.Context, msg Email) error {
	if msg.ToAddress == "" {
		return ErrNoRecipient
	}

	req := sendgrid.GetRequest(m.key, sendGridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}

	m.logger.Debug("email sent",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.Int("status", res.StatusCode))
	return nil
}

func (m *SendGridMailer) prepare(msg Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}

// LogMailer writes emails to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

// Send logs msg
func (m *LogMailer) Send(ctx context.Context, msg Email) error {
	if msg.ToAddress == "" {
		return ErrNoRecipient
	}
	m.logger.Info("email (not sent)",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text))
	return nil
}

var (
	_ Mailer = (*SendGridMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
