package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ChatMessage is posted to the admin chat webhook. The text field is
// understood by Slack, Mattermost and Discord-compatible endpoints.
type ChatMessage struct {
	Text   string         `json:"text"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Webhook posts admin chat messages
type Webhook interface {
	Post(ctx context.Context, msg ChatMessage) error
}

// NewWebhook returns a resty-backed webhook when a URL is configured and
// a no-op otherwise
func NewWebhook(cfg config.NotificationConfig, logger *zap.Logger) Webhook {
	if cfg.WebhookURL == "" {
		return NopWebhook{}
	}
	return NewRestyWebhook(cfg.WebhookURL, cfg.WebhookTimeout, logger)
}

// RestyWebhook posts JSON with retries
type RestyWebhook struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewRestyWebhook creates a webhook client for url
func NewRestyWebhook(url string, timeout time.Duration, logger *zap.Logger) *RestyWebhook {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &RestyWebhook{client: client, url: url, logger: logger.Named("webhook")}
}

// Post sends msg; non-2xx answers are errors
func (w *RestyWebhook) Post(ctx context.Context, msg ChatMessage) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook responded %d: %s", resp.StatusCode(), resp.String())
	}

	w.logger.Debug("webhook delivered", zap.Int("status", resp.StatusCode()))
	return nil
}

// NopWebhook drops messages
type NopWebhook struct{}

// Post does nothing
func (NopWebhook) Post(context.Context, ChatMessage) error { return nil }

var (
	_ Webhook = (*RestyWebhook)(nil)
	_ Webhook = NopWebhook{}
)
