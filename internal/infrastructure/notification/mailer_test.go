package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sendGridCapture struct {
	auth string
	path string
	body map[string]any
}

func newSendGridServer(t *testing.T, status int) (*httptest.Server, *sendGridCapture) {
	t.Helper()
	captured := &sendGridCapture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.body)
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func testNotificationConfig(host string) config.NotificationConfig {
	return config.NotificationConfig{
		SendGridAPIKey: "SG.test",
		SendGridHost:   host,
		FromEmail:      "office@dorm.test",
		FromName:       "Dorm Office",
	}
}

func TestSendGridMailer_Send(t *testing.T) {
	srv, captured := newSendGridServer(t, http.StatusAccepted)
	mailer := NewSendGridMailer(testNotificationConfig(srv.URL), "Dormdesk", zap.NewNop())

	err := mailer.Send(context.Background(), Email{
		ToName:    "Somchai",
		ToAddress: "somchai@example.com",
		Subject:   "Your bill for 2025-01",
		Text:      "Total 6300.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer SG.test", captured.auth)
	assert.Equal(t, "/v3/mail/send", captured.path)

	from := captured.body["from"].(map[string]any)
	assert.Equal(t, "office@dorm.test", from["email"])

	personalizations := captured.body["personalizations"].([]any)
	require.Len(t, personalizations, 1)
	p := personalizations[0].(map[string]any)
	assert.Equal(t, "[Dormdesk] Your bill for 2025-01", p["subject"])
	to := p["to"].([]any)[0].(map[string]any)
	assert.Equal(t, "somchai@example.com", to["email"])

	content := captured.body["content"].([]any)
	assert.Len(t, content, 1, "html part is omitted when empty")
}

func TestSendGridMailer_Failures(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		srv, _ := newSendGridServer(t, http.StatusBadRequest)
		mailer := NewSendGridMailer(testNotificationConfig(srv.URL), "", zap.NewNop())

		err := mailer.Send(context.Background(), Email{ToAddress: "a@example.com", Subject: "s", Text: "t"})
		assert.ErrorContains(t, err, "sendgrid responded 400")
	})

	t.Run("no recipient", func(t *testing.T) {
		mailer := NewSendGridMailer(testNotificationConfig("http://127.0.0.1:1"), "", zap.NewNop())
		err := mailer.Send(context.Background(), Email{Subject: "s"})
		assert.ErrorIs(t, err, ErrNoRecipient)
	})
}

func TestNewMailer(t *testing.T) {
	assert.IsType(t, &LogMailer{}, NewMailer(config.NotificationConfig{}, "Dormdesk", zap.NewNop()))
	assert.IsType(t, &SendGridMailer{}, NewMailer(testNotificationConfig(""), "Dormdesk", zap.NewNop()))
}

func TestLogMailer_Send(t *testing.T) {
	mailer := NewLogMailer(zap.NewNop())

	assert.NoError(t, mailer.Send(context.Background(), Email{ToAddress: "a@example.com", Subject: "s"}))
	assert.ErrorIs(t, mailer.Send(context.Background(), Email{}), ErrNoRecipient)
}
