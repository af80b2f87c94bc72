package storage

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	infraconfig "github.com/dormdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func localConfig() *infraconfig.StorageConfig {
	return &infraconfig.StorageConfig{
		Bucket:            "dorm-slips",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3SlipStore_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *infraconfig.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &infraconfig.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &infraconfig.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &infraconfig.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3SlipStore(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		store, err := NewS3SlipStore(localConfig())
		require.NoError(t, err)
		assert.Equal(t, "dorm-slips", store.Bucket())
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})

	t.Run("zero expiration falls back to default", func(t *testing.T) {
		cfg := localConfig()
		cfg.PresignExpiration = 0
		store, err := NewS3SlipStore(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})

	t.Run("options override config", func(t *testing.T) {
		store, err := NewS3SlipStore(localConfig(), WithPresignExpiration(time.Hour), WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.presignExpiration)
	})
}

func TestS3SlipStore_UploadURL(t *testing.T) {
	store, err := NewS3SlipStore(localConfig())
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		_, err := store.UploadURL(context.Background(), "", "image/png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})

	t.Run("presigns a put", func(t *testing.T) {
		signed, err := store.UploadURL(context.Background(), "slips/abc/slip.png", "image/png")
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, signed.Method)
		assert.Contains(t, signed.URL, "localhost:9000")
		assert.Contains(t, signed.URL, "dorm-slips")
		assert.True(t, signed.ExpiresAt.After(time.Now()))
		assert.True(t, signed.ExpiresAt.Before(time.Now().Add(16*time.Minute)))
	})
}

func TestS3SlipStore_DownloadURL(t *testing.T) {
	store, err := NewS3SlipStore(localConfig())
	require.NoError(t, err)

	_, err = store.DownloadURL(context.Background(), "")
	require.Error(t, err)

	signed, err := store.DownloadURL(context.Background(), "slips/abc/slip.png")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, signed.Method)
	assert.True(t, strings.Contains(signed.URL, "slips/abc/slip.png") || strings.Contains(signed.URL, "slips%2Fabc%2Fslip.png"))
}

func TestS3SlipStore_EmptyKeys(t *testing.T) {
	store, err := NewS3SlipStore(localConfig())
	require.NoError(t, err)

	exists, err := store.Exists(context.Background(), "")
	require.Error(t, err)
	assert.False(t, exists)

	require.Error(t, store.Delete(context.Background(), ""))
}

func TestS3SlipStore_ObjectURLRoundTrip(t *testing.T) {
	t.Run("endpoint and bucket", func(t *testing.T) {
		store, err := NewS3SlipStore(localConfig())
		require.NoError(t, err)

		u := store.ObjectURL("slips/abc/slip.png")
		assert.Equal(t, "http://localhost:9000/dorm-slips/slips/abc/slip.png", u)
		key, ok := store.KeyOf(u)
		require.True(t, ok)
		assert.Equal(t, "slips/abc/slip.png", key)
	})

	t.Run("public base url", func(t *testing.T) {
		cfg := localConfig()
		cfg.PublicBaseURL = "https://cdn.dorm.test/"
		store, err := NewS3SlipStore(cfg)
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.dorm.test/slips/x.png", store.ObjectURL("slips/x.png"))
	})

	t.Run("foreign urls are not ours", func(t *testing.T) {
		store, err := NewS3SlipStore(localConfig())
		require.NoError(t, err)

		for _, u := range []string{
			"https://elsewhere.test/slip.png",
			"http://localhost:9000/dorm-slips/",
			"http://localhost:9000/dorm-slips/avatars/a.png",
		} {
			_, ok := store.KeyOf(u)
			assert.False(t, ok, u)
		}
	})
}

func TestSlipKey(t *testing.T) {
	billID := uuid.New()

	key, err := SlipKey(billID, "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "slips/"+billID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	_, err = SlipKey(billID, "text/html")
	require.Error(t, err)
}

// Integration tests need a MinIO or RustFS endpoint: DORM_STORAGE_IT_ENDPOINT=http://localhost:9000
func newIntegrationStore(t *testing.T) *S3SlipStore {
	t.Helper()
	endpoint := os.Getenv("DORM_STORAGE_IT_ENDPOINT")
	if endpoint == "" {
		t.Skip("DORM_STORAGE_IT_ENDPOINT not set")
	}

	store, err := NewS3SlipStore(&infraconfig.StorageConfig{
		Bucket:            "dorm-slips-it",
		AccessKey:         "rustfsadmin",
		SecretKey:         "rustfsadmin123",
		Endpoint:          endpoint,
		UsePathStyle:      true,
		PresignExpiration: 5 * time.Minute,
	}, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(context.Background()))
	require.NoError(t, store.EnsureBucket(context.Background()))
	return store
}

func TestIntegration_PresignedUpload(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	key, err := SlipKey(uuid.New(), "image/png")
	require.NoError(t, err)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	signed, err := store.UploadURL(ctx, key, "image/png")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, signed.Method, signed.URL, bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/png")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
}
