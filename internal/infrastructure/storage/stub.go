package storage

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// StubSlipStore hands out fake URLs and treats every key as uploaded.
// Used when storage is disabled in development.
type StubSlipStore struct {
	BaseURL string
	urls    objectURLs
}

// NewStubSlipStore creates a stub store under https://storage.example.com
func NewStubSlipStore() *StubSlipStore {
	base := "https://storage.example.com"
	return &StubSlipStore{BaseURL: base, urls: newObjectURLs(base + "/objects")}
}

// UploadURL returns a fake upload URL
func (s *StubSlipStore) UploadURL(ctx context.Context, key, contentType string) (*PresignedURL, error) {
	return s.presign(key, http.MethodPut, "/upload/")
}

// DownloadURL returns a fake download URL
func (s *StubSlipStore) DownloadURL(ctx context.Context, key string) (*PresignedURL, error) {
	return s.presign(key, http.MethodGet, "/download/")
}

func (s *StubSlipStore) presign(key, method, prefix string) (*PresignedURL, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(15 * time.Minute)
	return &PresignedURL{
		URL:       s.BaseURL + prefix + key + "?expires=" + expiresAt.Format(time.RFC3339),
		Method:    method,
		ExpiresAt: expiresAt,
	}, nil
}

// Exists always reports true for a non-empty key
func (s *StubSlipStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}

// ObjectURL returns the stable URL for key
func (s *StubSlipStore) ObjectURL(key string) string {
	return s.urls.url(key)
}

// KeyOf extracts the key from a URL produced by ObjectURL
func (s *StubSlipStore) KeyOf(objectURL string) (string, bool) {
	return s.urls.key(objectURL)
}
