// Package storage keeps payment slip images in S3-compatible object storage.
package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dormdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const slipPrefix = "slips"

// SlipContentTypes maps accepted slip content types to file extensions
var SlipContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// PresignedURL is a time-limited URL for a direct client upload or download
type PresignedURL struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SlipKey builds the object key for a new slip of billID
func SlipKey(billID uuid.UUID, contentType string) (string, error) {
	ext, ok := SlipContentTypes[strings.ToLower(contentType)]
	if !ok {
		return "", shared.NewValidationError(fmt.Sprintf("Unsupported slip content type: %s", contentType))
	}
	return path.Join(slipPrefix, billID.String(), uuid.NewString()+ext), nil
}

// objectURLs maps keys to stable object URLs and back
type objectURLs struct {
	base string
}

func newObjectURLs(base string) objectURLs {
	return objectURLs{base: strings.TrimRight(base, "/")}
}

func (o objectURLs) url(key string) string {
	return o.base + "/" + strings.TrimLeft(key, "/")
}

func (o objectURLs) key(objectURL string) (string, bool) {
	rest, ok := strings.CutPrefix(objectURL, o.base+"/")
	if !ok || rest == "" || !strings.HasPrefix(rest, slipPrefix+"/") {
		return "", false
	}
	return rest, true
}
