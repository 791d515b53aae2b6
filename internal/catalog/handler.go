package catalog

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reelgrid/reelgrid/internal/database"
)

// ObjectStorage is the subset of the S3 client the catalog needs: presigned
// poster uploads and downloads, plus cleanup.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string, contentLength int64, expiry time.Duration) (string, error)
	GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (int64, string, error)
}

// GeoResolver annotates view records with a country code.
type GeoResolver interface {
	Lookup(ip string) (country, city string)
}

type Handler struct {
	db      database.DBTX
	storage ObjectStorage
	geo     GeoResolver
	baseURL string
}

func NewHandler(db database.DBTX, s ObjectStorage, baseURL string) *Handler {
	return &Handler{db: db, storage: s, baseURL: baseURL}
}

func (h *Handler) SetGeoResolver(g GeoResolver) {
	h.geo = g
}

func posterFileKey(contentID string) string {
	return fmt.Sprintf("posters/%s.jpg", contentID)
}

func viewerHash(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return fmt.Sprintf("%x", sum[:8])
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	return r.RemoteAddr
}

func deleteWithRetry(ctx context.Context, storage ObjectStorage, key string, maxAttempts int) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		lastErr = storage.DeleteObject(ctx, key)
		if lastErr == nil {
			return nil
		}
		slog.Error("storage: delete attempt failed", "attempt", attempt+1, "max_attempts", maxAttempts, "key", key, "error", lastErr)
	}
	return fmt.Errorf("all %d delete attempts failed for %s: %w", maxAttempts, key, lastErr)
}
