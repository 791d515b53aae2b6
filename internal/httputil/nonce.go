package httputil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
)

type contextKey string

const nonceKey contextKey = "csp-nonce"

// GenerateNonce returns a per-request CSP nonce. The watch and embed pages
// carry inline player scripts, so the nonce is the only thing allowing them
// past a script-src policy without 'unsafe-inline'.
func GenerateNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate CSP nonce", "error", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// ContextWithNonce and NonceFromContext pass the nonce from the security
// middleware down to the page renderers that stamp it on script tags.

func ContextWithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey, nonce)
}

func NonceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(nonceKey).(string); ok {
		return v
	}
	return ""
}
