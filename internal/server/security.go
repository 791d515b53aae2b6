package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/reelgrid/reelgrid/internal/httputil"
)

type SecurityConfig struct {
	BaseURL         string
	StorageEndpoint string
}

// Platform player origins the watch page is allowed to frame and script.
const (
	frameSources  = "https://www.youtube.com https://www.youtube-nocookie.com https://player.vimeo.com https://www.dailymotion.com https:"
	scriptSources = "https://www.youtube.com"
)

func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := cfg.BaseURL != "" && hasHTTPS(cfg.BaseURL)

	storageSuffix := ""
	if cfg.StorageEndpoint != "" {
		storageSuffix = " " + cfg.StorageEndpoint
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), screen-wake-lock=(), display-capture=()")

			// Embed pages are meant to be framed by third-party sites;
			// everything else stays same-origin.
			frameAncestors := "'self'"
			if strings.HasPrefix(r.URL.Path, "/embed/") {
				frameAncestors = "*"
			} else {
				w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			}

			csp := fmt.Sprintf(
				"default-src 'self'; img-src 'self' data: https:%s; media-src 'self' data: blob: https:%s; script-src 'self' 'nonce-%s' %s; style-src 'self' 'nonce-%s'; connect-src 'self'%s; frame-src %s; frame-ancestors %s;",
				storageSuffix, storageSuffix, nonce, scriptSources, nonce, storageSuffix, frameSources, frameAncestors,
			)
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasHTTPS(baseURL string) bool {
	return len(baseURL) >= 8 && baseURL[:8] == "https://"
}
