package catalog

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reelgrid/reelgrid/internal/httputil"
	"github.com/reelgrid/reelgrid/internal/source"
)

type embedPageData struct {
	Title       string
	PlaybackURL template.URL
	Native      bool
	ContentID   string
	Nonce       string
	BaseURL     string
}

// The embed page is the passive rendition: always platform or native chrome,
// never the custom controls, so it works inside any third-party page.
var embedPageTemplate = template.Must(template.New("embed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        html, body { width: 100%; height: 100%; overflow: hidden; background: #0f172a; }
        .container {
            display: flex;
            flex-direction: column;
            width: 100%;
            height: 100%;
        }
        .video-wrapper {
            flex: 1;
            min-height: 0;
            display: flex;
            align-items: center;
            justify-content: center;
            background: #000;
        }
        video, iframe {
            width: 100%;
            height: 100%;
            border: 0;
            object-fit: contain;
        }
        .footer {
            display: flex;
            align-items: center;
            justify-content: space-between;
            padding: 8px 12px;
            background: #1e293b;
            color: #e2e8f0;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            font-size: 13px;
        }
        .footer-title {
            white-space: nowrap;
            overflow: hidden;
            text-overflow: ellipsis;
            margin-right: 12px;
        }
        .footer a {
            color: #94a3b8;
            text-decoration: none;
            white-space: nowrap;
            font-size: 12px;
        }
        .footer a:hover { color: #e2e8f0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="video-wrapper">
{{if .Native}}            <video controls playsinline webkit-playsinline src="{{.PlaybackURL}}"></video>
{{else}}            <iframe src="{{.PlaybackURL}}" allow="autoplay; fullscreen; picture-in-picture" allowfullscreen></iframe>
{{end}}        </div>
        <div class="footer">
            <span class="footer-title">{{.Title}}</span>
            <a href="{{.BaseURL}}/watch/{{.ContentID}}" target="_blank" rel="noopener">Watch on ReelGrid</a>
        </div>
    </div>
{{if .Native}}    <script nonce="{{.Nonce}}">
        (function() {
            var v = document.querySelector('video');
            if (v) {
                v.muted = true;
                v.play().catch(function() {});
            }
        })();
    </script>
{{end}}</body>
</html>`))

func (h *Handler) EmbedPage(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var title, videoURL, platform string
	err := h.db.QueryRow(r.Context(),
		`SELECT title, video_url, platform FROM contents WHERE id = $1 AND published = true`,
		contentID,
	).Scan(&title, &videoURL, &platform)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	src, _ := source.ResolveWithHint(videoURL, source.Platform(platform))

	h.recordView(r, contentID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := embedPageTemplate.Execute(w, embedPageData{
		Title:       title,
		PlaybackURL: template.URL(src.PlaybackURL),
		Native:      src.Platform.Native() && src.Platform != source.PlatformExternal,
		ContentID:   contentID,
		Nonce:       httputil.NonceFromContext(r.Context()),
		BaseURL:     h.baseURL,
	}); err != nil {
		slog.Error("catalog: failed to render embed page", "content_id", contentID, "error", err)
	}
}
