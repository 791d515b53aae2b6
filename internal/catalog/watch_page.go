package catalog

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelgrid/reelgrid/internal/httputil"
	"github.com/reelgrid/reelgrid/internal/source"
)

type watchPageData struct {
	Title       string
	Description string
	Date        string
	PosterURL   string
	PlaybackURL template.URL
	ContentID   string
	Nonce       string
	BaseURL     string
	// Native renders a media element, YouTube a script-driven iframe slot,
	// and everything else a plain iframe with the platform's own chrome.
	Native       bool
	YouTube      bool
	Controllable bool
}

var watchPageTemplate = template.Must(template.New("watch").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}} — ReelGrid</title>
    <meta property="og:title" content="{{.Title}}">
    <meta property="og:type" content="video.other">
    <meta property="og:site_name" content="ReelGrid">
    {{if .PosterURL}}<meta property="og:image" content="{{.PosterURL}}">{{end}}
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root { --player-accent: #00b67a; }
        body {
            background: #0a1628;
            color: #ffffff;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            min-height: 100vh;
            display: flex;
            flex-direction: column;
            align-items: center;
        }
        .container {
            max-width: 960px;
            width: 100%;
            padding: 2rem 1rem;
        }
        h1 {
            margin-top: 1rem;
            font-size: 1.5rem;
            font-weight: 600;
        }
        .meta {
            margin-top: 0.5rem;
            color: #94a3b8;
            font-size: 0.875rem;
        }
        .description {
            margin-top: 1rem;
            color: #cbd5e1;
            font-size: 0.9375rem;
            line-height: 1.6;
            white-space: pre-wrap;
        }
        .hidden { display: none; }
{{.PlayerCSS}}
    </style>
</head>
<body>
    <div class="container">
        <div class="player-container" id="player-container">
{{if .Native}}            <video id="player" playsinline webkit-playsinline src="{{.PlaybackURL}}"{{if .PosterURL}} poster="{{.PosterURL}}"{{end}}></video>
{{else if .YouTube}}            <div id="player"></div>
{{else}}            <iframe id="player" src="{{.PlaybackURL}}" allow="autoplay; fullscreen; picture-in-picture" allowfullscreen></iframe>
{{end}}{{if .Controllable}}{{.ControlsHTML}}{{end}}
        </div>
        <h1>{{.Title}}</h1>
        <p class="meta">{{.Date}}</p>
        {{if .Description}}<p class="description">{{.Description}}</p>{{end}}
    </div>
{{if .Controllable}}    <script nonce="{{.Nonce}}">
        var sessionConfig = { contentId: {{.ContentID}}, apiBase: {{.BaseURL}} };
{{.SessionJS}}
    </script>
{{end}}</body>
</html>`))

type watchPageRender struct {
	watchPageData
	PlayerCSS    template.CSS
	ControlsHTML template.HTML
	SessionJS    template.JS
}

func (h *Handler) WatchPage(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var title, description, videoURL, platform, posterKey string
	var createdAt time.Time
	err := h.db.QueryRow(r.Context(),
		`SELECT title, description, video_url, platform, poster_key, created_at
		 FROM contents WHERE id = $1 AND published = true`,
		contentID,
	).Scan(&title, &description, &videoURL, &platform, &posterKey, &createdAt)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	src, _ := source.ResolveWithHint(videoURL, source.Platform(platform))

	h.recordView(r, contentID)

	var posterURL string
	if posterKey != "" {
		if u, err := h.storage.GenerateDownloadURL(r.Context(), posterKey, 1*time.Hour); err == nil {
			posterURL = u
		}
	}

	data := watchPageRender{
		watchPageData: watchPageData{
			Title:        title,
			Description:  description,
			Date:         createdAt.Format("Jan 2, 2006"),
			PosterURL:    posterURL,
			PlaybackURL:  template.URL(src.PlaybackURL),
			ContentID:    contentID,
			Nonce:        httputil.NonceFromContext(r.Context()),
			BaseURL:      h.baseURL,
			Native:       src.Platform == source.PlatformDirect || src.Platform == source.PlatformMux,
			YouTube:      src.Platform == source.PlatformYouTube,
			Controllable: src.Controllable,
		},
		PlayerCSS:    template.CSS(playerCSS),
		ControlsHTML: template.HTML(playerControlsHTML),
		SessionJS:    template.JS(sessionJS),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := watchPageTemplate.Execute(w, data); err != nil {
		slog.Error("catalog: failed to render watch page", "content_id", contentID, "error", err)
	}
}
