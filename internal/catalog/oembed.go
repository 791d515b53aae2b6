package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelgrid/reelgrid/internal/httputil"
)

type oEmbedResponse struct {
	Type         string `json:"type"`
	Version      string `json:"version"`
	Title        string `json:"title"`
	ProviderName string `json:"providerName"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	WatchURL     string `json:"watchUrl"`
	HTML         string `json:"html"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	CreatedAt    string `json:"createdAt"`
}

func (h *Handler) OEmbed(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var title, posterKey string
	var createdAt time.Time
	err := h.db.QueryRow(r.Context(),
		`SELECT title, poster_key, created_at FROM contents WHERE id = $1 AND published = true`,
		contentID,
	).Scan(&title, &posterKey, &createdAt)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "content not found")
		return
	}

	var thumbnailURL string
	if posterKey != "" {
		if u, err := h.storage.GenerateDownloadURL(r.Context(), posterKey, 1*time.Hour); err == nil {
			thumbnailURL = u
		}
	}

	embedURL := h.baseURL + "/embed/" + contentID
	iframeHTML := `<iframe src="` + embedURL + `" width="640" height="360" frameborder="0" allowfullscreen></iframe>`

	httputil.WriteJSON(w, http.StatusOK, oEmbedResponse{
		Type:         "video",
		Version:      "1.0",
		Title:        title,
		ProviderName: "ReelGrid",
		ThumbnailURL: thumbnailURL,
		WatchURL:     h.baseURL + "/watch/" + contentID,
		HTML:         iframeHTML,
		Width:        640,
		Height:       360,
		CreatedAt:    createdAt.Format(time.RFC3339),
	})
}
