package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/reelgrid/reelgrid/internal/httputil"
	"github.com/reelgrid/reelgrid/internal/source"
	"github.com/reelgrid/reelgrid/internal/validate"
)

type createContentRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	VideoURL     string `json:"videoUrl"`
	Kind         string `json:"kind"`
	Year         int    `json:"year"`
	DownloadLink string `json:"downloadLink"`
	Published    bool   `json:"published"`
	WithPoster   bool   `json:"withPoster"`
	PosterSize   int64  `json:"posterSize,omitempty"`
}

type updateContentRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	VideoURL     *string `json:"videoUrl"`
	Kind         *string `json:"kind"`
	Year         *int    `json:"year"`
	DownloadLink *string `json:"downloadLink"`
	Published    *bool   `json:"published"`
}

type contentResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	VideoURL     string         `json:"videoUrl,omitempty"`
	Platform     string         `json:"platform"`
	Kind         string         `json:"kind,omitempty"`
	Year         int            `json:"year,omitempty"`
	DownloadLink string         `json:"downloadLink,omitempty"`
	PosterURL    string         `json:"posterUrl,omitempty"`
	Published    bool           `json:"published"`
	ViewCount    int64          `json:"viewCount"`
	Source       *source.Source `json:"source,omitempty"`
	CreatedAt    string         `json:"createdAt"`
}

type createContentResponse struct {
	contentResponse
	PosterUploadURL string `json:"posterUploadUrl,omitempty"`
}

// Create stores a new content record. The platform is classified once at
// write time and persisted; it later serves as the resolution hint so bare
// ids keep resolving to the same platform they were saved under.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.VideoURL = strings.TrimSpace(req.VideoURL)
	if req.Title == "" {
		httputil.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.VideoURL == "" {
		httputil.WriteError(w, http.StatusBadRequest, "videoUrl is required")
		return
	}
	if req.Kind == "" {
		req.Kind = "movie"
	}
	for _, msg := range []string{
		validate.Title(req.Title),
		validate.Description(req.Description),
		validate.VideoURL(req.VideoURL),
		validate.Kind(req.Kind),
		validate.Year(req.Year),
		validate.DownloadLink(req.DownloadLink),
	} {
		if msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
	}

	platform := source.Classify(req.VideoURL)

	var contentID string
	var createdAt time.Time
	err := h.db.QueryRow(r.Context(),
		`INSERT INTO contents (title, description, video_url, platform, kind, year, download_link, published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		req.Title, req.Description, req.VideoURL, string(platform), req.Kind, req.Year, req.DownloadLink, req.Published,
	).Scan(&contentID, &createdAt)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create content")
		return
	}

	resp := createContentResponse{
		contentResponse: contentResponse{
			ID:           contentID,
			Title:        req.Title,
			Description:  req.Description,
			VideoURL:     req.VideoURL,
			Platform:     string(platform),
			Kind:         req.Kind,
			Year:         req.Year,
			DownloadLink: req.DownloadLink,
			Published:    req.Published,
			CreatedAt:    createdAt.Format(time.RFC3339),
		},
	}

	if req.WithPoster {
		key := posterFileKey(contentID)
		uploadURL, err := h.storage.GenerateUploadURL(r.Context(), key, "image/jpeg", req.PosterSize, 30*time.Minute)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to generate poster upload URL")
			return
		}
		if _, err := h.db.Exec(r.Context(),
			`UPDATE contents SET poster_key = $1 WHERE id = $2`, key, contentID,
		); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to store poster key")
			return
		}
		resp.PosterUploadURL = uploadURL
	}

	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// Update patches the mutable fields. A changed video URL is re-classified so
// the stored platform hint stays truthful.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var req updateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil && req.Description == nil && req.VideoURL == nil &&
		req.Kind == nil && req.Year == nil && req.DownloadLink == nil && req.Published == nil {
		httputil.WriteError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Title != nil {
		*req.Title = strings.TrimSpace(*req.Title)
		if *req.Title == "" {
			httputil.WriteError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		if msg := validate.Title(*req.Title); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		tag, err := h.db.Exec(r.Context(),
			`UPDATE contents SET title = $1, updated_at = now() WHERE id = $2`,
			*req.Title, contentID,
		)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
		if tag.RowsAffected() == 0 {
			httputil.WriteError(w, http.StatusNotFound, "content not found")
			return
		}
	}

	if req.Description != nil {
		if msg := validate.Description(*req.Description); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if _, err := h.db.Exec(r.Context(),
			`UPDATE contents SET description = $1, updated_at = now() WHERE id = $2`,
			*req.Description, contentID,
		); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
	}

	if req.VideoURL != nil {
		*req.VideoURL = strings.TrimSpace(*req.VideoURL)
		if *req.VideoURL == "" {
			httputil.WriteError(w, http.StatusBadRequest, "videoUrl cannot be empty")
			return
		}
		if msg := validate.VideoURL(*req.VideoURL); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		platform := source.Classify(*req.VideoURL)
		tag, err := h.db.Exec(r.Context(),
			`UPDATE contents SET video_url = $1, platform = $2, updated_at = now() WHERE id = $3`,
			*req.VideoURL, string(platform), contentID,
		)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
		if tag.RowsAffected() == 0 {
			httputil.WriteError(w, http.StatusNotFound, "content not found")
			return
		}
	}

	if req.Kind != nil {
		if msg := validate.Kind(*req.Kind); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		tag, err := h.db.Exec(r.Context(),
			`UPDATE contents SET kind = $1, updated_at = now() WHERE id = $2`,
			*req.Kind, contentID,
		)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
		if tag.RowsAffected() == 0 {
			httputil.WriteError(w, http.StatusNotFound, "content not found")
			return
		}
	}

	if req.Year != nil {
		if msg := validate.Year(*req.Year); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if _, err := h.db.Exec(r.Context(),
			`UPDATE contents SET year = $1, updated_at = now() WHERE id = $2`,
			*req.Year, contentID,
		); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
	}

	if req.DownloadLink != nil {
		if msg := validate.DownloadLink(*req.DownloadLink); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if _, err := h.db.Exec(r.Context(),
			`UPDATE contents SET download_link = $1, updated_at = now() WHERE id = $2`,
			*req.DownloadLink, contentID,
		); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
	}

	if req.Published != nil {
		tag, err := h.db.Exec(r.Context(),
			`UPDATE contents SET published = $1, updated_at = now() WHERE id = $2`,
			*req.Published, contentID,
		)
		if err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update content")
			return
		}
		if tag.RowsAffected() == 0 {
			httputil.WriteError(w, http.StatusNotFound, "content not found")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the record and purges the poster in the background.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var posterKey string
	err := h.db.QueryRow(r.Context(),
		`DELETE FROM contents WHERE id = $1 RETURNING poster_key`,
		contentID,
	).Scan(&posterKey)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "content not found")
		return
	}

	if posterKey != "" {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := deleteWithRetry(ctx, h.storage, posterKey, 3); err != nil {
				slog.Error("catalog: poster delete failed", "key", posterKey, "error", err)
			}
		}()
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get returns one published content with its resolved playback source. The
// stored platform rides along as the resolution hint.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var resp contentResponse
	var videoURL, platform, posterKey string
	var createdAt time.Time
	err := h.db.QueryRow(r.Context(),
		`SELECT title, description, video_url, platform, kind, year, download_link, poster_key, published, view_count, created_at
		 FROM contents WHERE id = $1 AND published = true`,
		contentID,
	).Scan(&resp.Title, &resp.Description, &videoURL, &platform, &resp.Kind, &resp.Year, &resp.DownloadLink, &posterKey, &resp.Published, &resp.ViewCount, &createdAt)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "content not found")
		return
	}

	src, _ := source.ResolveWithHint(videoURL, source.Platform(platform))

	resp.ID = contentID
	resp.Platform = platform
	resp.Source = &src
	resp.CreatedAt = createdAt.Format(time.RFC3339)
	if posterKey != "" {
		if u, err := h.storage.GenerateDownloadURL(r.Context(), posterKey, 1*time.Hour); err == nil {
			resp.PosterURL = u
		}
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

type listResponse struct {
	Contents []contentResponse `json:"contents"`
	Total    int               `json:"total"`
}

// List returns published contents, newest first. Supports q= title search
// plus limit/offset paging.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if msg := validate.SearchQuery(query); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	limit := 24
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	var total int
	if err := h.db.QueryRow(r.Context(),
		`SELECT COUNT(*) FROM contents WHERE published = true AND ($1 = '' OR title ILIKE '%' || $1 || '%')`,
		query,
	).Scan(&total); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
		return
	}

	rows, err := h.db.Query(r.Context(),
		`SELECT id, title, description, platform, kind, year, poster_key, view_count, created_at
		 FROM contents
		 WHERE published = true AND ($1 = '' OR title ILIKE '%' || $1 || '%')
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		query, limit, offset,
	)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
		return
	}
	defer rows.Close()

	contents := make([]contentResponse, 0, limit)
	for rows.Next() {
		var c contentResponse
		var posterKey string
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Platform, &c.Kind, &c.Year, &posterKey, &c.ViewCount, &createdAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
			return
		}
		c.Published = true
		c.CreatedAt = createdAt.Format(time.RFC3339)
		if posterKey != "" {
			if u, err := h.storage.GenerateDownloadURL(r.Context(), posterKey, 1*time.Hour); err == nil {
				c.PosterURL = u
			}
		}
		contents = append(contents, c)
	}
	if rows.Err() != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{Contents: contents, Total: total})
}

// AdminList returns everything, drafts included.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(r.Context(),
		`SELECT id, title, description, video_url, platform, kind, year, download_link, published, view_count, created_at
		 FROM contents ORDER BY created_at DESC`,
	)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
		return
	}
	defer rows.Close()

	contents := make([]contentResponse, 0)
	for rows.Next() {
		var c contentResponse
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.VideoURL, &c.Platform, &c.Kind, &c.Year, &c.DownloadLink, &c.Published, &c.ViewCount, &createdAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
			return
		}
		c.CreatedAt = createdAt.Format(time.RFC3339)
		contents = append(contents, c)
	}
	if rows.Err() != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list contents")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listResponse{Contents: contents, Total: len(contents)})
}

// VideoSource implements the lookup the playback engine uses to open a
// session from a content id.
func (h *Handler) VideoSource(ctx context.Context, contentID string) (string, string, error) {
	var raw, platform string
	err := h.db.QueryRow(ctx,
		`SELECT video_url, platform FROM contents WHERE id = $1 AND published = true`,
		contentID,
	).Scan(&raw, &platform)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", errors.New("content not found")
		}
		return "", "", err
	}
	return raw, platform, nil
}
