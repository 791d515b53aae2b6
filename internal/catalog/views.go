package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"github.com/reelgrid/reelgrid/internal/httputil"
)

// recordView logs one view in the background: hashed viewer identity, coarse
// browser and device classification, and a geoip country when available. The
// daily unique index swallows repeat views from the same viewer.
func (h *Handler) recordView(r *http.Request, contentID string) {
	ip := clientIP(r)
	hash := viewerHash(ip, r.UserAgent())
	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	mobile := ua.Mobile()
	var country string
	if h.geo != nil {
		country, _ = h.geo.Lookup(ip)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		tag, err := h.db.Exec(ctx,
			`INSERT INTO views (content_id, viewer_hash, country, browser, is_mobile)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT DO NOTHING`,
			contentID, hash, country, browser, mobile,
		)
		if err != nil {
			slog.Error("catalog: failed to record view", "content_id", contentID, "error", err)
			return
		}
		if tag.RowsAffected() == 0 {
			return
		}
		if _, err := h.db.Exec(ctx,
			`UPDATE contents SET view_count = view_count + 1 WHERE id = $1`,
			contentID,
		); err != nil {
			slog.Error("catalog: failed to bump view count", "content_id", contentID, "error", err)
		}
	}()
}

type viewStatsDay struct {
	Day         string `json:"day"`
	Views       int    `json:"views"`
	UniqueViews int    `json:"uniqueViews"`
}

type viewStatsResponse struct {
	Total   int64          `json:"total"`
	Unique  int64          `json:"unique"`
	Mobile  int64          `json:"mobile"`
	ByDay   []viewStatsDay `json:"byDay"`
	TopGeos map[string]int `json:"topGeos"`
}

// ViewStats is the admin per-content analytics endpoint, windowed to the last
// 30 days.
func (h *Handler) ViewStats(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")
	since := time.Now().AddDate(0, 0, -30)

	var resp viewStatsResponse
	err := h.db.QueryRow(r.Context(),
		`SELECT COUNT(*), COUNT(DISTINCT viewer_hash), COUNT(*) FILTER (WHERE is_mobile)
		 FROM views WHERE content_id = $1 AND created_at >= $2`,
		contentID, since,
	).Scan(&resp.Total, &resp.Unique, &resp.Mobile)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
		return
	}

	rows, err := h.db.Query(r.Context(),
		`SELECT date_trunc('day', created_at)::date AS day, COUNT(*) AS views, COUNT(DISTINCT viewer_hash) AS unique_views
		 FROM views WHERE content_id = $1 AND created_at >= $2
		 GROUP BY day ORDER BY day`,
		contentID, since,
	)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
		return
	}
	defer rows.Close()

	resp.ByDay = make([]viewStatsDay, 0)
	for rows.Next() {
		var day time.Time
		var d viewStatsDay
		if err := rows.Scan(&day, &d.Views, &d.UniqueViews); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
			return
		}
		d.Day = day.Format("2006-01-02")
		resp.ByDay = append(resp.ByDay, d)
	}
	if rows.Err() != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
		return
	}

	geoRows, err := h.db.Query(r.Context(),
		`SELECT country, COUNT(*) FROM views
		 WHERE content_id = $1 AND created_at >= $2 AND country != ''
		 GROUP BY country ORDER BY COUNT(*) DESC LIMIT 10`,
		contentID, since,
	)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
		return
	}
	defer geoRows.Close()

	resp.TopGeos = map[string]int{}
	for geoRows.Next() {
		var country string
		var n int
		if err := geoRows.Scan(&country, &n); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
			return
		}
		resp.TopGeos[country] = n
	}
	if geoRows.Err() != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load view stats")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
