package catalog

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelgrid/reelgrid/internal/httputil"
	"github.com/reelgrid/reelgrid/internal/validate"
)

type postCommentRequest struct {
	AuthorName string `json:"authorName"`
	Body       string `json:"body"`
}

type commentResponse struct {
	ID         string `json:"id"`
	AuthorName string `json:"authorName"`
	Body       string `json:"body"`
	Likes      int    `json:"likes"`
	CreatedAt  string `json:"createdAt"`
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	var req postCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		httputil.WriteError(w, http.StatusBadRequest, "comment cannot be empty")
		return
	}
	if req.AuthorName == "" {
		req.AuthorName = "Anonymous"
	}
	if msg := validate.AuthorName(req.AuthorName); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validate.CommentBody(req.Body); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	var exists bool
	if err := h.db.QueryRow(r.Context(),
		`SELECT EXISTS(SELECT 1 FROM contents WHERE id = $1 AND published = true)`,
		contentID,
	).Scan(&exists); err != nil || !exists {
		httputil.WriteError(w, http.StatusNotFound, "content not found")
		return
	}

	var commentID string
	var createdAt time.Time
	err := h.db.QueryRow(r.Context(),
		`INSERT INTO comments (content_id, author_name, body) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		contentID, req.AuthorName, req.Body,
	).Scan(&commentID, &createdAt)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to post comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, commentResponse{
		ID:         commentID,
		AuthorName: req.AuthorName,
		Body:       req.Body,
		CreatedAt:  createdAt.Format(time.RFC3339),
	})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "id")

	rows, err := h.db.Query(r.Context(),
		`SELECT id, author_name, body, likes, created_at FROM comments
		 WHERE content_id = $1 ORDER BY created_at DESC LIMIT 200`,
		contentID,
	)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load comments")
		return
	}
	defer rows.Close()

	comments := make([]commentResponse, 0)
	for rows.Next() {
		var c commentResponse
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.AuthorName, &c.Body, &c.Likes, &createdAt); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to load comments")
			return
		}
		c.CreatedAt = createdAt.Format(time.RFC3339)
		comments = append(comments, c)
	}
	if rows.Err() != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]commentResponse{"comments": comments})
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")

	var likes int
	err := h.db.QueryRow(r.Context(),
		`UPDATE comments SET likes = likes + 1 WHERE id = $1 RETURNING likes`,
		commentID,
	).Scan(&likes)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "comment not found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

// DeleteComment is admin-only moderation.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")

	tag, err := h.db.Exec(r.Context(),
		`DELETE FROM comments WHERE id = $1`,
		commentID,
	)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete comment")
		return
	}
	if tag.RowsAffected() == 0 {
		httputil.WriteError(w, http.StatusNotFound, "comment not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
