package playback

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"github.com/reelgrid/reelgrid/internal/httputil"
	"github.com/reelgrid/reelgrid/internal/source"
)

// ContentResolver looks up the stored video URL and platform hint for a
// catalog content id.
type ContentResolver interface {
	VideoSource(ctx context.Context, contentID string) (raw, hint string, err error)
}

// Handler exposes the session engine over JSON. One session per open player
// page: the page creates it, relays player events in, polls state and
// page-bound commands out, and deletes it on unload.
type Handler struct {
	manager  *Manager
	resolver ContentResolver
	logger   *slog.Logger
}

func NewHandler(manager *Manager, resolver ContentResolver, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, resolver: resolver, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/sessions", h.HandleCreate)
	r.Get("/api/sessions/{sessionID}", h.HandleGet)
	r.Post("/api/sessions/{sessionID}/events", h.HandleEvents)
	r.Post("/api/sessions/{sessionID}/command", h.HandleCommand)
	r.Post("/api/sessions/{sessionID}/activity", h.HandleActivity)
	r.Get("/api/sessions/{sessionID}/commands", h.HandleCommands)
	r.Delete("/api/sessions/{sessionID}", h.HandleDelete)
	// sendBeacon can only POST, so the page's unload teardown gets a POST
	// alias of the delete.
	r.Post("/api/sessions/{sessionID}/close", h.HandleDelete)
}

type createSessionRequest struct {
	URL       string `json:"url"`
	ContentID string `json:"contentId"`
	Loop      bool   `json:"loop"`
	Muted     bool   `json:"muted"`
}

type sessionResponse struct {
	SessionID string        `json:"sessionId"`
	Source    source.Source `json:"source"`
	State     State         `json:"state"`
	Device    Device        `json:"device"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	raw, hint := req.URL, ""
	if req.ContentID != "" {
		var err error
		raw, hint, err = h.resolver.VideoSource(r.Context(), req.ContentID)
		if err != nil {
			h.logger.Warn("content lookup failed", "content_id", req.ContentID, "error", err)
			httputil.WriteError(w, http.StatusNotFound, "content not found")
			return
		}
	}
	if strings.TrimSpace(raw) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "url or contentId required")
		return
	}

	opts := source.DefaultOptions
	opts.Loop = req.Loop
	opts.Muted = req.Muted

	device := classifyDevice(r.UserAgent())
	if device.NativeControlsOnly {
		// Scripted autoplay with sound is unreliable there.
		opts.Muted = true
		opts.Controls = true
	}

	s := h.manager.Create(raw, hint, opts, device)
	httputil.WriteJSON(w, http.StatusCreated, sessionResponse{
		SessionID: s.ID,
		Source:    s.Source(),
		State:     s.State(),
		Device:    s.Device,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{
		SessionID: s.ID,
		Source:    s.Source(),
		State:     s.State(),
		Device:    s.Device,
	})
}

func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var events []Event
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for _, ev := range events {
		s.HandleEvent(ev)
	}
	httputil.WriteJSON(w, http.StatusOK, s.State())
}

type commandRequest struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.Dispatch(req.Name, req.Value); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.State())
}

func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.Activity()
	httputil.WriteJSON(w, http.StatusOK, s.State())
}

func (h *Handler) HandleCommands(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	cmds := s.DrainCommands()
	if cmds == nil {
		cmds = []Command{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]Command{"commands": cmds})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !h.manager.Close(id) {
		httputil.WriteError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	id := chi.URLParam(r, "sessionID")
	s := h.manager.Get(id)
	if s == nil {
		httputil.WriteError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return s
}

var errNoResolver = errors.New("playback: no content resolver configured")

// NoContentResolver satisfies ContentResolver for deployments that only
// create sessions from explicit URLs.
type NoContentResolver struct{}

func (NoContentResolver) VideoSource(context.Context, string) (string, string, error) {
	return "", "", errNoResolver
}

// classifyDevice reduces a User-Agent to what playback cares about.
func classifyDevice(ua string) Device {
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	os := parsed.OSInfo()
	ios := os.Name == "iPhone OS" || os.Name == "iOS" ||
		strings.Contains(parsed.Platform(), "iPhone") ||
		strings.Contains(parsed.Platform(), "iPad")
	return Device{
		Browser:            browser,
		Mobile:             parsed.Mobile(),
		NativeControlsOnly: ios,
	}
}
