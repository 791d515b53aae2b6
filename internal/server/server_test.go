package server_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/reelgrid/reelgrid/internal/playback"
	"github.com/reelgrid/reelgrid/internal/server"
)

// --- Mock types ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockStorage struct{}

func (m *mockStorage) GenerateUploadURL(ctx context.Context, key string, contentType string, contentLength int64, expiry time.Duration) (string, error) {
	return "https://example.com/upload", nil
}

func (m *mockStorage) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://example.com/download", nil
}

func (m *mockStorage) DeleteObject(ctx context.Context, key string) error {
	return nil
}

func (m *mockStorage) HeadObject(ctx context.Context, key string) (int64, string, error) {
	return 1024, "image/jpeg", nil
}

// --- Helpers ---

func newServerWithoutDB() *server.Server {
	return server.New(server.Config{})
}

func newServerWithDB(t *testing.T) (*server.Server, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(func() { mock.Close() })

	srv := server.New(server.Config{
		DB:               mock,
		Pinger:           &mockPinger{err: nil},
		Storage:          &mockStorage{},
		Sessions:         playback.NewManager(slog.New(slog.NewTextHandler(io.Discard, nil))),
		JWTSecret:        "test-secret",
		BaseURL:          "https://localhost:8080",
		S3PublicEndpoint: "https://storage.example.com",
	})
	return srv, mock
}

func executeRequest(srv *server.Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func executeRequestWithBody(srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// --- Health Endpoint (no DB) ---

func TestHealthEndpointReturnsOK(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	expected := `{"status":"ok"}`
	if rec.Body.String() != expected {
		t.Errorf("expected body %q, got %q", expected, rec.Body.String())
	}
}

func TestLimitsEndpointReturnsFieldLimits(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/limits")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"title":300`) {
		t.Errorf("expected title limit in body, got %s", rec.Body.String())
	}
}

func TestHealthEndpointContentType(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type %q, got %q", "application/json", contentType)
	}
}

func TestHealthEndpointWithPingFailure(t *testing.T) {
	srv := server.New(server.Config{
		Pinger: &mockPinger{err: errors.New("connection refused")},
	})
	rec := executeRequest(srv, http.MethodGet, "/api/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}

	expected := `{"status":"unhealthy","error":"database unreachable"}`
	if rec.Body.String() != expected {
		t.Errorf("expected body %q, got %q", expected, rec.Body.String())
	}
}

// --- Server with nil DB ---

func TestNilDBAuthRoutesNotRegistered(t *testing.T) {
	srv := newServerWithoutDB()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/auth/refresh"},
		{http.MethodPost, "/api/auth/logout"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := executeRequest(srv, route.method, route.path)
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404 for %s %s without DB, got %d", route.method, route.path, rec.Code)
			}
		})
	}
}

func TestNilDBCatalogRoutesNotRegistered(t *testing.T) {
	srv := newServerWithoutDB()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/contents"},
		{http.MethodGet, "/api/contents/some-id"},
		{http.MethodGet, "/watch/some-id"},
		{http.MethodGet, "/embed/some-id"},
		{http.MethodPost, "/api/admin/contents"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := executeRequest(srv, route.method, route.path)
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404 for %s %s without DB, got %d", route.method, route.path, rec.Code)
			}
		})
	}
}

// --- Server with DB: auth routes registered ---

func TestLoginRouteRegisteredWithDB(t *testing.T) {
	srv, _ := newServerWithDB(t)

	rec := executeRequestWithBody(srv, http.MethodPost, "/api/auth/login", "{}")
	if rec.Code == http.StatusNotFound {
		t.Errorf("expected auth/login to be registered (not 404), got %d", rec.Code)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty login body, got %d", rec.Code)
	}
}

func TestRefreshRouteRegisteredWithDB(t *testing.T) {
	srv, _ := newServerWithDB(t)

	rec := executeRequest(srv, http.MethodPost, "/api/auth/refresh")
	if rec.Code == http.StatusNotFound {
		t.Errorf("expected auth/refresh to be registered (not 404), got %d", rec.Code)
	}
}

func TestLogoutRouteRegisteredWithDB(t *testing.T) {
	srv, _ := newServerWithDB(t)

	rec := executeRequest(srv, http.MethodPost, "/api/auth/logout")
	if rec.Code == http.StatusNotFound {
		t.Errorf("expected auth/logout to be registered (not 404), got %d", rec.Code)
	}
}

// --- Admin routes gated by auth ---

func TestAdminRoutesRequireAuth(t *testing.T) {
	srv, _ := newServerWithDB(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/admin/contents"},
		{http.MethodGet, "/api/admin/contents"},
		{http.MethodPatch, "/api/admin/contents/some-id"},
		{http.MethodDelete, "/api/admin/contents/some-id"},
		{http.MethodGet, "/api/admin/contents/some-id/stats"},
		{http.MethodDelete, "/api/admin/comments/some-id"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := executeRequest(srv, route.method, route.path)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 for %s %s, got %d", route.method, route.path, rec.Code)
			}
		})
	}
}

// --- Public catalog routes ---

func TestContentListRouteRegisteredWithDB(t *testing.T) {
	srv, mock := newServerWithDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contents`).
		WithArgs("").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT id, title, description, platform`).
		WithArgs("", 24, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "platform", "kind", "year", "poster_key", "view_count", "created_at"}))

	rec := executeRequest(srv, http.MethodGet, "/api/contents")

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("route /api/contents not wired to catalog handler: %v", err)
	}
}

func TestWatchPageRouteRegisteredWithDB(t *testing.T) {
	srv, mock := newServerWithDB(t)

	mock.ExpectQuery(`SELECT title, description, video_url`).
		WithArgs("some-id").
		WillReturnError(errors.New("no rows"))

	rec := executeRequest(srv, http.MethodGet, "/watch/some-id")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected handler 404 for missing content, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("route /watch/{id} not registered: mock expectation unmet: %v", err)
	}
}

func TestOEmbedRouteRegisteredWithDB(t *testing.T) {
	srv, mock := newServerWithDB(t)

	mock.ExpectQuery(`SELECT title, poster_key, created_at`).
		WithArgs("some-id").
		WillReturnError(errors.New("no rows"))

	rec := executeRequest(srv, http.MethodGet, "/api/oembed/some-id")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected handler 404 for missing content, got %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("route /api/oembed/{id} not registered: %v", err)
	}
}

// --- Playback session routes ---

func TestSessionRoutesRegistered(t *testing.T) {
	srv, _ := newServerWithDB(t)

	rec := executeRequestWithBody(srv, http.MethodPost, "/api/sessions", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 session create, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionRouteUnknownSession(t *testing.T) {
	srv, _ := newServerWithDB(t)

	rec := executeRequest(srv, http.MethodGet, "/api/sessions/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown session, got %d", rec.Code)
	}
}

// --- Rate limiting ---

func TestAuthRoutesRateLimited(t *testing.T) {
	srv, _ := newServerWithDB(t)

	var lastCode int
	for i := 0; i < 20; i++ {
		rec := executeRequestWithBody(srv, http.MethodPost, "/api/auth/login", "{}")
		lastCode = rec.Code
		if lastCode == http.StatusTooManyRequests {
			return
		}
	}
	t.Errorf("expected 429 after many rapid requests, last status was %d", lastCode)
}

func TestCommentRoutesRateLimited(t *testing.T) {
	srv, _ := newServerWithDB(t)

	var lastCode int
	for i := 0; i < 30; i++ {
		rec := executeRequestWithBody(srv, http.MethodPost, "/api/contents/some-id/comments", `{"body":""}`)
		lastCode = rec.Code
		if lastCode == http.StatusTooManyRequests {
			return
		}
	}
	t.Errorf("expected 429 after bursts, last status %d", lastCode)
}

// --- Route registration fallthrough ---

func TestUnknownRouteReturns404(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodGet, "/unknown")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestHealthEndpointWrongMethodReturnsMethodNotAllowed(t *testing.T) {
	srv := newServerWithoutDB()
	rec := executeRequest(srv, http.MethodPost, "/api/health")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST /api/health, got %d", rec.Code)
	}
}
