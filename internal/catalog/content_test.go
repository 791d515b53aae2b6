package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/reelgrid/reelgrid/internal/source"
)

type mockStorage struct {
	uploadURL    string
	uploadErr    error
	downloadURL  string
	downloadErr  error
	deleteErr    error
	deleteCalled chan string
	headSize     int64
	headType     string
	headErr      error
}

func (m *mockStorage) GenerateUploadURL(_ context.Context, _ string, _ string, _ int64, _ time.Duration) (string, error) {
	return m.uploadURL, m.uploadErr
}

func (m *mockStorage) GenerateDownloadURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return m.downloadURL, m.downloadErr
}

func (m *mockStorage) DeleteObject(_ context.Context, key string) error {
	if m.deleteCalled != nil {
		m.deleteCalled <- key
	}
	return m.deleteErr
}

func (m *mockStorage) HeadObject(_ context.Context, _ string) (int64, string, error) {
	return m.headSize, m.headType, m.headErr
}

const testBaseURL = "https://reelgrid.example"
const testContentID = "550e8400-e29b-41d4-a716-446655440000"

func newContentRouter(mock pgxmock.PgxPoolIface, storage ObjectStorage) *chi.Mux {
	h := NewHandler(mock, storage, testBaseURL)
	r := chi.NewRouter()
	r.Post("/api/admin/contents", h.Create)
	r.Patch("/api/admin/contents/{id}", h.Update)
	r.Delete("/api/admin/contents/{id}", h.Delete)
	r.Get("/api/admin/contents", h.AdminList)
	r.Get("/api/contents", h.List)
	r.Get("/api/contents/{id}", h.Get)
	return r
}

func parseErrorResponse(t *testing.T, body []byte) string {
	t.Helper()
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return errResp.Error
}

func TestCreateContent_ClassifiesPlatformOnWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO contents`).
		WithArgs("Launch Video", "", "https://youtu.be/dQw4w9WgXcQ", "youtube", "movie", 0, "", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(testContentID, time.Now()))

	body := `{"title":"Launch Video","videoUrl":"https://youtu.be/dQw4w9WgXcQ","published":true}`
	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/contents", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp createContentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Platform != "youtube" {
		t.Errorf("expected platform youtube, got %q", resp.Platform)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateContent_WithPosterReturnsUploadURL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO contents`).
		WithArgs("Teaser", "", "https://cdn.example.com/teaser.mp4", "direct", "movie", 0, "", false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(testContentID, time.Now()))
	mock.ExpectExec(`UPDATE contents SET poster_key`).
		WithArgs("posters/"+testContentID+".jpg", testContentID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	storage := &mockStorage{uploadURL: "https://s3.example.com/upload?signed=abc"}
	body := `{"title":"Teaser","videoUrl":"https://cdn.example.com/teaser.mp4","withPoster":true,"posterSize":100000}`
	r := newContentRouter(mock, storage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/contents", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp createContentResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.PosterUploadURL != "https://s3.example.com/upload?signed=abc" {
		t.Errorf("expected poster upload URL, got %q", resp.PosterUploadURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateContent_EpisodeWithYearAndDownloadLink(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO contents`).
		WithArgs("S01E01", "", "https://cdn.example.com/s01e01.mp4", "direct", "episode", 2024, "https://cdn.example.com/s01e01-dl.mp4", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(testContentID, time.Now()))

	body := `{"title":"S01E01","videoUrl":"https://cdn.example.com/s01e01.mp4","kind":"episode","year":2024,"downloadLink":"https://cdn.example.com/s01e01-dl.mp4","published":true}`
	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/contents", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp createContentResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Kind != "episode" || resp.Year != 2024 {
		t.Errorf("expected episode/2024 echoed, got %q/%d", resp.Kind, resp.Year)
	}
	if resp.DownloadLink != "https://cdn.example.com/s01e01-dl.mp4" {
		t.Errorf("unexpected download link %q", resp.DownloadLink)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateContent_KindRejectsUnknownValue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()
	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/contents/"+testContentID, strings.NewReader(`{"kind":"short"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := parseErrorResponse(t, rec.Body.Bytes()); got != "kind must be movie or episode" {
		t.Errorf("unexpected error %q", got)
	}
}

func TestCreateContent_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no title", `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`, "title is required"},
		{"no url", `{"title":"Something"}`, "videoUrl is required"},
		{"bad json", `{nope`, "invalid request body"},
		{"bad kind", `{"title":"X","videoUrl":"https://cdn.example.com/x.mp4","kind":"series"}`, "kind must be movie or episode"},
		{"bad year", `{"title":"X","videoUrl":"https://cdn.example.com/x.mp4","year":123}`, "year must be between 1888 and 2100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatal(err)
			}
			defer mock.Close()
			r := newContentRouter(mock, &mockStorage{})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/contents", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := parseErrorResponse(t, rec.Body.Bytes()); got != tt.want {
				t.Errorf("expected error %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUpdateContent_VideoURLReclassifiesPlatform(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE contents SET video_url`).
		WithArgs("https://vimeo.com/76979871", "vimeo", testContentID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	body := `{"videoUrl":"https://vimeo.com/76979871"}`
	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/contents/"+testContentID, strings.NewReader(body)))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateContent_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectExec(`UPDATE contents SET title`).
		WithArgs("New Title", testContentID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/contents/"+testContentID, strings.NewReader(`{"title":"New Title"}`)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateContent_NothingToUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()
	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/admin/contents/"+testContentID, strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteContent_PurgesPoster(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`DELETE FROM contents`).
		WithArgs(testContentID).
		WillReturnRows(pgxmock.NewRows([]string{"poster_key"}).AddRow("posters/" + testContentID + ".jpg"))

	storage := &mockStorage{deleteCalled: make(chan string, 1)}
	r := newContentRouter(mock, storage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/contents/"+testContentID, nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	select {
	case key := <-storage.deleteCalled:
		if key != "posters/"+testContentID+".jpg" {
			t.Errorf("expected poster delete, got %q", key)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected background poster delete")
	}
}

func TestGetContent_ResolvesSourceWithStoredHint(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	// A bare numeric id would classify as vimeo; the stored hint pins it to
	// youtube where it was saved.
	mock.ExpectQuery(`SELECT title, description, video_url`).
		WithArgs(testContentID).
		WillReturnRows(pgxmock.NewRows([]string{"title", "description", "video_url", "platform", "kind", "year", "download_link", "poster_key", "published", "view_count", "created_at"}).
			AddRow("Old Upload", "", "12345678901", "youtube", "movie", 2009, "", "", true, int64(7), time.Now()))

	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contents/"+testContentID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp contentResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Source == nil || resp.Source.Platform != source.PlatformYouTube {
		t.Errorf("expected hinted youtube source, got %+v", resp.Source)
	}
	if resp.ViewCount != 7 {
		t.Errorf("expected view count 7, got %d", resp.ViewCount)
	}
}

func TestGetContent_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT title, description, video_url`).
		WithArgs(testContentID).
		WillReturnError(errors.New("no rows in result set"))

	r := newContentRouter(mock, &mockStorage{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contents/"+testContentID, nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListContents_SearchAndPaging(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contents`).
		WithArgs("space").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT id, title, description, platform`).
		WithArgs("space", 5, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "description", "platform", "kind", "year", "poster_key", "view_count", "created_at"}).
			AddRow("c1", "Space Walk", "", "youtube", "movie", 2019, "", int64(3), time.Now()).
			AddRow("c2", "Deep Space", "", "direct", "episode", 2021, "posters/c2.jpg", int64(1), time.Now()))

	storage := &mockStorage{downloadURL: "https://s3.example.com/posters/c2.jpg?signed"}
	r := newContentRouter(mock, storage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contents?q=space&limit=5&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp listResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 12 {
		t.Errorf("expected total 12, got %d", resp.Total)
	}
	if len(resp.Contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(resp.Contents))
	}
	if resp.Contents[1].PosterURL == "" {
		t.Error("expected presigned poster URL on second row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestVideoSource_ReturnsRawAndHint(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT video_url, platform FROM contents`).
		WithArgs(testContentID).
		WillReturnRows(pgxmock.NewRows([]string{"video_url", "platform"}).AddRow("https://youtu.be/dQw4w9WgXcQ", "youtube"))

	h := NewHandler(mock, &mockStorage{}, testBaseURL)
	raw, hint, err := h.VideoSource(context.Background(), testContentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "https://youtu.be/dQw4w9WgXcQ" || hint != "youtube" {
		t.Errorf("unexpected lookup result: %q %q", raw, hint)
	}
}
