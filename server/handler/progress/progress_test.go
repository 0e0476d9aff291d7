package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/server/state"
	"github.com/vodhouse/vodhouse/storage/catalog"
)

type upsertCall struct {
	viewer   string
	videoID  string
	position float64
	status   string
}

type stubProgressStore struct {
	upserts   []upsertCall
	upsertErr error
	rows      map[string]catalog.Progress
	forViewer string
	readErr   error
}

func (s *stubProgressStore) Insert(ctx context.Context, v *catalog.Video) error { return nil }

func (s *stubProgressStore) Get(ctx context.Context, id string) (*catalog.Video, error) {
	return nil, catalog.ErrNotFound
}

func (s *stubProgressStore) List(ctx context.Context, category string) ([]catalog.Video, error) {
	return nil, nil
}

func (s *stubProgressStore) Delete(ctx context.Context, id string) error { return nil }

func (s *stubProgressStore) Upsert(ctx context.Context, viewer, videoID string, position float64, status string) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}

	s.upserts = append(s.upserts, upsertCall{viewer, videoID, position, status})
	return nil
}

func (s *stubProgressStore) ForViewer(ctx context.Context, viewer string) (map[string]catalog.Progress, error) {
	s.forViewer = viewer
	if s.readErr != nil {
		return nil, s.readErr
	}

	if s.rows == nil {
		return map[string]catalog.Progress{}, nil
	}

	return s.rows, nil
}

func newProgressState(store *stubProgressStore) *state.State {
	return &state.State{Cfg: &config.Config{}, Catalog: store}
}

func saveRequestBody(t *testing.T, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/progress", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleSave(t *testing.T) {
	store := &stubProgressStore{}
	rec := httptest.NewRecorder()

	HandleSave(newProgressState(store))(rec, saveRequestBody(t,
		`{"email":"viewer@example.com","video_id":"v1","timestamp":42.5,"status":"in_progress"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body["status"] != "saved" {
		t.Errorf("unexpected response body: %v", body)
	}

	want := upsertCall{"viewer@example.com", "v1", 42.5, "in_progress"}
	if len(store.upserts) != 1 || store.upserts[0] != want {
		t.Fatalf("unexpected upsert calls: %+v", store.upserts)
	}
}

func TestHandleSave_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing email":      `{"video_id":"v1","timestamp":1}`,
		"missing video id":   `{"email":"viewer@example.com","timestamp":1}`,
		"negative timestamp": `{"email":"viewer@example.com","video_id":"v1","timestamp":-3}`,
		"not json":           `timestamp=1`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &stubProgressStore{}
			rec := httptest.NewRecorder()

			HandleSave(newProgressState(store))(rec, saveRequestBody(t, body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}

			if len(store.upserts) != 0 {
				t.Error("rejected request must not reach the store")
			}
		})
	}
}

func TestHandleSave_StoreFailure(t *testing.T) {
	store := &stubProgressStore{upsertErr: errors.New("connection refused")}
	rec := httptest.NewRecorder()

	HandleSave(newProgressState(store))(rec, saveRequestBody(t,
		`{"email":"viewer@example.com","video_id":"v1","timestamp":1}`))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleForViewer(t *testing.T) {
	store := &stubProgressStore{rows: map[string]catalog.Progress{
		"v1": {Viewer: "viewer@example.com", VideoID: "v1", Position: 10, Status: "in_progress"},
	}}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/progress/viewer@example.com", nil)
	req.SetPathValue("viewer", "viewer@example.com")

	HandleForViewer(newProgressState(store))(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if store.forViewer != "viewer@example.com" {
		t.Errorf("expected viewer path value to reach the store, got %q", store.forViewer)
	}

	var rows map[string]catalog.Progress
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(rows) != 1 || rows["v1"].Position != 10 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestHandleForViewer_Empty(t *testing.T) {
	store := &stubProgressStore{}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodGet, "/progress/new@example.com", nil)
	req.SetPathValue("viewer", "new@example.com")

	HandleForViewer(newProgressState(store))(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if body := strings.TrimSpace(rec.Body.String()); body != "{}" {
		t.Errorf("expected empty object for unknown viewer, got %q", body)
	}
}
