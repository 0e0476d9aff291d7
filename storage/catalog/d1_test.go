package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vodhouse/vodhouse/config"
)

type d1Expectation struct {
	contains string
	rows     []map[string]any
	status   int
	success  bool
}

func newD1TestStore(t *testing.T, expectations []d1Expectation) *D1Store {
	t.Helper()

	// Every store boot issues the two CREATE TABLE statements first.
	expectations = append([]d1Expectation{
		{contains: "CREATE TABLE", success: true},
		{contains: "CREATE TABLE", success: true},
	}, expectations...)

	idx := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		if !strings.HasSuffix(r.URL.Path, "/query") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			SQL    string   `json:"sql"`
			Params []string `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}

		if idx >= len(expectations) {
			t.Fatalf("unexpected request for sql: %s", req.SQL)
		}

		exp := expectations[idx]
		idx++

		if !strings.Contains(req.SQL, exp.contains) {
			t.Fatalf("expected sql containing %q, got %q", exp.contains, req.SQL)
		}

		status := exp.status
		if status == 0 {
			status = http.StatusOK
		}

		w.WriteHeader(status)
		if !exp.success {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "errors": []map[string]any{{"message": "fail"}}})
			return
		}

		result := map[string]any{"success": true}
		if exp.rows != nil {
			result["results"] = exp.rows
		}

		resp := map[string]any{
			"success": true,
			"result":  []map[string]any{result},
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.D1CatalogStrategy{
		AccountID:  "acc",
		DatabaseID: "db",
		APIToken:   "token",
		Endpoint:   srv.URL,
	}

	store, err := newD1StoreWithClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("store init: %v", err)
	}

	return store
}

func d1VideoRow(v *Video) map[string]any {
	return map[string]any{
		"id":          v.ID,
		"title":       v.Title,
		"description": v.Description,
		"url":         v.URL,
		"source":      string(v.Source),
		"thumbnail":   v.Thumbnail,
		"duration":    v.Duration,
		"category":    v.Category,
		"created_at":  v.CreatedAt,
	}
}

func TestD1Store_InsertAndGet(t *testing.T) {
	v := testVideo()

	store := newD1TestStore(t, []d1Expectation{
		{contains: "INSERT INTO", success: true},
		{contains: "SELECT id, title", success: true, rows: []map[string]any{d1VideoRow(v)}},
	})

	ctx := context.Background()
	if err := store.Insert(ctx, v); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	fetched, err := store.Get(ctx, v.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if *fetched != *v {
		t.Fatalf("fetched video differs:\n got %+v\nwant %+v", fetched, v)
	}
}

func TestD1Store_Get_NotFound(t *testing.T) {
	store := newD1TestStore(t, []d1Expectation{
		{contains: "SELECT id, title", success: true},
	})

	if _, err := store.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestD1Store_List_CategoryFilter(t *testing.T) {
	v := testVideo()

	store := newD1TestStore(t, []d1Expectation{
		{contains: "WHERE category = ?", success: true, rows: []map[string]any{d1VideoRow(v)}},
	})

	videos, err := store.List(context.Background(), "required")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(videos) != 1 || videos[0].ID != v.ID {
		t.Fatalf("unexpected list result: %+v", videos)
	}
}

func TestD1Store_Delete(t *testing.T) {
	store := newD1TestStore(t, []d1Expectation{
		{contains: "SELECT 1 FROM", success: true, rows: []map[string]any{{"1": float64(1)}}},
		{contains: "DELETE FROM", success: true},
	})

	if err := store.Delete(context.Background(), "v-test-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestD1Store_Delete_NotFound(t *testing.T) {
	store := newD1TestStore(t, []d1Expectation{
		{contains: "SELECT 1 FROM", success: true},
	})

	if err := store.Delete(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestD1Store_UpsertAndForViewer(t *testing.T) {
	store := newD1TestStore(t, []d1Expectation{
		{contains: "ON CONFLICT (viewer, video_id) DO UPDATE", success: true},
		{contains: "SELECT viewer, video_id", success: true, rows: []map[string]any{{
			"viewer":       "viewer@test.com",
			"video_id":     "v1",
			"position":     42.5,
			"status":       "playing",
			"last_watched": "2026-01-02T15:04:05Z",
		}}},
	})

	ctx := context.Background()
	if err := store.Upsert(ctx, "viewer@test.com", "v1", 42.5, "playing"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	rows, err := store.ForViewer(ctx, "viewer@test.com")
	if err != nil {
		t.Fatalf("for viewer failed: %v", err)
	}

	if len(rows) != 1 || rows["v1"].Position != 42.5 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestD1Store_Upsert_RejectsBadPosition(t *testing.T) {
	store := newD1TestStore(t, nil)

	if err := store.Upsert(context.Background(), "viewer@test.com", "v1", -3, "playing"); err == nil {
		t.Fatal("expected error for negative position")
	}
}

func TestD1Store_QueryFailure(t *testing.T) {
	store := newD1TestStore(t, []d1Expectation{
		{contains: "SELECT id, title", status: http.StatusBadRequest, success: false},
	})

	if _, err := store.Get(context.Background(), "v1"); err == nil {
		t.Fatal("expected error from failed query")
	}
}

func TestNewD1Store_NilConfig(t *testing.T) {
	if _, err := NewD1Store(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
