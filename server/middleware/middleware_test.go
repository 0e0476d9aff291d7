package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/server/auth"
	"github.com/vodhouse/vodhouse/server/util"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_SetsHeaders(t *testing.T) {
	var called bool
	rec := httptest.NewRecorder()
	CORS(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos", nil))

	if !called {
		t.Fatal("expected wrapped handler to run")
	}

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("unexpected allow-origin header: %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	var called bool
	rec := httptest.NewRecorder()
	CORS(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/videos", nil))

	if called {
		t.Error("preflight must not reach the wrapped handler")
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected allow-methods header on preflight")
	}
}

func TestRequireAdmin_Disabled(t *testing.T) {
	var called bool
	cfg := &config.Auth{Enforce: false}
	rec := httptest.NewRecorder()

	RequireAdmin(cfg, auth.TokenAuthorizer{}, okHandler(&called)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/videos", nil))

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through when enforcement is off, got %d", rec.Code)
	}
}

func TestRequireAdmin_MissingToken(t *testing.T) {
	var called bool
	cfg := &config.Auth{Enforce: true, AdminToken: "mock-admin-token"}
	rec := httptest.NewRecorder()

	RequireAdmin(cfg, auth.TokenAuthorizer{AdminToken: cfg.AdminToken}, okHandler(&called)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/videos", nil))

	if called {
		t.Error("handler must not run without a token")
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAdmin_WrongToken(t *testing.T) {
	var called bool
	cfg := &config.Auth{Enforce: true, AdminToken: "mock-admin-token"}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodDelete, "/videos/v1", nil)
	req.Header.Set("Authorization", "Bearer mock-user-token")

	RequireAdmin(cfg, auth.TokenAuthorizer{AdminToken: cfg.AdminToken}, okHandler(&called)).ServeHTTP(rec, req)

	if called {
		t.Error("handler must not run with a non-admin token")
	}

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdmin_ValidToken(t *testing.T) {
	var called bool
	var rl *util.RequestLogger
	cfg := &config.Auth{Enforce: true, AdminToken: "mock-admin-token"}
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/videos", nil)
	req.Header.Set("Authorization", "Bearer mock-admin-token")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		rl = util.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	RequireAdmin(cfg, auth.TokenAuthorizer{AdminToken: cfg.AdminToken}, inner).ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected admin token to pass, got %d", rec.Code)
	}

	if rl == nil {
		t.Error("expected a request logger tagged with the authorized caller in context")
	}
}

func TestLogging_InstallsRequestLogger(t *testing.T) {
	var rl *util.RequestLogger

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl = util.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Logging(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos", nil))

	if rl == nil {
		t.Fatal("expected a request logger in context")
	}
}
