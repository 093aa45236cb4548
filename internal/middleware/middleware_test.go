package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/unclebandit/attestation-tracker/internal/middleware"
	"github.com/unclebandit/attestation-tracker/internal/model"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if seen == "" {
		t.Fatalf("expected a request id in context")
	}
	if got := w.Header().Get(middleware.RequestIDHeader); got != seen {
		t.Errorf("expected header %q, got %q", seen, got)
	}
}

func TestRequestIDReused(t *testing.T) {
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "existing-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get(middleware.RequestIDHeader); got != "existing-123" {
		t.Errorf("expected existing-123, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	h := middleware.RequestID(middleware.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestRequestLoggerPassesStatus(t *testing.T) {
	h := middleware.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/test?x=1", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", w.Code)
	}
}

func TestIdentity(t *testing.T) {
	var got model.Caller
	h := middleware.Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = middleware.CallerFrom(r.Context())
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RoleHeader, "Manager")
	req.Header.Set(middleware.EmailHeader, " boss@example.com ")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.Role != model.RoleManager || got.Email != "boss@example.com" {
		t.Errorf("unexpected caller %+v", got)
	}
}

func TestIdentityRejectsUnknownRole(t *testing.T) {
	called := false
	h := middleware.Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RoleHeader, "superuser")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if called {
		t.Errorf("handler must not run without identity")
	}
}

func TestRequireDashboardRole(t *testing.T) {
	tests := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleCoordinator, http.StatusOK},
		{model.RoleManager, http.StatusOK},
		{model.RoleEmployee, http.StatusForbidden},
	}
	for _, tt := range tests {
		h := middleware.RequireDashboardRole(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest("GET", "/test", nil)
		req = req.WithContext(middleware.WithCaller(req.Context(), model.Caller{Role: tt.role, Email: "x@example.com"}))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Errorf("role %s: expected %d, got %d", tt.role, tt.want, w.Code)
		}
	}
}

func TestRequireDashboardRoleWithoutCaller(t *testing.T) {
	h := middleware.RequireDashboardRole(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}
