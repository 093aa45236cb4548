package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/attestation-tracker/internal/handler"
	"github.com/unclebandit/attestation-tracker/internal/model"
)

type MockActionLogRepo struct {
	events    []model.ActionEvent
	err       error
	lastLimit int
}

func (m *MockActionLogRepo) Save(e *model.ActionEvent) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *MockActionLogRepo) ListByCampaign(campaignID int64, limit int) ([]model.ActionEvent, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	var out []model.ActionEvent
	for _, e := range m.events {
		if e.CampaignID == campaignID {
			out = append(out, e)
		}
	}
	return out, nil
}

func router(h *handler.ActionLogHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/campaigns/{id}/actions", h.ListActionsHandler)
	return r
}

func TestListActions(t *testing.T) {
	repo := &MockActionLogRepo{events: []model.ActionEvent{
		{ID: "a", CampaignID: 7, Kind: model.ActionBulkRemind, Sent: 2, At: time.Now()},
		{ID: "b", CampaignID: 8, Kind: model.ActionRemind, Sent: 1, At: time.Now()},
	}}
	h := router(handler.NewActionLogHandler(repo))

	req := httptest.NewRequest("GET", "/campaigns/7/actions?limit=5", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res struct {
		Data []model.ActionEvent `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(res.Data) != 1 || res.Data[0].ID != "a" {
		t.Errorf("unexpected events %+v", res.Data)
	}
	if repo.lastLimit != 5 {
		t.Errorf("expected limit 5, got %d", repo.lastLimit)
	}
}

func TestListActionsDefaults(t *testing.T) {
	repo := &MockActionLogRepo{}
	h := router(handler.NewActionLogHandler(repo))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/campaigns/7/actions?limit=-1", nil))
	if repo.lastLimit != 50 {
		t.Errorf("expected default limit 50, got %d", repo.lastLimit)
	}
}

func TestListActionsErrors(t *testing.T) {
	cases := []struct {
		name string
		h    *handler.ActionLogHandler
		path string
		want int
	}{
		{"not configured", &handler.ActionLogHandler{}, "/campaigns/7/actions", http.StatusServiceUnavailable},
		{"bad id", handler.NewActionLogHandler(&MockActionLogRepo{}), "/campaigns/x/actions", http.StatusBadRequest},
		{"repo error", handler.NewActionLogHandler(&MockActionLogRepo{err: errors.New("db down")}), "/campaigns/7/actions", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router(tc.h).ServeHTTP(w, httptest.NewRequest("GET", tc.path, nil))
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}
