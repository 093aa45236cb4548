// internal/controller/dashboard_controller.go
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/attestation-tracker/internal/dashboard"
	appErrors "github.com/unclebandit/attestation-tracker/internal/errors"
	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/middleware"
	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/service"
)

// Dashboards hands out the caller's dashboard instance for a campaign.
// *service.Registry implements it.
type Dashboards interface {
	Get(ctx context.Context, caller model.Caller, campaignID int64) (*service.Instance, error)
}

type DashboardController struct {
	Dashboards Dashboards
}

// Routes mounts the dashboard endpoints under /campaigns/{id}.
func (c *DashboardController) Routes(r chi.Router) {
	r.Get("/dashboard", c.GetDashboard)
	r.Post("/refresh", c.Refresh)
	r.Post("/auto-refresh", c.SetAutoRefresh)
	r.Delete("/notice", c.DismissNotice)
	r.Post("/selection/toggle", c.ToggleSelection)
	r.Post("/selection/all", c.SelectAll)
	r.Delete("/selection", c.ClearSelection)
	r.Post("/bulk-remind", c.BulkRemind)
	r.Post("/bulk-resend-invites", c.BulkResendInvites)
	r.Post("/records/{recordID}/remind", c.RemindRecord)
	r.Post("/invites/{inviteID}/resend", c.ResendInvite)
}

// GetDashboard renders the scoped and filtered view. Query parameters, when
// given, replace the stored filters; otherwise the current ones are kept.
func (c *DashboardController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	d := inst.Dashboard

	params := r.URL.Query()
	if params.Has("tab") || params.Has("search") || params.Has("company") || params.Has("team_only") {
		q, teamOnly := d.Filters()
		if params.Has("tab") {
			tab, err := dashboard.ParseTab(params.Get("tab"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			q.Tab = tab
		}
		if params.Has("search") {
			q.Search = params.Get("search")
		}
		if params.Has("company") {
			q.Company = params.Get("company")
		}
		if params.Has("team_only") {
			v, err := strconv.ParseBool(params.Get("team_only"))
			if err != nil {
				http.Error(w, "invalid team_only", http.StatusBadRequest)
				return
			}
			teamOnly = v
		}
		if err := d.SetFilters(r.Context(), q, teamOnly); err != nil {
			logger.WithField("campaign_id", d.CampaignID()).WithError(err).Warn("Failed to save dashboard preferences")
		}
	}

	c.writeView(w, inst)
}

// Refresh forces a reload. A failure keeps the previous records and is
// reported through the view's notice.
func (c *DashboardController) Refresh(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	inst.Scheduler.RefreshNow(r.Context())
	c.writeView(w, inst)
}

// SetAutoRefresh pauses or resumes the scheduled reloads for this dashboard.
func (c *DashboardController) SetAutoRefresh(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Enabled == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if *body.Enabled {
		inst.Scheduler.Resume()
	} else {
		inst.Scheduler.Pause()
	}
	c.writeView(w, inst)
}

func (c *DashboardController) DismissNotice(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	inst.Dashboard.DismissNotice()
	c.writeView(w, inst)
}

func (c *DashboardController) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}

	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := inst.Dashboard.Toggle(body.Key); err != nil {
		writeError(w, err)
		return
	}
	c.writeView(w, inst)
}

func (c *DashboardController) SelectAll(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	if err := inst.Dashboard.SelectAllVisible(); err != nil {
		writeError(w, err)
		return
	}
	c.writeView(w, inst)
}

func (c *DashboardController) ClearSelection(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	inst.Dashboard.ClearSelection()
	c.writeView(w, inst)
}

func (c *DashboardController) BulkRemind(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	result, err := inst.Dashboard.BulkRemind(r.Context())
	writeAction(w, result, err)
}

func (c *DashboardController) BulkResendInvites(w http.ResponseWriter, r *http.Request) {
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	result, err := inst.Dashboard.BulkResendInvites(r.Context())
	writeAction(w, result, err)
}

func (c *DashboardController) RemindRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	result, err := inst.Dashboard.RemindOne(r.Context(), recordID)
	writeAction(w, result, err)
}

func (c *DashboardController) ResendInvite(w http.ResponseWriter, r *http.Request) {
	inviteID, err := strconv.ParseInt(chi.URLParam(r, "inviteID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid invite id", http.StatusBadRequest)
		return
	}
	inst, ok := c.instance(w, r)
	if !ok {
		return
	}
	result, err := inst.Dashboard.ResendInviteOne(r.Context(), inviteID)
	writeAction(w, result, err)
}

// instance resolves the caller and campaign id and fetches the dashboard.
// It writes the error response itself and reports whether to continue.
func (c *DashboardController) instance(w http.ResponseWriter, r *http.Request) (*service.Instance, bool) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return nil, false
	}
	if caller.Role != model.RoleAdmin && caller.Role != model.RoleCoordinator && caller.Role != model.RoleManager {
		writeError(w, appErrors.ErrRoleNotPermitted)
		return nil, false
	}

	campaignID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return nil, false
	}

	inst, err := c.Dashboards.Get(r.Context(), caller, campaignID)
	if err != nil {
		logger.WithField("campaign_id", campaignID).WithError(err).Warn("Failed to load dashboard")
		writeError(w, err)
		return nil, false
	}
	return inst, true
}

func (c *DashboardController) writeView(w http.ResponseWriter, inst *service.Instance) {
	v, err := inst.Dashboard.View()
	if err != nil {
		writeError(w, err)
		return
	}
	v.AutoRefresh = inst.Scheduler.Running()
	writeJSON(w, http.StatusOK, v)
}

// writeAction reports an action outcome. A whole-batch failure still
// carries its result so the UI can show what was attempted.
func writeAction(w http.ResponseWriter, result *service.ActionResult, err error) {
	if err != nil && result == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		writeJSON(w, statusFor(err), map[string]interface{}{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func statusFor(err error) int {
	var apiErr *appErrors.APIError
	switch {
	case errors.Is(err, appErrors.ErrRoleNotPermitted):
		return http.StatusForbidden
	case appErrors.IsCampaignNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, appErrors.ErrNotLoaded), errors.Is(err, service.ErrActionInFlight):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
