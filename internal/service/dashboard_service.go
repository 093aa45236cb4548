// internal/service/dashboard_service.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/apiclient"
	"github.com/unclebandit/attestation-tracker/internal/dashboard"
	appErrors "github.com/unclebandit/attestation-tracker/internal/errors"
	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/prefs"
	"github.com/unclebandit/attestation-tracker/internal/queue"
)

// Gateway is the subset of the attestation API the dashboard needs.
type Gateway interface {
	Dashboard(ctx context.Context, campaignID int64) (*model.Dashboard, error)
	RemindRecord(ctx context.Context, recordID int64) error
	BulkRemind(ctx context.Context, campaignID int64, recordIDs []int64) (apiclient.BulkRemindResult, error)
	ResendInvite(ctx context.Context, inviteID int64) error
	BulkResendInvites(ctx context.Context, campaignID int64, inviteIDs []int64) (apiclient.ResendInvitesResult, error)
}

// Notice sources.
const (
	NoticeRefresh = "refresh"
	NoticeAction  = "action"
)

// Notice is a non-blocking message for the caller, e.g. a failed
// background refresh or a failed single-item action. A refresh notice is
// cleared by the next applied reload.
type Notice struct {
	Source  string    `json:"source"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// DashboardService is one dashboard instance: the loaded record snapshot plus
// the caller's filters and selection. Instances never share state.
type DashboardService struct {
	Gateway Gateway
	Queue   queue.Queue
	Topic   string
	Prefs   prefs.Store
	Now     func() time.Time

	campaignID int64
	caller     model.Caller

	mu            sync.Mutex
	campaign      model.Campaign
	records       []model.AttestationRecord
	loaded        bool
	query         dashboard.Query
	teamOnly      bool
	selection     *dashboard.Selection
	busy          map[string]bool
	lastRefreshed time.Time
	notice        *Notice

	// reload sequencing: a response is applied only if it is newer than
	// the last applied one
	startedSeq uint64
	appliedSeq uint64
}

func NewDashboardService(gw Gateway, campaignID int64, caller model.Caller) *DashboardService {
	return &DashboardService{
		Gateway:    gw,
		Topic:      queue.ActionsTopic,
		Now:        time.Now,
		campaignID: campaignID,
		caller:     caller,
		query:      dashboard.Query{Tab: dashboard.TabAll, Company: dashboard.AllCompanies},
		selection:  dashboard.NewSelection(),
		busy:       map[string]bool{},
	}
}

func (s *DashboardService) CampaignID() int64 { return s.campaignID }

func (s *DashboardService) Caller() model.Caller { return s.caller }

// Load performs the initial fetch. Its error is meant to block rendering.
func (s *DashboardService) Load(ctx context.Context) error {
	_, err := s.reload(ctx)
	return err
}

// Refresh re-pulls the record set. On failure the previous records stay in
// place and a notice is recorded.
func (s *DashboardService) Refresh(ctx context.Context) error {
	_, err := s.reload(ctx)
	if err != nil {
		logger.WithField("campaign_id", s.campaignID).WithError(err).Warn("Dashboard refresh failed")
		s.setNotice(NoticeRefresh, "warning", "Could not refresh attestation records: "+err.Error())
	}
	return err
}

// reload fetches and atomically replaces the snapshot. It reports whether
// the response was applied; stale responses are dropped.
func (s *DashboardService) reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.startedSeq++
	seq := s.startedSeq
	s.mu.Unlock()

	d, err := s.Gateway.Dashboard(ctx, s.campaignID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		logger.WithField("campaign_id", s.campaignID).Debug("Discarding stale dashboard response")
		return false, nil
	}
	s.appliedSeq = seq
	s.campaign = d.Campaign
	s.records = d.Records
	s.loaded = true
	s.selection.Clear()
	s.lastRefreshed = s.Now()
	if s.notice != nil && s.notice.Source == NoticeRefresh {
		s.notice = nil
	}
	return true, nil
}

// Active reports whether the campaign is loaded and still collecting
// attestations, i.e. worth polling.
func (s *DashboardService) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return true
	}
	return s.campaign.Status == "" || s.campaign.Status == model.CampaignActive
}

// RecordView is one visible record with its derived display state.
type RecordView struct {
	model.AttestationRecord
	Key            string                   `json:"key"`
	Classification dashboard.Classification `json:"classification"`
	Selected       bool                     `json:"selected"`
	Selectable     bool                     `json:"selectable"`
	Busy           bool                     `json:"busy"`
}

// View is everything needed to render the dashboard.
type View struct {
	Campaign      model.Campaign   `json:"campaign"`
	Query         dashboard.Query  `json:"query"`
	TeamOnly      bool             `json:"team_only"`
	Records       []RecordView     `json:"records"`
	Counts        dashboard.Counts `json:"counts"`
	Companies     []string         `json:"companies"`
	SelectedCount int              `json:"selected_count"`
	LastRefreshed time.Time        `json:"last_refreshed"`
	Notice        *Notice          `json:"notice,omitempty"`
	// AutoRefresh is filled in by whoever owns the refresh loop.
	AutoRefresh bool `json:"auto_refresh"`
}

// View derives the scoped and filtered view from the current snapshot.
func (s *DashboardService) View() (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, appErrors.ErrNotLoaded
	}

	now := s.Now()
	scoped, err := dashboard.Scope(s.records, s.caller, s.teamOnly)
	if err != nil {
		return nil, err
	}
	visible := dashboard.Filter(scoped, s.query, s.campaign, now)

	v := &View{
		Campaign:      s.campaign,
		Query:         s.query,
		TeamOnly:      s.teamOnly,
		Records:       make([]RecordView, 0, len(visible)),
		Counts:        dashboard.CountRecords(scoped, s.campaign, now),
		Companies:     dashboard.Companies(scoped),
		SelectedCount: s.selection.Len(),
		LastRefreshed: s.lastRefreshed,
		Notice:        s.notice,
	}
	for _, r := range visible {
		k := r.Key()
		v.Records = append(v.Records, RecordView{
			AttestationRecord: r,
			Key:               k,
			Classification:    dashboard.Classify(r, s.campaign, now),
			Selected:          s.selection.Has(k),
			Selectable:        dashboard.Eligible(r),
			Busy:              s.busy[k],
		})
	}
	return v, nil
}

// visibleLocked returns the currently visible records. Callers hold mu.
func (s *DashboardService) visibleLocked() ([]model.AttestationRecord, error) {
	if !s.loaded {
		return nil, appErrors.ErrNotLoaded
	}
	scoped, err := dashboard.Scope(s.records, s.caller, s.teamOnly)
	if err != nil {
		return nil, err
	}
	return dashboard.Filter(scoped, s.query, s.campaign, s.Now()), nil
}

// SetFilters replaces the filter criteria and team toggle. The selection is
// kept. Preferences are persisted when a store is configured.
func (s *DashboardService) SetFilters(ctx context.Context, q dashboard.Query, teamOnly bool) error {
	if q.Tab == "" {
		q.Tab = dashboard.TabAll
	}
	if q.Company == "" {
		q.Company = dashboard.AllCompanies
	}

	s.mu.Lock()
	s.query = q
	s.teamOnly = teamOnly
	s.mu.Unlock()

	if s.Prefs == nil {
		return nil
	}
	return s.Prefs.Save(ctx, s.caller.Email, s.campaignID, prefs.Prefs{Query: q, TeamOnly: teamOnly})
}

// RestorePrefs applies stored preferences, if any.
func (s *DashboardService) RestorePrefs(ctx context.Context) error {
	if s.Prefs == nil {
		return nil
	}
	p, ok, err := s.Prefs.Load(ctx, s.caller.Email, s.campaignID)
	if err != nil || !ok {
		return err
	}
	s.mu.Lock()
	s.query = p.Query
	s.teamOnly = p.TeamOnly
	s.mu.Unlock()
	return nil
}

func (s *DashboardService) Filters() (dashboard.Query, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.teamOnly
}

// Toggle flips the selection of the visible record identified by key.
// Unknown or filtered-out keys and completed records are ignored.
func (s *DashboardService) Toggle(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible, err := s.visibleLocked()
	if err != nil {
		return err
	}
	for _, r := range visible {
		if r.Key() == key {
			s.selection.Toggle(r)
			return nil
		}
	}
	return nil
}

// SelectAllVisible selects every eligible visible record, or clears them
// when all are already selected.
func (s *DashboardService) SelectAllVisible() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible, err := s.visibleLocked()
	if err != nil {
		return err
	}
	s.selection.SelectAllVisible(visible)
	return nil
}

func (s *DashboardService) ClearSelection() {
	s.mu.Lock()
	s.selection.Clear()
	s.mu.Unlock()
}

func (s *DashboardService) SelectedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Keys()
}

// Partition splits the selection against the currently visible records.
func (s *DashboardService) Partition() (dashboard.Partitioned, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible, err := s.visibleLocked()
	if err != nil {
		return dashboard.Partitioned{}, err
	}
	return s.selection.Partition(visible), nil
}

// LastRefreshed is the time the current snapshot was applied.
func (s *DashboardService) LastRefreshed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefreshed
}

// Notice returns the latest notice, if any.
func (s *DashboardService) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *DashboardService) DismissNotice() {
	s.mu.Lock()
	s.notice = nil
	s.mu.Unlock()
}

func (s *DashboardService) setNotice(source, level, msg string) {
	s.mu.Lock()
	s.notice = &Notice{Source: source, Level: level, Message: msg, At: s.Now()}
	s.mu.Unlock()
}
