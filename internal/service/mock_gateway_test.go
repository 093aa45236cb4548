package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/apiclient"
	"github.com/unclebandit/attestation-tracker/internal/model"
)

var fixedNow = time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

// MockGateway serves a fixed dashboard and records every call.
type MockGateway struct {
	mu sync.Mutex

	Campaign model.Campaign
	Records  []model.AttestationRecord

	LoadErr        error
	BulkRemindRes  apiclient.BulkRemindResult
	BulkRemindErr  error
	BulkInviteRes  apiclient.ResendInvitesResult
	BulkInviteErr  error
	RemindErrs     map[int64]error
	ResendErrs     map[int64]error
	RemindBlock    chan struct{}

	Loads          int
	BulkRemindIDs  [][]int64
	BulkInviteIDs  [][]int64
	RemindCalls    []int64
	ResendCalls    []int64
}

func newMockGateway() *MockGateway {
	completedAt := fixedNow.Add(-time.Hour)
	return &MockGateway{
		Campaign: model.Campaign{
			ID:             7,
			Status:         model.CampaignActive,
			StartDate:      fixedNow.Add(-10 * 24 * time.Hour),
			EscalationDays: 5,
		},
		Records: []model.AttestationRecord{
			{ID: 1, UserName: "Ada", UserEmail: "ada@example.com", ManagerEmail: "boss@example.com", Companies: []string{"Acme"}, Status: model.StatusPending},
			{ID: 2, UserName: "Grace", UserEmail: "grace@example.com", ManagerEmail: "other@example.com", Companies: []string{"Beta"}, Status: model.StatusInProgress},
			{ID: 3, UserName: "Linus", UserEmail: "linus@example.com", ManagerEmail: "boss@example.com", Companies: []string{"Acme"}, Status: model.StatusCompleted, CompletedAt: &completedAt},
			{UserName: "Ken", UserEmail: "ken@example.com", Companies: []string{"Acme"}, Status: model.StatusUnregistered, IsPendingInvite: true, InviteID: int64Ptr(40)},
		},
	}
}

func (m *MockGateway) Dashboard(ctx context.Context, campaignID int64) (*model.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	records := append([]model.AttestationRecord(nil), m.Records...)
	return &model.Dashboard{Campaign: m.Campaign, Records: records}, nil
}

func (m *MockGateway) RemindRecord(ctx context.Context, recordID int64) error {
	if m.RemindBlock != nil {
		<-m.RemindBlock
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemindCalls = append(m.RemindCalls, recordID)
	return m.RemindErrs[recordID]
}

func (m *MockGateway) BulkRemind(ctx context.Context, campaignID int64, recordIDs []int64) (apiclient.BulkRemindResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BulkRemindIDs = append(m.BulkRemindIDs, recordIDs)
	return m.BulkRemindRes, m.BulkRemindErr
}

func (m *MockGateway) ResendInvite(ctx context.Context, inviteID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResendCalls = append(m.ResendCalls, inviteID)
	return m.ResendErrs[inviteID]
}

func (m *MockGateway) BulkResendInvites(ctx context.Context, campaignID int64, inviteIDs []int64) (apiclient.ResendInvitesResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BulkInviteIDs = append(m.BulkInviteIDs, inviteIDs)
	return m.BulkInviteRes, m.BulkInviteErr
}

func (m *MockGateway) loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Loads
}

var errBoom = errors.New("boom")
