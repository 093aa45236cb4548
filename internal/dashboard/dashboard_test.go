package dashboard

import (
	"errors"
	"reflect"
	"testing"
	"time"

	appErrors "github.com/unclebandit/attestation-tracker/internal/errors"
	"github.com/unclebandit/attestation-tracker/internal/model"
)

var now = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

func campaignStartedDaysAgo(days, escalation int) model.Campaign {
	return model.Campaign{
		ID:             1,
		StartDate:      now.Add(-time.Duration(days) * 24 * time.Hour),
		EscalationDays: escalation,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func registered(id int64, status model.RecordStatus) model.AttestationRecord {
	r := model.AttestationRecord{ID: id, Status: status}
	if status == model.StatusCompleted {
		done := now
		r.CompletedAt = &done
	}
	return r
}

func invite(inviteID int64) model.AttestationRecord {
	return model.AttestationRecord{
		Status:          model.StatusUnregistered,
		IsPendingInvite: true,
		InviteID:        int64Ptr(inviteID),
	}
}

func TestDaysElapsedNeverNegative(t *testing.T) {
	if got := DaysElapsed(now.Add(72*time.Hour), now); got != 0 {
		t.Errorf("expected 0 for future start, got %d", got)
	}
	if got := DaysElapsed(now.Add(-36*time.Hour), now); got != 1 {
		t.Errorf("expected 1 whole day, got %d", got)
	}
	if got := DaysElapsed(now, now); got != 0 {
		t.Errorf("expected 0 on start day, got %d", got)
	}
}

func TestDaysLate(t *testing.T) {
	pending := registered(1, model.StatusPending)

	c := campaignStartedDaysAgo(7, 5)
	if got := DaysLate(pending, c, now); got != 2 {
		t.Errorf("expected 2 days late, got %d", got)
	}
	if !IsOverdue(pending, c, now) {
		t.Errorf("expected pending record to be overdue")
	}

	c = campaignStartedDaysAgo(7, 10)
	if got := DaysLate(pending, c, now); got != 0 {
		t.Errorf("expected 0 days late, got %d", got)
	}
	if IsOverdue(pending, c, now) {
		t.Errorf("expected pending record not to be overdue")
	}
}

func TestCompletedNeverOverdue(t *testing.T) {
	done := registered(1, model.StatusCompleted)
	c := campaignStartedDaysAgo(400, 0)

	if got := DaysLate(done, c, now); got != 0 {
		t.Errorf("expected 0 days late for completed, got %d", got)
	}
	if IsOverdue(done, c, now) {
		t.Errorf("completed record must never be overdue")
	}
}

func TestClassify(t *testing.T) {
	c := campaignStartedDaysAgo(7, 4)

	cl := Classify(registered(1, model.StatusInProgress), c, now)
	if !cl.Overdue || cl.DaysLate != 3 {
		t.Fatalf("expected overdue by 3, got %+v", cl)
	}
	if cl.Label != "In Progress (3d late)" {
		t.Errorf("unexpected label %q", cl.Label)
	}

	cl = Classify(registered(2, model.StatusCompleted), c, now)
	if cl.Overdue || cl.Label != "Completed" {
		t.Errorf("unexpected completed classification %+v", cl)
	}
	if cl.Status != model.StatusCompleted {
		t.Errorf("classification must keep the record status")
	}
}

func TestScope(t *testing.T) {
	records := []model.AttestationRecord{
		{ID: 1, ManagerEmail: "Boss@Example.com"},
		{ID: 2, ManagerEmail: "other@example.com"},
		{ID: 3},
	}
	manager := model.Caller{Role: model.RoleManager, Email: "boss@example.com"}

	got, err := Scope(records, manager, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected only record 1 for team view, got %+v", got)
	}

	got, _ = Scope(records, manager, false)
	if len(got) != 3 {
		t.Errorf("expected full visibility with team toggle off, got %d", len(got))
	}

	for _, role := range []model.Role{model.RoleAdmin, model.RoleCoordinator} {
		got, err := Scope(records, model.Caller{Role: role}, true)
		if err != nil || len(got) != 3 {
			t.Errorf("role %s: expected all records, got %d (%v)", role, len(got), err)
		}
	}

	_, err = Scope(records, model.Caller{Role: model.RoleEmployee}, false)
	if !errors.Is(err, appErrors.ErrRoleNotPermitted) {
		t.Errorf("expected ErrRoleNotPermitted for employee, got %v", err)
	}
}

func TestFilterComposition(t *testing.T) {
	c := campaignStartedDaysAgo(1, 10)
	a := registered(1, model.StatusPending)
	a.Companies = []string{"X"}
	b := registered(2, model.StatusCompleted)
	b.Companies = []string{"Y"}
	records := []model.AttestationRecord{a, b}

	got := Filter(records, Query{Tab: TabPending, Company: "X"}, c, now)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected {A}, got %+v", got)
	}

	got = Filter(records, Query{Tab: TabCompleted, Company: AllCompanies}, c, now)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("expected {B}, got %+v", got)
	}

	got = Filter(records, Query{Tab: TabCompleted, Company: "X"}, c, now)
	if len(got) != 0 {
		t.Errorf("stages must only narrow, got %+v", got)
	}
}

func TestFilterSearch(t *testing.T) {
	c := campaignStartedDaysAgo(1, 10)
	records := []model.AttestationRecord{
		{ID: 1, UserName: "Ada Lovelace", UserEmail: "ada@example.com", ManagerName: "Charles"},
		{ID: 2, UserName: "Grace Hopper", UserEmail: "grace@navy.mil", ManagerEmail: "ada@example.com"},
	}

	got := Filter(records, Query{Search: "ADA"}, c, now)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("search must ignore manager fields, got %+v", got)
	}

	got = Filter(records, Query{Search: "charles"}, c, now)
	if len(got) != 0 {
		t.Errorf("manager name must not be searched, got %+v", got)
	}

	got = Filter(records, Query{Search: "  "}, c, now)
	if len(got) != 2 {
		t.Errorf("blank search is a no-op, got %d", len(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	c := campaignStartedDaysAgo(1, 10)
	records := []model.AttestationRecord{registered(1, model.StatusPending), registered(2, model.StatusCompleted)}
	before := append([]model.AttestationRecord(nil), records...)

	Filter(records, Query{Tab: TabCompleted}, c, now)
	if !reflect.DeepEqual(before, records) {
		t.Errorf("filter modified its input")
	}
}

func TestCountRecords(t *testing.T) {
	c := campaignStartedDaysAgo(10, 3)
	records := []model.AttestationRecord{
		registered(1, model.StatusPending),
		registered(2, model.StatusInProgress),
		registered(3, model.StatusCompleted),
		invite(9),
	}

	counts := CountRecords(records, c, now)
	want := Counts{Total: 4, Overdue: 3, Pending: 1, InProgress: 1, Completed: 1, Unregistered: 1}
	if counts != want {
		t.Errorf("expected %+v, got %+v", want, counts)
	}
}

func TestCompanies(t *testing.T) {
	records := []model.AttestationRecord{
		{Companies: []string{"Beta", "Acme"}},
		{Companies: []string{"Acme", ""}},
		{},
	}
	got := Companies(records)
	if !reflect.DeepEqual(got, []string{"Acme", "Beta"}) {
		t.Errorf("unexpected companies %v", got)
	}
}

func TestParseTab(t *testing.T) {
	if tab, err := ParseTab(""); err != nil || tab != TabAll {
		t.Errorf("empty tab should default to all, got %q %v", tab, err)
	}
	if _, err := ParseTab("archived"); err == nil {
		t.Errorf("expected error for unknown tab")
	}
}

func TestSelectionToggleIgnoresCompleted(t *testing.T) {
	s := NewSelection()
	s.Toggle(registered(1, model.StatusCompleted))
	if s.Len() != 0 {
		t.Errorf("completed record entered selection")
	}

	s.Toggle(registered(2, model.StatusPending))
	s.Toggle(registered(1, model.StatusCompleted))
	if !reflect.DeepEqual(s.Keys(), []string{"record:2"}) {
		t.Errorf("unexpected selection %v", s.Keys())
	}

	s.Toggle(registered(2, model.StatusPending))
	if s.Len() != 0 {
		t.Errorf("second toggle should deselect")
	}
}

func TestSelectAllVisibleTogglesOff(t *testing.T) {
	visible := []model.AttestationRecord{
		registered(1, model.StatusPending),
		registered(2, model.StatusCompleted),
		invite(7),
	}
	s := NewSelection()

	s.SelectAllVisible(visible)
	if !reflect.DeepEqual(s.Keys(), []string{"invite:7", "record:1"}) {
		t.Fatalf("unexpected selection %v", s.Keys())
	}

	s.SelectAllVisible(visible)
	if s.Len() != 0 {
		t.Errorf("second select-all should clear, got %v", s.Keys())
	}
}

func TestSelectAllVisibleKeepsOtherViews(t *testing.T) {
	s := NewSelection()
	s.Toggle(registered(5, model.StatusPending))

	s.SelectAllVisible([]model.AttestationRecord{registered(1, model.StatusPending)})
	if s.Len() != 2 {
		t.Fatalf("expected selection to span views, got %v", s.Keys())
	}
	s.SelectAllVisible([]model.AttestationRecord{registered(1, model.StatusPending)})
	if !reflect.DeepEqual(s.Keys(), []string{"record:5"}) {
		t.Errorf("clearing a view must keep selections from other views, got %v", s.Keys())
	}
}

func TestPartition(t *testing.T) {
	reg := registered(11, model.StatusPending)
	inv := invite(22)
	hidden := registered(33, model.StatusInProgress)

	s := NewSelection()
	s.Toggle(reg)
	s.Toggle(inv)
	s.Toggle(hidden)

	p := s.Partition([]model.AttestationRecord{reg, inv})
	if !reflect.DeepEqual(p.RegisteredIDs, []int64{11}) {
		t.Errorf("expected registered [11], got %v", p.RegisteredIDs)
	}
	if !reflect.DeepEqual(p.InviteIDs, []int64{22}) {
		t.Errorf("expected invites [22], got %v", p.InviteIDs)
	}
}

func TestInviteKeyDoesNotMatchRegisteredRecord(t *testing.T) {
	s := NewSelection()
	s.Toggle(invite(5))

	// the participant registered: same number, now a real record
	p := s.Partition([]model.AttestationRecord{registered(5, model.StatusPending)})
	if len(p.RegisteredIDs) != 0 || len(p.InviteIDs) != 0 {
		t.Errorf("invite selection leaked into registered record: %+v", p)
	}
}
