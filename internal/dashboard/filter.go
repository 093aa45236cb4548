package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/model"
)

type Tab string

const (
	TabAll          Tab = "all"
	TabOverdue      Tab = "overdue"
	TabPending      Tab = "pending"
	TabInProgress   Tab = "in_progress"
	TabCompleted    Tab = "completed"
	TabUnregistered Tab = "unregistered"
)

// AllCompanies disables the company facet.
const AllCompanies = "all"

func ParseTab(s string) (Tab, error) {
	if s == "" {
		return TabAll, nil
	}
	switch t := Tab(s); t {
	case TabAll, TabOverdue, TabPending, TabInProgress, TabCompleted, TabUnregistered:
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// Query is the filter criteria applied on top of the scoped record set.
type Query struct {
	Tab     Tab    `json:"tab"`
	Search  string `json:"search"`
	Company string `json:"company"`
}

// Filter narrows scoped by company, then tab, then search. The input slice
// is never modified.
func Filter(scoped []model.AttestationRecord, q Query, c model.Campaign, now time.Time) []model.AttestationRecord {
	company := strings.TrimSpace(q.Company)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.AttestationRecord, 0, len(scoped))
	for _, r := range scoped {
		if company != "" && company != AllCompanies && !r.InCompany(company) {
			continue
		}
		if !matchesTab(r, q.Tab, c, now) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesTab(r model.AttestationRecord, tab Tab, c model.Campaign, now time.Time) bool {
	switch tab {
	case "", TabAll:
		return true
	case TabOverdue:
		return IsOverdue(r, c, now)
	case TabPending:
		return r.Status == model.StatusPending
	case TabInProgress:
		return r.Status == model.StatusInProgress
	case TabCompleted:
		return r.Status == model.StatusCompleted
	case TabUnregistered:
		return r.Status == model.StatusUnregistered
	}
	return false
}

// manager name and email are deliberately not searched
func matchesSearch(r model.AttestationRecord, needle string) bool {
	return strings.Contains(strings.ToLower(r.UserName), needle) ||
		strings.Contains(strings.ToLower(r.UserEmail), needle)
}

// Counts are the tab badge totals.
type Counts struct {
	Total        int `json:"total"`
	Overdue      int `json:"overdue"`
	Pending      int `json:"pending"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	Unregistered int `json:"unregistered"`
}

// CountRecords computes badge counts over the role-scoped set, before any
// tab, search or company narrowing.
func CountRecords(scoped []model.AttestationRecord, c model.Campaign, now time.Time) Counts {
	counts := Counts{Total: len(scoped)}
	for _, r := range scoped {
		if IsOverdue(r, c, now) {
			counts.Overdue++
		}
		switch r.Status {
		case model.StatusPending:
			counts.Pending++
		case model.StatusInProgress:
			counts.InProgress++
		case model.StatusCompleted:
			counts.Completed++
		case model.StatusUnregistered:
			counts.Unregistered++
		}
	}
	return counts
}

// Companies lists the distinct companies present in records, sorted.
func Companies(records []model.AttestationRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		for _, c := range r.Companies {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
