package dashboard

import (
	"sort"

	"github.com/unclebandit/attestation-tracker/internal/model"
)

// Selection is the set of record keys chosen for a bulk action. The zero
// value is not usable; call NewSelection.
type Selection struct {
	keys map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{keys: map[string]struct{}{}}
}

// Eligible reports whether r may be selected at all.
func Eligible(r model.AttestationRecord) bool {
	return !r.IsCompleted()
}

// Toggle adds or removes r. Completed records are ignored.
func (s *Selection) Toggle(r model.AttestationRecord) {
	if !Eligible(r) {
		return
	}
	k := r.Key()
	if _, ok := s.keys[k]; ok {
		delete(s.keys, k)
		return
	}
	s.keys[k] = struct{}{}
}

// SelectAllVisible selects every eligible record in visible. When all of
// them are already selected it deselects them instead.
func (s *Selection) SelectAllVisible(visible []model.AttestationRecord) {
	var eligible []string
	allSelected := true
	for _, r := range visible {
		if !Eligible(r) {
			continue
		}
		k := r.Key()
		eligible = append(eligible, k)
		if _, ok := s.keys[k]; !ok {
			allSelected = false
		}
	}
	if len(eligible) == 0 {
		return
	}
	for _, k := range eligible {
		if allSelected {
			delete(s.keys, k)
		} else {
			s.keys[k] = struct{}{}
		}
	}
}

func (s *Selection) Clear() {
	s.keys = map[string]struct{}{}
}

func (s *Selection) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *Selection) Len() int {
	return len(s.keys)
}

// Keys returns the selected keys in sorted order.
func (s *Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Partitioned splits a selection into the id sets each action needs.
type Partitioned struct {
	RegisteredIDs []int64 `json:"registered_ids"`
	InviteIDs     []int64 `json:"invite_ids"`
}

// Partition walks visible and buckets every selected record. Selected keys
// whose record is not in visible are dropped.
func (s *Selection) Partition(visible []model.AttestationRecord) Partitioned {
	p := Partitioned{RegisteredIDs: []int64{}, InviteIDs: []int64{}}
	for _, r := range visible {
		if !Eligible(r) || !s.Has(r.Key()) {
			continue
		}
		if r.IsPendingInvite {
			if r.InviteID != nil {
				p.InviteIDs = append(p.InviteIDs, *r.InviteID)
			}
			continue
		}
		p.RegisteredIDs = append(p.RegisteredIDs, r.ID)
	}
	return p
}
