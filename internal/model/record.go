// internal/model/record.go
package model

import (
	"strconv"
	"time"
)

type RecordStatus string

const (
	StatusPending      RecordStatus = "pending"
	StatusInProgress   RecordStatus = "in_progress"
	StatusCompleted    RecordStatus = "completed"
	StatusUnregistered RecordStatus = "unregistered"
)

// DisplayName returns the human label shown in tables and badges.
func (s RecordStatus) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusUnregistered:
		return "Unregistered"
	}
	return string(s)
}

// AttestationRecord is one participant's progress within a campaign.
// Pending invites carry InviteID and no ID.
type AttestationRecord struct {
	ID               int64        `json:"id,omitempty"`
	UserName         string       `json:"user_name"`
	UserEmail        string       `json:"user_email"`
	ManagerName      string       `json:"manager_name,omitempty"`
	ManagerEmail     string       `json:"manager_email,omitempty"`
	Companies        []string     `json:"companies"`
	Status           RecordStatus `json:"status"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
	InviteSentAt     *time.Time   `json:"invite_sent_at,omitempty"`
	ReminderSentAt   *time.Time   `json:"reminder_sent_at,omitempty"`
	EscalationSentAt *time.Time   `json:"escalation_sent_at,omitempty"`
	IsPendingInvite  bool         `json:"is_pending_invite"`
	InviteID         *int64       `json:"invite_id,omitempty"`
}

// Key identifies the record for selection. Registered records and pending
// invites live in separate namespaces so an invite key never survives the
// participant registering.
func (r AttestationRecord) Key() string {
	if r.IsPendingInvite && r.InviteID != nil {
		return "invite:" + strconv.FormatInt(*r.InviteID, 10)
	}
	return "record:" + strconv.FormatInt(r.ID, 10)
}

func (r AttestationRecord) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// InCompany reports whether the participant is associated with company.
func (r AttestationRecord) InCompany(company string) bool {
	for _, c := range r.Companies {
		if c == company {
			return true
		}
	}
	return false
}
