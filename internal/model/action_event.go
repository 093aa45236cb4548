// internal/model/action_event.go
package model

import "time"

type ActionKind string

const (
	ActionBulkRemind        ActionKind = "bulk_remind"
	ActionBulkResendInvites ActionKind = "bulk_resend_invites"
	ActionRemind            ActionKind = "remind"
	ActionResendInvite      ActionKind = "resend_invite"
)

// ActionEvent records the outcome of one dispatched notification action.
type ActionEvent struct {
	ID         string     `db:"id" json:"id"`
	CampaignID int64      `db:"campaign_id" json:"campaign_id"`
	Kind       ActionKind `db:"kind" json:"kind"`
	Actor      string     `db:"actor" json:"actor"`
	Requested  int        `db:"requested" json:"requested"`
	Sent       int        `db:"sent" json:"sent"`
	Failed     int        `db:"failed" json:"failed"`
	Error      string     `db:"error,omitempty" json:"error,omitempty"`
	At         time.Time  `db:"at" json:"at"`
}
