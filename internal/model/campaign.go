// internal/model/campaign.go
package model

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Campaign is read-only from the dashboard's point of view; it is created
// and configured by the campaign management API.
type Campaign struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Status         CampaignStatus `json:"status"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	EscalationDays int            `json:"escalation_days"`
}

// Dashboard is the payload returned by the campaign dashboard endpoint.
type Dashboard struct {
	Campaign Campaign            `json:"campaign"`
	Records  []AttestationRecord `json:"records"`
}
