package repository

import (
	"database/sql"
	"time"

	"github.com/unclebandit/attestation-tracker/internal/model"
)

type ActionLogRepositoryInterface interface {
	Save(e *model.ActionEvent) error
	ListByCampaign(campaignID int64, limit int) ([]model.ActionEvent, error)
}

// ActionLogRepository stores dispatched notification actions in postgres.
type ActionLogRepository struct {
	DB *sql.DB
}

// Save is idempotent on the event id so redelivered events are harmless.
func (r *ActionLogRepository) Save(e *model.ActionEvent) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	query := `
        INSERT INTO attestation_action_log (id, campaign_id, kind, actor, requested, sent, failed, error, at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO NOTHING
    `
	_, err := r.DB.Exec(query, e.ID, e.CampaignID, string(e.Kind), e.Actor, e.Requested, e.Sent, e.Failed, e.Error, e.At)
	return err
}

// ListByCampaign returns the most recent actions first.
func (r *ActionLogRepository) ListByCampaign(campaignID int64, limit int) ([]model.ActionEvent, error) {
	if limit < 1 {
		limit = 50
	}
	query := `
        SELECT id, campaign_id, kind, actor, requested, sent, failed, error, at
        FROM attestation_action_log
        WHERE campaign_id = $1
        ORDER BY at DESC
        LIMIT $2
    `
	rows, err := r.DB.Query(query, campaignID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.ActionEvent{}
	for rows.Next() {
		var e model.ActionEvent
		var kind string
		if err := rows.Scan(&e.ID, &e.CampaignID, &kind, &e.Actor, &e.Requested, &e.Sent, &e.Failed, &e.Error, &e.At); err != nil {
			return nil, err
		}
		e.Kind = model.ActionKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ ActionLogRepositoryInterface = (*ActionLogRepository)(nil)
