// internal/service/actions.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/attestation-tracker/internal/errors"
	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/queue"
)

// ErrActionInFlight is returned when a single-item action is requested for
// an item that already has one running.
var ErrActionInFlight = errors.New("action already in progress for this item")

// ActionResult summarises one dispatched action.
type ActionResult struct {
	Kind       model.ActionKind `json:"kind"`
	Requested  int              `json:"requested"`
	Sent       int              `json:"sent"`
	Failed     int              `json:"failed"`
	Message    string           `json:"message"`
	Dispatched bool             `json:"dispatched"`
}

// BulkRemind sends reminders to every selected registered record in the
// current view. The API's sent/failed tally is reported as-is.
func (s *DashboardService) BulkRemind(ctx context.Context) (*ActionResult, error) {
	p, err := s.Partition()
	if err != nil {
		return nil, err
	}
	result := &ActionResult{Kind: model.ActionBulkRemind, Requested: len(p.RegisteredIDs)}
	if len(p.RegisteredIDs) == 0 {
		result.Message = "No registered participants selected"
		return result, nil
	}

	res, err := s.Gateway.BulkRemind(ctx, s.campaignID, p.RegisteredIDs)
	switch {
	case errors.Is(err, appErrors.ErrBatchUnsupported):
		result.Sent, result.Failed = s.dispatchEach(ctx, p.RegisteredIDs, s.Gateway.RemindRecord)
	case err != nil:
		return s.bulkFailed(result, err)
	default:
		result.Sent, result.Failed = res.Sent, res.Failed
	}

	result.Dispatched = true
	result.Message = fmt.Sprintf("Sent %d reminders, %d failed", result.Sent, result.Failed)
	s.finishAction(ctx, result)
	return result, nil
}

// BulkResendInvites resends registration invites to every selected pending
// invite in the current view.
func (s *DashboardService) BulkResendInvites(ctx context.Context) (*ActionResult, error) {
	p, err := s.Partition()
	if err != nil {
		return nil, err
	}
	result := &ActionResult{Kind: model.ActionBulkResendInvites, Requested: len(p.InviteIDs)}
	if len(p.InviteIDs) == 0 {
		result.Message = "No unregistered participants selected"
		return result, nil
	}

	res, err := s.Gateway.BulkResendInvites(ctx, s.campaignID, p.InviteIDs)
	switch {
	case errors.Is(err, appErrors.ErrBatchUnsupported):
		result.Sent, result.Failed = s.dispatchEach(ctx, p.InviteIDs, s.Gateway.ResendInvite)
	case err != nil:
		return s.bulkFailed(result, err)
	default:
		result.Sent = res.EmailsSent
		if res.EmailsSent < result.Requested {
			result.Failed = result.Requested - res.EmailsSent
		}
	}

	result.Dispatched = true
	result.Message = fmt.Sprintf("Resent %d invites", result.Sent)
	if result.Failed > 0 {
		result.Message += fmt.Sprintf(", %d failed", result.Failed)
	}
	s.finishAction(ctx, result)
	return result, nil
}

// RemindOne sends a reminder to a single registered record.
func (s *DashboardService) RemindOne(ctx context.Context, recordID int64) (*ActionResult, error) {
	key := "record:" + strconv.FormatInt(recordID, 10)
	return s.single(ctx, model.ActionRemind, key, func(ctx context.Context) error {
		return s.Gateway.RemindRecord(ctx, recordID)
	}, "Reminder sent")
}

// ResendInviteOne resends a single registration invite.
func (s *DashboardService) ResendInviteOne(ctx context.Context, inviteID int64) (*ActionResult, error) {
	key := "invite:" + strconv.FormatInt(inviteID, 10)
	return s.single(ctx, model.ActionResendInvite, key, func(ctx context.Context) error {
		return s.Gateway.ResendInvite(ctx, inviteID)
	}, "Invite resent")
}

// Busy reports whether a single-item action is running for key.
func (s *DashboardService) Busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[key]
}

func (s *DashboardService) single(ctx context.Context, kind model.ActionKind, key string, call func(context.Context) error, okMsg string) (*ActionResult, error) {
	s.mu.Lock()
	if s.busy[key] {
		s.mu.Unlock()
		return nil, ErrActionInFlight
	}
	s.busy[key] = true
	s.mu.Unlock()

	err := call(ctx)

	s.mu.Lock()
	delete(s.busy, key)
	s.mu.Unlock()

	result := &ActionResult{Kind: kind, Requested: 1, Dispatched: true}
	if err != nil {
		result.Failed = 1
		result.Message = fmt.Sprintf("%s failed: %v", kind, err)
		s.setNotice(NoticeAction, "error", result.Message)
		s.publish(result, err.Error())
		logger.WithFields(map[string]interface{}{
			"campaign_id": s.campaignID,
			"kind":        kind,
			"key":         key,
		}).WithError(err).Warn("Single action failed")
		return result, err
	}

	result.Sent = 1
	result.Message = okMsg
	s.finishAction(ctx, result)
	return result, nil
}

// dispatchEach calls fn for every id and tallies outcomes. One failure never
// stops the remaining calls.
func (s *DashboardService) dispatchEach(ctx context.Context, ids []int64, fn func(context.Context, int64) error) (sent, failed int) {
	for _, id := range ids {
		if err := fn(ctx, id); err != nil {
			logger.WithFields(map[string]interface{}{
				"campaign_id": s.campaignID,
				"id":          id,
			}).WithError(err).Warn("Item dispatch failed")
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// bulkFailed handles a batch call that failed as a whole. Nothing was sent,
// so the selection is kept for a retry and no reload happens.
func (s *DashboardService) bulkFailed(result *ActionResult, err error) (*ActionResult, error) {
	result.Dispatched = true
	result.Failed = result.Requested
	result.Message = fmt.Sprintf("%s failed: %v", result.Kind, err)
	s.setNotice(NoticeAction, "error", result.Message)
	s.publish(result, err.Error())
	logger.WithFields(map[string]interface{}{
		"campaign_id": s.campaignID,
		"kind":        result.Kind,
		"requested":   result.Requested,
	}).WithError(err).Error("Bulk action failed")
	return result, err
}

// finishAction runs after the API accepted an action: publish the outcome,
// drop the selection and reload once so server-set timestamps show up.
func (s *DashboardService) finishAction(ctx context.Context, result *ActionResult) {
	s.publish(result, "")
	logger.WithFields(map[string]interface{}{
		"campaign_id": s.campaignID,
		"kind":        result.Kind,
		"sent":        result.Sent,
		"failed":      result.Failed,
	}).Info("Action dispatched")

	s.ClearSelection()
	s.Refresh(ctx)
}

func (s *DashboardService) publish(result *ActionResult, errMsg string) {
	if s.Queue == nil {
		return
	}
	event := model.ActionEvent{
		ID:         uuid.NewString(),
		CampaignID: s.campaignID,
		Kind:       result.Kind,
		Actor:      s.caller.Email,
		Requested:  result.Requested,
		Sent:       result.Sent,
		Failed:     result.Failed,
		Error:      errMsg,
		At:         s.Now(),
	}
	if err := s.Queue.Publish(s.Topic, event); err != nil {
		entry := logger.WithField("event_id", event.ID).WithError(err)
		if errors.Is(err, queue.ErrNoSubscribers) {
			entry.Debug("Action event not published")
			return
		}
		entry.Warn("Failed to publish action event")
	}
}
