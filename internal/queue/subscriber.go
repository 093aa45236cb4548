package queue

import (
	"encoding/json"
	"fmt"

	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/repository"
)

// DecodeActionEvent accepts an in-process model.ActionEvent or the JSON
// body delivered by RabbitMQ.
func DecodeActionEvent(payload any) (model.ActionEvent, error) {
	switch p := payload.(type) {
	case model.ActionEvent:
		return p, nil
	case *model.ActionEvent:
		if p == nil {
			return model.ActionEvent{}, fmt.Errorf("nil action event")
		}
		return *p, nil
	case []byte:
		var e model.ActionEvent
		if err := json.Unmarshal(p, &e); err != nil {
			return model.ActionEvent{}, fmt.Errorf("decode action event: %w", err)
		}
		return e, nil
	}
	return model.ActionEvent{}, fmt.Errorf("unexpected payload type %T", payload)
}

// StartActionLogSubscriber persists every action event published on topic.
func StartActionLogSubscriber(q Queue, topic string, repo repository.ActionLogRepositoryInterface) error {
	return q.Subscribe(topic, func(payload any) error {
		event, err := DecodeActionEvent(payload)
		if err != nil {
			logger.WithField("topic", topic).WithError(err).Warn("Dropping invalid action event")
			return nil // no retry
		}

		if err := repo.Save(&event); err != nil {
			return err // retry
		}

		logger.WithFields(map[string]interface{}{
			"event_id":    event.ID,
			"campaign_id": event.CampaignID,
			"kind":        event.Kind,
		}).Debug("Action event stored")
		return nil
	})
}
