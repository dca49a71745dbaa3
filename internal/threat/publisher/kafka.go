// Package publisher forwards threat alerts to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"riskgate/internal/threat/models"
)

// Producer is satisfied by the platform kafka producer.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaAlertPublisher keys alerts by user, or by address when the event
// had no user, so one subject's alerts stay ordered on one partition.
type KafkaAlertPublisher struct {
	producer Producer
}

func NewKafkaAlertPublisher(producer Producer) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, alert models.Alert) error {
	value, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encode alert %s: %w", alert.ID, err)
	}
	key := alert.UserID
	if key == "" {
		key = alert.IPAddress
	}
	if err := p.producer.Publish(ctx, []byte(key), value); err != nil {
		return fmt.Errorf("publish alert %s: %w", alert.ID, err)
	}
	return nil
}
