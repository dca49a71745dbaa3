package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/nats-io/nats.go"

	"riskgate/internal/threat/models"
)

// consumerGroup lets several instances share one subject.
const consumerGroup = "riskgate-threat"

// NATSQueue publishes events to a subject and consumes them as a queue
// group, so any instance may process an event another instance accepted.
type NATSQueue struct {
	conn    *nats.Conn
	subject string
	cfg     settings
	local   chan models.SecurityEvent
	logger  *slog.Logger
}

func NewNATSQueue(conn *nats.Conn, subject string, logger *slog.Logger, opts ...Option) *NATSQueue {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := newSettings(opts)
	return &NATSQueue{
		conn:    conn,
		subject: subject,
		cfg:     cfg,
		local:   make(chan models.SecurityEvent, cfg.capacity),
		logger:  logger,
	}
}

func (q *NATSQueue) Enqueue(_ context.Context, event models.SecurityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := q.conn.Publish(q.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", q.subject, err)
	}
	return nil
}

func (q *NATSQueue) Run(ctx context.Context, handle Handler) error {
	sub, err := q.conn.QueueSubscribe(q.subject, consumerGroup, func(m *nats.Msg) {
		var ev models.SecurityEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			q.logger.Warn("dropping undecodable security event",
				"subject", m.Subject,
				"error", err,
			)
			return
		}
		select {
		case q.local <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", q.subject, err)
	}

	batchLoop(ctx, q.local, q.cfg.batchSize, q.cfg.flushInterval, handle)

	// core NATS delivers at most once; messages arriving from here on are
	// left to other members of the group
	if err := sub.Unsubscribe(); err != nil {
		q.logger.Warn("NATS unsubscribe failed", "subject", q.subject, "error", err)
	}
	return nil
}

// Depth counts events received but not yet handed to a batch.
func (q *NATSQueue) Depth() int {
	return len(q.local)
}
