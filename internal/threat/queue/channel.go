package queue

import (
	"context"

	"riskgate/internal/threat/models"
)

// ChannelQueue buffers events in process. Events still buffered when the
// process dies are lost.
type ChannelQueue struct {
	events chan models.SecurityEvent
	cfg    settings
}

func NewChannelQueue(opts ...Option) *ChannelQueue {
	cfg := newSettings(opts)
	return &ChannelQueue{events: make(chan models.SecurityEvent, cfg.capacity), cfg: cfg}
}

// Enqueue never blocks.
func (q *ChannelQueue) Enqueue(_ context.Context, event models.SecurityEvent) error {
	select {
	case q.events <- event:
		return nil
	default:
		return ErrFull
	}
}

func (q *ChannelQueue) Run(ctx context.Context, handle Handler) error {
	batchLoop(ctx, q.events, q.cfg.batchSize, q.cfg.flushInterval, handle)
	return nil
}

func (q *ChannelQueue) Depth() int {
	return len(q.events)
}
