// Package security buffers security audit events (MFA enforcement, bypass
// use, detected threats) in a ring and flushes them in the background.
// Emit never blocks; under sustained overload the oldest events go first.
package security

import (
	"context"
	"io"
	"log/slog"
	"time"

	audit "riskgate/pkg/platform/audit"
)

const (
	defaultFlushInterval = 500 * time.Millisecond
	defaultBatchSize     = 100
)

type Publisher struct {
	store         audit.Store
	buffer        *RingBuffer
	flushInterval time.Duration
	batchSize     int
	logger        *slog.Logger
}

type Option func(*Publisher)

func WithCapacity(n int) Option {
	return func(p *Publisher) { p.buffer = NewRingBuffer(n) }
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:         store,
		buffer:        NewRingBuffer(0),
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = audit.Stamp(ctx, event)
	if p.buffer.Enqueue(event) {
		p.logger.WarnContext(ctx, "security audit buffer full, dropped oldest event",
			"dropped_total", p.buffer.Dropped(),
		)
	}
	return nil
}

// Pending is the number of buffered events not yet flushed.
func (p *Publisher) Pending() int {
	return p.buffer.Len()
}

// Run flushes on every tick until ctx is cancelled, then flushes what is
// left.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			p.Flush(ctx)
		}
	}
}

// Flush writes every buffered event. Events the store rejects are logged
// and not retried.
func (p *Publisher) Flush(ctx context.Context) {
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			if err := p.store.AppendAuditEvent(ctx, event); err != nil {
				p.logger.ErrorContext(ctx, "failed to persist security audit event",
					"action", event.Action,
					"event_id", event.ID,
					"error", err,
				)
			}
		}
	}
}
