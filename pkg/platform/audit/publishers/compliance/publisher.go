// Package compliance writes regulatory audit events synchronously. The
// caller blocks until the store accepts the event and receives the store's
// error otherwise.
//
// Use for: risk_assessed, compliance_screened, compliance_violation
package compliance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	audit "riskgate/pkg/platform/audit"
)

var ErrMissingAction = errors.New("compliance event requires Action")

type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit persists the event before returning.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return ErrMissingAction
	}
	start := time.Now()
	event = audit.Stamp(ctx, event)

	if err := p.store.AppendAuditEvent(ctx, event); err != nil {
		p.metrics.incPersistFailures()
		p.logger.ErrorContext(ctx, "compliance audit write failed",
			"action", event.Action,
			"user_id", event.UserID,
			"event_id", event.ID,
			"error", err,
		)
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}
	p.metrics.observePersist(time.Since(start))
	return nil
}
