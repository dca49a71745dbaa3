// Package ops publishes routine operational audit events. They are sampled
// and then handed to an asynchronous emitter; failures are counted, never
// returned.
package ops

import (
	"context"
	"io"
	"log/slog"

	audit "riskgate/pkg/platform/audit"
)

type Publisher struct {
	next    audit.Emitter
	sampler *Sampler
	metrics *Metrics
	logger  *slog.Logger
}

type Option func(*Publisher)

func WithSampler(s *Sampler) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sampler = s
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(next audit.Emitter, opts ...Option) *Publisher {
	p := &Publisher{
		next:    next,
		sampler: NewSampler(1),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if !p.sampler.ShouldSample(event.Action) {
		p.metrics.incSampled()
		return nil
	}
	if err := p.next.Emit(ctx, event); err != nil {
		p.metrics.incPersistFailures()
		p.logger.WarnContext(ctx, "ops audit event lost",
			"action", event.Action,
			"error", err,
		)
		return nil
	}
	p.metrics.incTracked()
	return nil
}
