package audit

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"riskgate/pkg/requestcontext"
)

const defaultBufferSize = 1024

// Publisher stamps events and hands them to a background worker through a
// bounded channel. When the channel is full it writes through to the store
// so events are never dropped.
type Publisher struct {
	store  Store
	inbox  chan Event
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.inbox = make(chan Event, n)
		}
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		inbox:  make(chan Event, defaultBufferSize),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inbox is the channel the worker drains.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Stamp fills ID, timestamp, category and request id where unset.
func Stamp(ctx context.Context, event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return event
}

// Emit stamps the event, then enqueues.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	event = Stamp(ctx, event)
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit buffer full, writing through",
			"action", event.Action,
			"user_id", event.UserID,
		)
		return p.store.AppendAuditEvent(ctx, event)
	}
}
