// Package queue buffers security events that do not need inline analysis
// and hands them to a processor in batches.
package queue

import (
	"context"
	"errors"
	"time"

	"riskgate/internal/threat/models"
)

const (
	DefaultBatchSize     = 50
	DefaultFlushInterval = 2 * time.Second
	defaultCapacity      = 4096
)

// ErrFull is returned by Enqueue when the buffer cannot take more events.
var ErrFull = errors.New("threat queue full")

// Handler processes one batch. It is never called with an empty batch.
type Handler func(ctx context.Context, batch []models.SecurityEvent)

// Queue is implemented by ChannelQueue and NATSQueue.
type Queue interface {
	Enqueue(ctx context.Context, event models.SecurityEvent) error
	// Run delivers batches until ctx is cancelled, then flushes what it
	// still holds and returns.
	Run(ctx context.Context, handle Handler) error
	Depth() int
}

type settings struct {
	capacity      int
	batchSize     int
	flushInterval time.Duration
}

type Option func(*settings)

func WithCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func WithBatchSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.flushInterval = d
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		capacity:      defaultCapacity,
		batchSize:     DefaultBatchSize,
		flushInterval: DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// batchLoop groups events from in into batches of at most size, flushing a
// partial batch every interval. On cancellation it drains what is already
// buffered and flushes with a context that is no longer cancelled.
func batchLoop(ctx context.Context, in <-chan models.SecurityEvent, size int, interval time.Duration, handle Handler) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	batch := make([]models.SecurityEvent, 0, size)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		handle(ctx, batch)
		batch = make([]models.SecurityEvent, 0, size)
	}

	for {
		select {
		case <-ctx.Done():
			final := context.WithoutCancel(ctx)
			for {
				select {
				case ev := <-in:
					batch = append(batch, ev)
					if len(batch) == size {
						flush(final)
					}
				default:
					flush(final)
					return
				}
			}
		case ev := <-in:
			batch = append(batch, ev)
			if len(batch) == size {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}
