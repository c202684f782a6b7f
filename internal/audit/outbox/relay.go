package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Source yields pending entries and records which were published.
type Source interface {
	FetchPending(ctx context.Context, limit int) ([]Entry, error)
	MarkProcessed(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer delivers a batch of entries to the broker.
type Producer interface {
	Publish(ctx context.Context, entries []Entry) error
}

// Relay polls a Source and forwards pending entries to a Producer. Delivery
// is at-least-once: entries are marked only after the producer acknowledged
// them, so a crash in between republishes the batch.
type Relay struct {
	source    Source
	producer  Producer
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

type RelayOption func(*Relay)

func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) RelayOption {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

func NewRelay(source Source, producer Producer, opts ...RelayOption) *Relay {
	r := &Relay{
		source:    source,
		producer:  producer,
		interval:  2 * time.Second,
		batchSize: 100,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled. Failed batches are logged and retried on
// the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
					}
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayOnce publishes at most one batch and returns how many entries it sent.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.source.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := r.producer.Publish(ctx, entries); err != nil {
		return 0, fmt.Errorf("publish %d entries: %w", len(entries), err)
	}
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := r.source.MarkProcessed(ctx, ids, r.now()); err != nil {
		return 0, fmt.Errorf("mark processed: %w", err)
	}
	r.logger.DebugContext(ctx, "outbox batch relayed", "count", len(entries))
	return len(entries), nil
}

// LogProducer writes entries to a logger instead of a broker. It keeps the
// relay draining the outbox when no Kafka brokers are configured.
type LogProducer struct {
	logger *slog.Logger
}

func NewLogProducer(logger *slog.Logger) *LogProducer {
	return &LogProducer{logger: logger}
}

func (p *LogProducer) Publish(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		p.logger.InfoContext(ctx, "audit event",
			"log_type", "audit",
			"event", e.EventType,
			"aggregate_id", e.AggregateID,
			"tenant_id", e.TenantID,
			"outbox_id", e.ID,
		)
	}
	return nil
}
