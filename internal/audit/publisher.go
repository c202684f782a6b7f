package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"transparency/pkg/requestcontext"
)

// Store appends events durably. The Postgres outbox is the production store.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
	now   func() time.Time
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store, now: time.Now}
}

// Emit stamps an id and timestamp when missing, copies request metadata from
// ctx, and appends the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Client == "" {
		event.Client = requestcontext.Client(ctx)
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	return p.store.Append(ctx, event)
}
