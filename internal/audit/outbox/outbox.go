// Package outbox implements the transactional outbox for audit events:
// services append events in the same transaction as their mutation and a
// relay publishes pending entries to Kafka.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"transparency/internal/audit"
)

// Entry is one pending or published outbox row.
type Entry struct {
	ID          uuid.UUID
	EventType   string
	AggregateID string
	TenantID    int64
	Payload     []byte
	CreatedAt   time.Time
}

func entryFromEvent(event audit.Event) (Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal audit payload: %w", err)
	}
	return Entry{
		ID:          event.ID,
		EventType:   string(event.Type),
		AggregateID: event.AggregateID,
		TenantID:    int64(event.TenantID),
		Payload:     payload,
		CreatedAt:   event.Timestamp,
	}, nil
}
