package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"transparency/internal/audit"
	"transparency/pkg/platform/tx"
)

// Postgres stores entries in audit_outbox. Append joins the transaction on
// the context so an event commits or rolls back with its mutation.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Append(ctx context.Context, event audit.Event) error {
	entry, err := entryFromEvent(event)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO audit_outbox (id, event_type, aggregate_id, tenant_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = tx.Exec(ctx, p.db).ExecContext(ctx, query,
		entry.ID, entry.EventType, entry.AggregateID, entry.TenantID, entry.Payload, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (p *Postgres) FetchPending(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, event_type, aggregate_id, tenant_id, payload, created_at
		FROM audit_outbox
		WHERE processed_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EventType, &e.AggregateID, &e.TenantID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox entries: %w", err)
	}
	return entries, nil
}

func (p *Postgres) MarkProcessed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE audit_outbox SET processed_at = $1 WHERE id = ANY($2::uuid[])`,
		at, pq.Array(raw))
	if err != nil {
		return fmt.Errorf("mark outbox entries processed: %w", err)
	}
	return nil
}
