package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"transparency/internal/finance/models"
	"transparency/pkg/domain"
	"transparency/pkg/platform/sentinel"
	"transparency/pkg/platform/tx"
)

// PostgresStore persists records in financial_records. Amounts travel as
// NUMERIC through decimal.Decimal's Scanner and Valuer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

const columns = `id, tenant_id, kind, category, description, amount, year, month, created_at`

const orderBy = ` ORDER BY year DESC, month DESC, created_at DESC, id ASC`

func (s *PostgresStore) Create(ctx context.Context, r *models.Record) error {
	query := `INSERT INTO financial_records (` + columns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID), int64(r.TenantID), string(r.Kind), r.Category, r.Description,
		r.Amount, r.Year, r.Month, r.CreatedAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert financial record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID domain.TenantID, id domain.RecordID) (*models.Record, error) {
	query := `SELECT ` + columns + ` FROM financial_records WHERE id = $1 AND tenant_id = $2`
	r, err := scanRecord(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(id), int64(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find financial record: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, tenantID domain.TenantID, filter models.ListFilter) ([]*models.Record, error) {
	filter = filter.Normalize()
	where, args := whereClause(tenantID, filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT `+columns+` FROM financial_records WHERE %s`+orderBy+` LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))
	return s.query(ctx, "list financial records", query, args...)
}

func (s *PostgresStore) AllByTenant(ctx context.Context, tenantID domain.TenantID, year *int) ([]*models.Record, error) {
	where, args := whereClause(tenantID, models.ListFilter{Year: year})
	query := `SELECT ` + columns + ` FROM financial_records WHERE ` + where + orderBy
	return s.query(ctx, "list all financial records", query, args...)
}

func whereClause(tenantID domain.TenantID, filter models.ListFilter) (string, []any) {
	args := []any{int64(tenantID)}
	where := `tenant_id = $1`
	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		where += fmt.Sprintf(` AND kind = $%d`, len(args))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where += fmt.Sprintf(` AND year = $%d`, len(args))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		where += fmt.Sprintf(` AND month = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	return where, args
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Record, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*models.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	var (
		id       uuid.UUID
		tenantID int64
		kind     string
		amount   decimal.Decimal
		r        models.Record
	)
	if err := row.Scan(&id, &tenantID, &kind, &r.Category, &r.Description, &amount, &r.Year, &r.Month, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.ID = domain.RecordID(id)
	r.TenantID = domain.TenantID(tenantID)
	r.Kind = models.Kind(kind)
	r.Amount = amount
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
