package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"transparency/internal/esic/models"
	"transparency/pkg/domain"
	"transparency/pkg/platform/sentinel"
	"transparency/pkg/platform/tx"
)

// PostgresStore persists requests in PostgreSQL. Writes join the ambient
// transaction when one is on the context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

const columns = `id, tenant_id, protocol, requester_name, requester_email, requester_phone,
	requester_document, subject, description, category, status, requested_at, due_date,
	response_text, responded_at, has_appeal, appeal_description, appealed_at, appeal_due_date,
	appeal_response, appeal_responded_at, assigned_user_id, assigned_department, is_public, updated_at`

const orderBy = ` ORDER BY requested_at DESC, protocol ASC`

func (s *PostgresStore) Create(ctx context.Context, req *models.InformationRequest) error {
	query := `INSERT INTO esic_requests (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, writeArgs(req)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert esic request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID domain.TenantID, id domain.RequestID) (*models.InformationRequest, error) {
	query := `SELECT ` + columns + ` FROM esic_requests WHERE id = $1 AND tenant_id = $2`
	req, err := scanRequest(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(id), int64(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find esic request by id: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) FindByProtocol(ctx context.Context, tenantID domain.TenantID, protocol string) (*models.InformationRequest, error) {
	query := `SELECT ` + columns + ` FROM esic_requests WHERE protocol = $1 AND tenant_id = $2`
	req, err := scanRequest(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, protocol, int64(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find esic request by protocol: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID domain.TenantID, filter models.ListFilter) ([]*models.InformationRequest, error) {
	filter = filter.Normalize()
	args := []any{int64(tenantID)}
	where := `tenant_id = $1`
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT `+columns+` FROM esic_requests WHERE %s`+orderBy+` LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))
	return s.query(ctx, "list esic requests", query, args...)
}

func (s *PostgresStore) AllByTenant(ctx context.Context, tenantID domain.TenantID) ([]*models.InformationRequest, error) {
	query := `SELECT ` + columns + ` FROM esic_requests WHERE tenant_id = $1` + orderBy
	return s.query(ctx, "list all esic requests", query, int64(tenantID))
}

func (s *PostgresStore) ListAwaitingDueBefore(ctx context.Context, tenantID domain.TenantID, date civil.Date) ([]*models.InformationRequest, error) {
	query := `SELECT ` + columns + ` FROM esic_requests
		WHERE tenant_id = $1 AND status IN ($2, $3) AND due_date < $4::date` + orderBy
	return s.query(ctx, "list overdue esic requests", query,
		int64(tenantID), string(models.StatusPending), string(models.StatusInProgress), date.String())
}

func (s *PostgresStore) SearchPublic(ctx context.Context, tenantID domain.TenantID, filter models.SearchFilter) ([]*models.InformationRequest, int, error) {
	filter = filter.Normalize()
	pattern := "%" + escapeLike(strings.TrimSpace(filter.Query)) + "%"
	where := ` WHERE tenant_id = $1 AND is_public
		AND (protocol ILIKE $2 OR subject ILIKE $2 OR description ILIKE $2)`

	var total int
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM esic_requests`+where, int64(tenantID), pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count public esic requests: %w", err)
	}
	query := `SELECT ` + columns + ` FROM esic_requests` + where + orderBy + ` LIMIT $3 OFFSET $4`
	items, err := s.query(ctx, "search public esic requests", query, int64(tenantID), pattern, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateIfStatus writes every mutable column except is_public in one statement
// guarded by the status the caller read. A lost race surfaces as
// sentinel.ErrInvalidState.
func (s *PostgresStore) UpdateIfStatus(ctx context.Context, req *models.InformationRequest, expected models.Status) error {
	query := `UPDATE esic_requests SET
			status = $4, response_text = $5, responded_at = $6, has_appeal = $7,
			appeal_description = $8, appealed_at = $9, appeal_due_date = $10::date,
			appeal_response = $11, appeal_responded_at = $12, assigned_user_id = $13,
			assigned_department = $14, updated_at = $15
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(req.ID),
		int64(req.TenantID),
		string(expected),
		string(req.Status),
		nullString(req.ResponseText),
		nullTime(req.RespondedAt),
		req.HasAppeal,
		nullString(req.AppealDescription),
		nullTime(req.AppealedAt),
		nullDate(req.AppealDueDate),
		nullString(req.AppealResponse),
		nullTime(req.AppealRespondedAt),
		nullUser(req.AssignedUserID),
		req.AssignedDepartment,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update esic request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update esic request rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM esic_requests WHERE id = $1 AND tenant_id = $2)`,
		uuid.UUID(req.ID), int64(req.TenantID)).Scan(&exists); err != nil {
		return fmt.Errorf("check esic request existence: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

// SetPublic updates only is_public and updated_at, so it cannot race with the
// status-guarded writes of UpdateIfStatus.
func (s *PostgresStore) SetPublic(ctx context.Context, tenantID domain.TenantID, id domain.RequestID, public bool, at time.Time) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE esic_requests SET is_public = $3, updated_at = $4 WHERE id = $1 AND tenant_id = $2`,
		uuid.UUID(id), int64(tenantID), public, at)
	if err != nil {
		return fmt.Errorf("set esic request visibility: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set esic request visibility rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.InformationRequest, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]*models.InformationRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*models.InformationRequest, error) {
	var (
		req               models.InformationRequest
		id                uuid.UUID
		tenantID          int64
		category, status  string
		dueDate           time.Time
		responseText      sql.NullString
		respondedAt       sql.NullTime
		appealDescription sql.NullString
		appealedAt        sql.NullTime
		appealDueDate     sql.NullTime
		appealResponse    sql.NullString
		appealRespondedAt sql.NullTime
		assignedUserID    sql.NullInt64
	)
	err := row.Scan(
		&id, &tenantID, &req.Protocol,
		&req.Requester.Name, &req.Requester.Email, &req.Requester.Phone, &req.Requester.Document,
		&req.Subject, &req.Description, &category, &status, &req.RequestedAt, &dueDate,
		&responseText, &respondedAt, &req.HasAppeal, &appealDescription, &appealedAt, &appealDueDate,
		&appealResponse, &appealRespondedAt, &assignedUserID, &req.AssignedDepartment, &req.IsPublic, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.ID = domain.RequestID(id)
	req.TenantID = domain.TenantID(tenantID)
	req.Category = models.Category(category)
	req.Status = models.Status(status)
	req.RequestedAt = req.RequestedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	req.DueDate = civil.DateOf(dueDate)
	req.ResponseText = responseText.String
	req.RespondedAt = timePtr(respondedAt)
	req.AppealDescription = appealDescription.String
	req.AppealedAt = timePtr(appealedAt)
	if appealDueDate.Valid {
		d := civil.DateOf(appealDueDate.Time)
		req.AppealDueDate = &d
	}
	req.AppealResponse = appealResponse.String
	req.AppealRespondedAt = timePtr(appealRespondedAt)
	if assignedUserID.Valid {
		u := domain.UserID(assignedUserID.Int64)
		req.AssignedUserID = &u
	}
	return &req, nil
}

func writeArgs(req *models.InformationRequest) []any {
	return []any{
		uuid.UUID(req.ID),
		int64(req.TenantID),
		req.Protocol,
		req.Requester.Name,
		req.Requester.Email,
		req.Requester.Phone,
		req.Requester.Document,
		req.Subject,
		req.Description,
		string(req.Category),
		string(req.Status),
		req.RequestedAt,
		req.DueDate.String(),
		nullString(req.ResponseText),
		nullTime(req.RespondedAt),
		req.HasAppeal,
		nullString(req.AppealDescription),
		nullTime(req.AppealedAt),
		nullDate(req.AppealDueDate),
		nullString(req.AppealResponse),
		nullTime(req.AppealRespondedAt),
		nullUser(req.AssignedUserID),
		req.AssignedDepartment,
		req.IsPublic,
		req.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullDate(d *civil.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullUser(u *domain.UserID) sql.NullInt64 {
	if u == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*u), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
