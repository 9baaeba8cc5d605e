package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jjenkins/servetrack/internal/model"
)

const caseColumns = `
	id, client_id, COALESCE(case_number, ''), case_name, court_name, plaintiff, defendant,
	servee_name, home_address, work_address, status, created_at, updated_at`

const caseNumberConstraint = "cases_client_case_number_key"

// CaseStore handles database operations for cases
type CaseStore struct {
	db *sql.DB
}

// NewCaseStore creates a new CaseStore
func NewCaseStore(db *sql.DB) *CaseStore {
	return &CaseStore{db: db}
}

// Create inserts a case, assigning an id when it has none. A client may hold
// each case number once.
func (s *CaseStore) Create(ctx context.Context, c *model.Case) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = model.CaseStatusOpen
	}

	query := `
		INSERT INTO cases (id, client_id, case_number, case_name, court_name, plaintiff,
		                   defendant, servee_name, home_address, work_address, status,
		                   created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11,
		        COALESCE($12, NOW()), COALESCE($13, NOW()))
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, caseArgs(c)...).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return caseWriteError(c, "create", err)
	}

	return nil
}

// Upsert inserts a case or updates the existing row with the same id
func (s *CaseStore) Upsert(ctx context.Context, c *model.Case) error {
	query := `
		INSERT INTO cases (id, client_id, case_number, case_name, court_name, plaintiff,
		                   defendant, servee_name, home_address, work_address, status,
		                   created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11,
		        COALESCE($12, NOW()), COALESCE($13, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			case_number = EXCLUDED.case_number,
			case_name = EXCLUDED.case_name,
			court_name = EXCLUDED.court_name,
			plaintiff = EXCLUDED.plaintiff,
			defendant = EXCLUDED.defendant,
			servee_name = EXCLUDED.servee_name,
			home_address = EXCLUDED.home_address,
			work_address = EXCLUDED.work_address,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, caseArgs(c)...); err != nil {
		return caseWriteError(c, "upsert", err)
	}

	return nil
}

func caseArgs(c *model.Case) []any {
	return []any{
		c.ID,
		c.ClientID,
		c.CaseNumber,
		c.CaseName,
		c.CourtName,
		c.Plaintiff,
		c.Defendant,
		c.ServeeName,
		c.HomeAddress,
		c.WorkAddress,
		c.Status,
		nullTime(c.CreatedAt),
		nullTime(c.UpdatedAt),
	}
}

func caseWriteError(c *model.Case, op string, err error) error {
	if constraint, ok := uniqueConstraint(err); ok {
		if constraint == caseNumberConstraint {
			return fmt.Errorf("case %q: %w", c.CaseNumber, ErrDuplicateCaseNumber)
		}
		return fmt.Errorf("case %s: %w", c.ID, ErrAlreadyExists)
	}
	return fmt.Errorf("failed to %s case %s: %w", op, c.ID, err)
}

// GetByID retrieves a case by id
func (s *CaseStore) GetByID(ctx context.Context, id string) (*model.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	c, err := scanCase(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case %s: %w", id, err)
	}

	return c, nil
}

// ListByClient retrieves a client's cases, newest first
func (s *CaseStore) ListByClient(ctx context.Context, clientID string) ([]model.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE client_id = $1 ORDER BY created_at DESC, id`
	return s.list(ctx, query, clientID)
}

// List retrieves all cases, open cases first and newest first within each status
func (s *CaseStore) List(ctx context.Context) ([]model.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases ORDER BY status = 'closed', created_at DESC, id`
	return s.list(ctx, query)
}

func (s *CaseStore) list(ctx context.Context, query string, args ...any) ([]model.Case, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cases: %w", err)
	}
	defer rows.Close()

	var cases []model.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, *c)
	}

	return cases, rows.Err()
}

// UpdateStatus sets a case's status
func (s *CaseStore) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of case %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update status of case %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("case %s: %w", id, ErrNotFound)
	}

	return nil
}

func scanCase(row scanner) (*model.Case, error) {
	var c model.Case
	err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.CaseNumber,
		&c.CaseName,
		&c.CourtName,
		&c.Plaintiff,
		&c.Defendant,
		&c.ServeeName,
		&c.HomeAddress,
		&c.WorkAddress,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
