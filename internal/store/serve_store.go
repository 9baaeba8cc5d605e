package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jjenkins/servetrack/internal/model"
)

const serveColumns = `
	id, case_id, client_id, served_at, created_at, status, notes, description,
	service_address, physical, image_url, latitude, longitude, accuracy`

// ServeStore handles database operations for serve attempts. Attempts are
// append-only apart from their notes and status.
type ServeStore struct {
	db *sql.DB
}

// NewServeStore creates a new ServeStore
func NewServeStore(db *sql.DB) *ServeStore {
	return &ServeStore{db: db}
}

// Create inserts a serve attempt, assigning an id when it has none
func (s *ServeStore) Create(ctx context.Context, sv *model.Serve) error {
	if sv.ID == "" {
		sv.ID = uuid.New().String()
	}
	if sv.Status == "" {
		sv.Status = model.ServeStatusFailed
	}

	args, err := serveArgs(sv)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO serve_attempts (id, case_id, client_id, served_at, created_at, status,
		                            notes, description, service_address, physical, image_url,
		                            latitude, longitude, accuracy)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6, $7, $8, $9, $10::jsonb, $11, $12, $13, $14)
		RETURNING created_at
	`

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&sv.CreatedAt)
	if _, ok := uniqueConstraint(err); ok {
		return fmt.Errorf("serve %s: %w", sv.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create serve %s: %w", sv.ID, err)
	}
	sv.CreatedAt = sv.CreatedAt.UTC()

	return nil
}

// Upsert inserts a serve attempt or refreshes the existing row with the same id
func (s *ServeStore) Upsert(ctx context.Context, sv *model.Serve) error {
	args, err := serveArgs(sv)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO serve_attempts (id, case_id, client_id, served_at, created_at, status,
		                            notes, description, service_address, physical, image_url,
		                            latitude, longitude, accuracy)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6, $7, $8, $9, $10::jsonb, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			case_id = EXCLUDED.case_id,
			client_id = EXCLUDED.client_id,
			served_at = EXCLUDED.served_at,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			description = EXCLUDED.description,
			service_address = EXCLUDED.service_address,
			physical = EXCLUDED.physical,
			image_url = EXCLUDED.image_url,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			accuracy = EXCLUDED.accuracy
	`

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert serve %s: %w", sv.ID, err)
	}

	return nil
}

func serveArgs(sv *model.Serve) ([]any, error) {
	var physical sql.NullString
	if !sv.Physical.IsZero() {
		b, err := json.Marshal(sv.Physical)
		if err != nil {
			return nil, fmt.Errorf("failed to encode physical description of serve %s: %w", sv.ID, err)
		}
		physical = sql.NullString{String: string(b), Valid: true}
	}

	var lat, lng, acc sql.NullFloat64
	if g := sv.Location; g != nil {
		lat = sql.NullFloat64{Float64: g.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: g.Longitude, Valid: true}
		acc = sql.NullFloat64{Float64: g.Accuracy, Valid: g.Accuracy != 0}
	}

	return []any{
		sv.ID,
		sv.CaseID,
		sv.ClientID,
		nullTime(sv.Timestamp),
		nullTime(sv.CreatedAt),
		sv.Status,
		sv.Notes,
		sv.Description,
		sv.ServiceAddress,
		physical,
		sv.ImageURL,
		lat,
		lng,
		acc,
	}, nil
}

// GetByID retrieves a serve attempt by id
func (s *ServeStore) GetByID(ctx context.Context, id string) (*model.Serve, error) {
	query := `SELECT ` + serveColumns + ` FROM serve_attempts WHERE id = $1`

	sv, err := scanServe(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("serve %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get serve %s: %w", id, err)
	}

	return sv, nil
}

// ListByCase retrieves a case's serve attempts in chronological order
func (s *ServeStore) ListByCase(ctx context.Context, caseID string) ([]model.Serve, error) {
	query := `
		SELECT ` + serveColumns + `
		FROM serve_attempts
		WHERE case_id = $1
		ORDER BY COALESCE(served_at, created_at), created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get serves for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var serves []model.Serve
	for rows.Next() {
		sv, err := scanServe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan serve: %w", err)
		}
		serves = append(serves, *sv)
	}

	return serves, rows.Err()
}

// UpdateNotes replaces an attempt's notes and, when status is non-empty, its status
func (s *ServeStore) UpdateNotes(ctx context.Context, id, notes, status string) error {
	query := `
		UPDATE serve_attempts
		SET notes = $2, status = COALESCE(NULLIF($3, ''), status)
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id, notes, status)
	if err != nil {
		return fmt.Errorf("failed to update serve %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update serve %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("serve %s: %w", id, ErrNotFound)
	}

	return nil
}

func scanServe(row scanner) (*model.Serve, error) {
	var (
		sv            model.Serve
		servedAt      sql.NullTime
		physical      []byte
		lat, lng, acc sql.NullFloat64
	)
	err := row.Scan(
		&sv.ID,
		&sv.CaseID,
		&sv.ClientID,
		&servedAt,
		&sv.CreatedAt,
		&sv.Status,
		&sv.Notes,
		&sv.Description,
		&sv.ServiceAddress,
		&physical,
		&sv.ImageURL,
		&lat,
		&lng,
		&acc,
	)
	if err != nil {
		return nil, err
	}

	sv.Timestamp = timeOrZero(servedAt)
	sv.CreatedAt = sv.CreatedAt.UTC()
	if len(physical) > 0 {
		var p model.PhysicalDescription
		if err := json.Unmarshal(physical, &p); err != nil {
			return nil, fmt.Errorf("failed to decode physical description of serve %s: %w", sv.ID, err)
		}
		if !p.IsZero() {
			sv.Physical = &p
		}
	}
	if lat.Valid && lng.Valid {
		sv.Location = &model.GeoPoint{Latitude: lat.Float64, Longitude: lng.Float64, Accuracy: acc.Float64}
	}

	return &sv, nil
}
