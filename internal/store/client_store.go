package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jjenkins/servetrack/internal/model"
)

const clientColumns = `id, name, email, phone, address, created_at, updated_at`

// ClientStore handles database operations for clients
type ClientStore struct {
	db *sql.DB
}

// NewClientStore creates a new ClientStore
func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

// Create inserts a client, assigning an id when it has none
func (s *ClientStore) Create(ctx context.Context, c *model.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `
		INSERT INTO clients (id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), COALESCE($7, NOW()))
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		nullTime(c.CreatedAt),
		nullTime(c.UpdatedAt),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if _, ok := uniqueConstraint(err); ok {
		return fmt.Errorf("client %s: %w", c.ID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// Upsert inserts a client or updates the existing row with the same id
func (s *ClientStore) Upsert(ctx context.Context, c *model.Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), COALESCE($7, NOW()))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		c.Phone,
		c.Address,
		nullTime(c.CreatedAt),
		nullTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert client %s: %w", c.ID, err)
	}

	return nil
}

// GetByID retrieves a client by id
func (s *ClientStore) GetByID(ctx context.Context, id string) (*model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client %s: %w", id, err)
	}

	return c, nil
}

// List retrieves all clients ordered by name
func (s *ClientStore) List(ctx context.Context) ([]model.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}

	return clients, rows.Err()
}

func scanClient(row scanner) (*model.Client, error) {
	var c model.Client
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
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
