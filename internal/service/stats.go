package service

import (
	"context"
	"database/sql"
	"fmt"
)

// StatsService counts records for the dashboard
type StatsService struct {
	db *sql.DB
}

// NewStatsService creates a new StatsService
func NewStatsService(db *sql.DB) *StatsService {
	return &StatsService{db: db}
}

// Summary is the dashboard headline numbers
type Summary struct {
	Clients         int
	OpenCases       int
	Attempts        int
	CompletedServes int
}

// Summary counts clients, open cases, serve attempts and completed serves
func (s *StatsService) Summary(ctx context.Context) (*Summary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM cases WHERE status <> 'closed'),
			(SELECT COUNT(*) FROM serve_attempts),
			(SELECT COUNT(*) FROM serve_attempts WHERE status = 'completed')
	`

	var sum Summary
	err := s.db.QueryRowContext(ctx, query).Scan(
		&sum.Clients,
		&sum.OpenCases,
		&sum.Attempts,
		&sum.CompletedServes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate summary: %w", err)
	}

	return &sum, nil
}
