package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/store"
)

// CaseGetter reads cases
type CaseGetter interface {
	GetByID(ctx context.Context, id string) (*model.Case, error)
}

// ClientGetter reads clients
type ClientGetter interface {
	GetByID(ctx context.Context, id string) (*model.Client, error)
}

// ServeLister reads a case's serve attempts
type ServeLister interface {
	ListByCase(ctx context.Context, caseID string) ([]model.Serve, error)
}

// GenerateOptions are per-request affidavit overrides
type GenerateOptions struct {
	ServiceAddress string
}

// AffidavitService loads a case's records and generates its affidavit
type AffidavitService struct {
	cases     CaseGetter
	clients   ClientGetter
	serves    ServeLister
	generator *affidavit.Generator
	logger    *zap.Logger
}

// NewAffidavitService creates a new AffidavitService
func NewAffidavitService(cases CaseGetter, clients ClientGetter, serves ServeLister, generator *affidavit.Generator, logger *zap.Logger) *AffidavitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AffidavitService{
		cases:     cases,
		clients:   clients,
		serves:    serves,
		generator: generator,
		logger:    logger,
	}
}

// Generate builds the affidavit for caseID. A missing case is an error; a
// missing client only leaves the client fields blank.
func (s *AffidavitService) Generate(ctx context.Context, caseID string, opts GenerateOptions) (*affidavit.Result, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var client model.Client
	if c.ClientID != "" {
		found, err := s.clients.GetByID(ctx, c.ClientID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.logger.Warn("case references a missing client", zap.String("case_id", c.ID), zap.String("client_id", c.ClientID))
		case err != nil:
			return nil, err
		default:
			client = *found
		}
	}

	serves, err := s.serves.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load serve attempts: %w", err)
	}

	return s.generator.Generate(ctx, affidavit.Request{
		Client:         client,
		Case:           c,
		Serves:         serves,
		ServiceAddress: opts.ServiceAddress,
	})
}
