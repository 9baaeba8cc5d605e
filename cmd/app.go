package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/metrics"
	"github.com/jjenkins/servetrack/internal/pdfform"
	"github.com/jjenkins/servetrack/internal/service"
	"github.com/jjenkins/servetrack/internal/store"
)

// fieldMap returns the candidate field names, with the configured overrides
func fieldMap() (affidavit.FieldMap, error) {
	if cfg.Affidavit.FieldMap == "" {
		return affidavit.DefaultFieldMap(), nil
	}
	return affidavit.LoadFieldMap(cfg.Affidavit.FieldMap)
}

// affidavitSettings is the affidavit configuration, parsed and checked once per
// command and shared by everything that needs it.
type affidavitSettings struct {
	fields affidavit.FieldMap
	zone   *time.Location
}

func loadAffidavitSettings() (affidavitSettings, error) {
	fields, err := fieldMap()
	if err != nil {
		return affidavitSettings{}, fmt.Errorf("invalid field map: %w", err)
	}
	zone, err := cfg.Affidavit.Location()
	if err != nil {
		return affidavitSettings{}, err
	}
	return affidavitSettings{fields: fields, zone: zone}, nil
}

// newAffidavitService wires the generation pipeline onto the stores. m may be nil.
func newAffidavitService(db *sql.DB, loader *pdfform.Loader, settings affidavitSettings, m *metrics.Metrics) *service.AffidavitService {
	opts := []affidavit.Option{affidavit.WithTimeZone(settings.zone)}
	if m != nil {
		opts = append(opts, affidavit.WithRecorder(m))
	}
	gen := affidavit.NewGenerator(loader, cfg.Affidavit.Template, affidavit.NewFiller(settings.fields, logger), logger, opts...)

	return service.NewAffidavitService(
		store.NewCaseStore(db),
		store.NewClientStore(db),
		store.NewServeStore(db),
		gen,
		logger,
	)
}

func openDB() (*sql.DB, error) {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
