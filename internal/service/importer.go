package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/normalize"
)

// Bundle is an export of records in either naming convention
type Bundle struct {
	Clients []normalize.Raw `json:"clients"`
	Cases   []normalize.Raw `json:"cases"`
	Serves  []normalize.Raw `json:"serves"`
}

// ReadBundle decodes a bundle from a JSON file
func ReadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle %s: %w", path, err)
	}

	return &b, nil
}

// ImportStats tracks import statistics for one record kind
type ImportStats struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// BundleStats tracks import statistics per record kind
type BundleStats struct {
	Clients ImportStats `json:"clients"`
	Cases   ImportStats `json:"cases"`
	Serves  ImportStats `json:"serves"`
}

// Failed reports the failures across all kinds
func (s *BundleStats) Failed() int {
	return s.Clients.Failed + s.Cases.Failed + s.Serves.Failed
}

// ClientUpserter writes clients
type ClientUpserter interface {
	Upsert(ctx context.Context, c *model.Client) error
}

// CaseUpserter writes cases
type CaseUpserter interface {
	Upsert(ctx context.Context, c *model.Case) error
}

// ServeUpserter writes serve attempts
type ServeUpserter interface {
	Upsert(ctx context.Context, s *model.Serve) error
}

// Importer normalizes a bundle and upserts its records. Clients go first, then
// cases, then serves, so references resolve.
type Importer struct {
	normalizer *normalize.Normalizer
	clients    ClientUpserter
	cases      CaseUpserter
	serves     ServeUpserter
	logger     *zap.Logger
}

// NewImporter creates a new Importer
func NewImporter(n *normalize.Normalizer, clients ClientUpserter, cases CaseUpserter, serves ServeUpserter, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		normalizer: n,
		clients:    clients,
		cases:      cases,
		serves:     serves,
		logger:     logger,
	}
}

// Import upserts every record in b. A failed record is counted and logged and
// does not stop the import; only cancellation does.
func (i *Importer) Import(ctx context.Context, b *Bundle) (*BundleStats, error) {
	stats := &BundleStats{}

	clients := i.normalizer.Clients(b.Clients)
	stats.Clients = ImportStats{Total: len(b.Clients), Skipped: len(b.Clients) - len(clients)}
	for idx := range clients {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		c := &clients[idx]
		i.tally(&stats.Clients, normalize.KindClient, c.ID, i.clients.Upsert(ctx, c))
	}

	cases := i.normalizer.Cases(b.Cases)
	stats.Cases = ImportStats{Total: len(b.Cases), Skipped: len(b.Cases) - len(cases)}
	clientOf := make(map[string]string, len(cases))
	for idx := range cases {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		c := &cases[idx]
		if c.Status == "" {
			c.Status = model.CaseStatusOpen
		}
		clientOf[c.ID] = c.ClientID
		i.tally(&stats.Cases, normalize.KindCase, c.ID, i.cases.Upsert(ctx, c))
	}

	serves := i.normalizer.Serves(b.Serves)
	stats.Serves = ImportStats{Total: len(b.Serves), Skipped: len(b.Serves) - len(serves)}
	for idx := range serves {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		s := &serves[idx]
		if s.ClientID == "" {
			s.ClientID = clientOf[s.CaseID]
		}
		i.tally(&stats.Serves, normalize.KindServe, s.ID, i.serves.Upsert(ctx, s))
	}

	return stats, nil
}

func (i *Importer) tally(stats *ImportStats, kind, id string, err error) {
	if err != nil {
		i.logger.Error("import failed", zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		stats.Failed++
		return
	}
	stats.Imported++
}

// PrintSummary writes the import statistics to w
func PrintSummary(w io.Writer, stats *BundleStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Import Summary ===")
	fmt.Fprintf(w, "%-8s %8s %8s %8s %8s\n", "", "Total", "Imported", "Skipped", "Failed")
	for _, row := range []struct {
		name  string
		stats ImportStats
	}{
		{"Clients", stats.Clients},
		{"Cases", stats.Cases},
		{"Serves", stats.Serves},
	} {
		fmt.Fprintf(w, "%-8s %8d %8d %8d %8d\n", row.name, row.stats.Total, row.stats.Imported, row.stats.Skipped, row.stats.Failed)
	}
}
