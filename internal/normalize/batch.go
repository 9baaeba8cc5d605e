package normalize

import (
	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/model"
)

// Record kinds, used in logs and drop counters
const (
	KindClient = "client"
	KindCase   = "case"
	KindServe  = "serve"
)

// Normalizer normalizes batches, dropping records that carry no identifier
type Normalizer struct {
	logger *zap.Logger
	// OnDrop, when set, is called once per dropped record
	OnDrop func(kind string)
}

// New creates a Normalizer; a nil logger discards output
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

func (n *Normalizer) keep(kind string, index int, raw Raw, table aliasTable) bool {
	if hasID(raw, table) {
		return true
	}
	n.logger.Warn("dropping record without identifier",
		zap.String("kind", kind),
		zap.Int("index", index),
		zap.Stringer("shape", detect(raw, table)))
	if n.OnDrop != nil {
		n.OnDrop(kind)
	}
	return false
}

// Clients normalizes a batch of raw clients
func (n *Normalizer) Clients(batch []Raw) []model.Client {
	out := make([]model.Client, 0, len(batch))
	for i, raw := range batch {
		if n.keep(KindClient, i, raw, clientAliases) {
			out = append(out, Client(raw))
		}
	}
	return out
}

// Cases normalizes a batch of raw cases
func (n *Normalizer) Cases(batch []Raw) []model.Case {
	out := make([]model.Case, 0, len(batch))
	for i, raw := range batch {
		if n.keep(KindCase, i, raw, caseAliases) {
			out = append(out, Case(raw))
		}
	}
	return out
}

// Serves normalizes a batch of raw serve attempts
func (n *Normalizer) Serves(batch []Raw) []model.Serve {
	out := make([]model.Serve, 0, len(batch))
	for i, raw := range batch {
		if n.keep(KindServe, i, raw, serveAliases) {
			out = append(out, Serve(raw))
		}
	}
	return out
}
