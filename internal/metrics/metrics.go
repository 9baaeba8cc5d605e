// Package metrics holds the Prometheus collectors for affidavit generation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	AffidavitsGenerated prometheus.Counter
	AffidavitFailures   *prometheus.CounterVec
	AffidavitFields     *prometheus.CounterVec
	RecordsDropped      *prometheus.CounterVec
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AffidavitsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "servetrack_affidavits_generated_total",
			Help: "Total number of affidavits generated",
		}),
		AffidavitFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "servetrack_affidavit_failures_total",
			Help: "Total number of failed affidavit generations, labeled by pipeline stage",
		}, []string{"stage"}),
		AffidavitFields: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "servetrack_affidavit_fields_total",
			Help: "Logical affidavit values by fill outcome (filled, missing, skipped)",
		}, []string{"outcome"}),
		RecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "servetrack_records_dropped_total",
			Help: "Records dropped during normalization for lack of an identifier, labeled by kind",
		}, []string{"kind"}),
	}
}

// Generated increments the generated counter by 1
func (m *Metrics) Generated() {
	m.AffidavitsGenerated.Inc()
}

// Failed records a failure at stage
func (m *Metrics) Failed(stage string) {
	m.AffidavitFailures.WithLabelValues(stage).Inc()
}

// Fields adds n values with the given outcome
func (m *Metrics) Fields(outcome string, n int) {
	m.AffidavitFields.WithLabelValues(outcome).Add(float64(n))
}

// Dropped records one record dropped by the normalizer
func (m *Metrics) Dropped(kind string) {
	m.RecordsDropped.WithLabelValues(kind).Inc()
}
