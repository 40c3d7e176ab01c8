package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters for one run. Each run gets its own registry
// so the textfile export contains only what that run observed.
type Metrics struct {
	Registry *prometheus.Registry

	ObservationsIngested *prometheus.CounterVec
	ObservationsRejected *prometheus.CounterVec
	QualityFlags         *prometheus.CounterVec
	Labels               *prometheus.CounterVec
	MissingInputs        *prometheus.CounterVec
	MonthsAggregated     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		ObservationsIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climatedss_observations_ingested_total",
				Help: "Daily observations read from input files",
			},
			[]string{"location"},
		),

		ObservationsRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climatedss_observations_rejected_total",
				Help: "Daily observations dropped by the pipeline",
			},
			[]string{"location", "reason"},
		),

		QualityFlags: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climatedss_quality_flags_total",
				Help: "Quality flags raised while validating observations",
			},
			[]string{"flag"},
		),

		Labels: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climatedss_labels_total",
				Help: "Classification labels assigned, by label kind and value",
			},
			[]string{"kind", "value"},
		),

		MissingInputs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climatedss_missing_inputs_total",
				Help: "Classifier inputs that were absent, by field",
			},
			[]string{"field"},
		),

		MonthsAggregated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climatedss_months_aggregated_total",
				Help: "Monthly summaries produced",
			},
			[]string{"location"},
		),
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// RecordIngest counts a file's observations and the quality flags raised on
// them. flags is keyed by date.
func (m *Metrics) RecordIngest(location string, observations int, flags map[string][]string) {
	m.ObservationsIngested.WithLabelValues(location).Add(float64(observations))
	for _, fs := range flags {
		for _, f := range fs {
			m.QualityFlags.WithLabelValues(f).Inc()
		}
	}
}
