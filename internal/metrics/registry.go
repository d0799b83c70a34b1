package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Operation results recorded on the operations counter
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultNotFound   = "not_found"
	ResultError      = "error"
)

// Registry holds the directory metrics on a private prometheus registry
type Registry struct {
	reg *prometheus.Registry

	Operations *prometheus.CounterVec
	Records    prometheus.Gauge
	Phones     prometheus.Gauge
}

// NewRegistry creates a registry with all directory metrics registered
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "phonebook",
				Subsystem: "directory",
				Name:      "operations_total",
				Help:      "Total number of directory operations",
			},
			[]string{"operation", "result"},
		),
		Records: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "phonebook",
				Subsystem: "directory",
				Name:      "records",
				Help:      "Number of records in the directory",
			},
		),
		Phones: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "phonebook",
				Subsystem: "directory",
				Name:      "phones",
				Help:      "Number of phone numbers across all records",
			},
		),
	}
}

// Gatherer exposes the underlying registry for scraping or inspection
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RecordOperation increments the operation counter
func (r *Registry) RecordOperation(operation, result string) {
	r.Operations.WithLabelValues(operation, result).Inc()
}

// SetSize updates the directory size gauges
func (r *Registry) SetSize(records, phones int) {
	r.Records.Set(float64(records))
	r.Phones.Set(float64(phones))
}

// Summary renders every gathered sample in the prometheus text format with
// the HELP and TYPE comments dropped. Gather sorts families by name and
// samples by label set.
func (r *Registry) Summary() (string, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return "", fmt.Errorf("gathering metrics: %w", err)
	}

	var buf strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("encoding %s: %w", mf.GetName(), err)
		}
	}

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
