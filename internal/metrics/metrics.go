// Package metrics provides the Prometheus metrics of the orphaned data service.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors and the registry they live in.
type Metrics struct {
	BulkActions     *prometheus.CounterVec
	RecordsAffected *prometheus.CounterVec
	OrphanedTypes   prometheus.Gauge
	registry        *prometheus.Registry
}

// New creates the collectors and registers them on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BulkActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orphaned_data_bulk_actions_total",
			Help: "Total number of processed bulk actions",
		}, []string{"action"}),
		RecordsAffected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orphaned_data_records_affected_total",
			Help: "Total number of records deleted or retyped",
		}, []string{"action"}),
		OrphanedTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orphaned_data_orphaned_types",
			Help: "Number of orphaned post types found on the last detection",
		}),
	}
	if err := m.registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.BulkActions.Describe(ch)
	m.RecordsAffected.Describe(ch)
	m.OrphanedTypes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.BulkActions.Collect(ch)
	m.RecordsAffected.Collect(ch)
	m.OrphanedTypes.Collect(ch)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBulkAction records one handled bulk action. Safe on a nil receiver.
func (m *Metrics) ObserveBulkAction(action string, affected int) {
	if m == nil {
		return
	}
	m.BulkActions.WithLabelValues(action).Inc()
	m.RecordsAffected.WithLabelValues(action).Add(float64(affected))
}

// SetOrphanedTypes records the size of the latest orphan set. Safe on a nil receiver.
func (m *Metrics) SetOrphanedTypes(n int) {
	if m == nil {
		return
	}
	m.OrphanedTypes.Set(float64(n))
}
