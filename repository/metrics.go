package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregate adjustment kinds, used as the op label.
const (
	opCreate     = "create"
	opUpdate     = "update"
	opDelete     = "delete"
	opCompensate = "compensate"
)

// metrics holds the repository's counters. A nil *metrics records nothing.
type metrics struct {
	aggregateAdjustments   *prometheus.CounterVec
	cascadeChildrenDeleted *prometheus.CounterVec
	cascadeFailures        *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		aggregateAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platewise_aggregate_adjustments_total",
				Help: "Total number of food item aggregate adjustments applied",
			},
			[]string{"op"},
		),
		cascadeChildrenDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platewise_cascade_children_deleted_total",
				Help: "Total number of child rows removed by cascade deletes",
			},
			[]string{"parent_type"},
		),
		cascadeFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platewise_cascade_failures_total",
				Help: "Total number of cascade deletes interrupted by a child failure",
			},
			[]string{"parent_type"},
		),
	}
}

func (m *metrics) aggregateAdjusted(op string) {
	if m == nil {
		return
	}
	m.aggregateAdjustments.WithLabelValues(op).Inc()
}

func (m *metrics) childrenDeleted(parentType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cascadeChildrenDeleted.WithLabelValues(parentType).Add(float64(n))
}

func (m *metrics) cascadeFailed(parentType string) {
	if m == nil {
		return
	}
	m.cascadeFailures.WithLabelValues(parentType).Inc()
}
