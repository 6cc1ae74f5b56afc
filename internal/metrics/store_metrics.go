package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций хранилища для label result.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// StoreMetrics содержит метрики обращений к хранилищу документов.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics регистрирует метрики хранилища (nil - DefaultRegisterer).
func NewStoreMetrics(registerer prometheus.Registerer) *StoreMetrics {
	registerer = registererOrDefault(registerer)

	return &StoreMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of document store operations by outcome",
		}, []string{"driver", "operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of document store operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"driver", "operation"}),
	}
}

// ObserveOperation фиксирует одну операцию хранилища.
func (m *StoreMetrics) ObserveOperation(driver, operation, result string, duration time.Duration) {
	m.operations.WithLabelValues(driver, operation, result).Inc()
	m.duration.WithLabelValues(driver, operation).Observe(duration.Seconds())
}
