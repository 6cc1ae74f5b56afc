package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics считает публикации событий изменений клиентов.
type EventMetrics struct {
	published *prometheus.CounterVec
}

// NewEventMetrics регистрирует счётчик публикаций.
func NewEventMetrics(registerer prometheus.Registerer) *EventMetrics {
	registerer = registererOrDefault(registerer)

	return &EventMetrics{
		published: registerCounterVec(registerer, prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of customer change events sent to the broker",
		}, []string{"event_type", "result"}),
	}
}

// RecordPublished фиксирует попытку публикации.
func (m *EventMetrics) RecordPublished(eventType string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.published.WithLabelValues(eventType, result).Inc()
}
