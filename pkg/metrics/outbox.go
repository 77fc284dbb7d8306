package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutboxMetrics tracks publisher throughput.
type OutboxMetrics struct {
	published *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox publisher counters.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackwise_outbox_events_total",
		Help: "Outbox events handled by the publisher, by outcome.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(published)
	return &OutboxMetrics{published: published}
}

// Inc counts one handled event.
func (m *OutboxMetrics) Inc(eventType, outcome string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}
