package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registration outcomes.
const (
	OutcomeCreated = "created"
	OutcomeReused  = "reused"
	OutcomeFailed  = "failed"
)

// Webhook outcomes.
const (
	WebhookUpdated   = "updated"
	WebhookUnmatched = "unmatched"
	WebhookIgnored   = "ignored"
	WebhookDuplicate = "duplicate"
	WebhookInvalid   = "invalid"
)

// PaymentMetrics covers registration, provider calls and webhook handling.
type PaymentMetrics struct {
	registered *prometheus.CounterVec
	provider   *prometheus.HistogramVec
	webhooks   *prometheus.CounterVec
	orphaned   prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on reg. A nil registerer
// yields a no-op recorder.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	registered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackwise_payments_registered_total",
		Help: "Payment registrations by outcome.",
	}, []string{"outcome"})
	provider := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trackwise_provider_request_duration_seconds",
		Help:    "Latency of payment provider requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trackwise_webhook_events_total",
		Help: "Provider webhook deliveries by outcome.",
	}, []string{"outcome"})
	orphaned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trackwise_payments_orphaned_total",
		Help: "Provider transactions created by a request that lost the pending-payment race.",
	})
	reg.MustRegister(registered, provider, webhooks, orphaned)
	return &PaymentMetrics{
		registered: registered,
		provider:   provider,
		webhooks:   webhooks,
		orphaned:   orphaned,
	}
}

// IncRegistered counts a registration attempt.
func (m *PaymentMetrics) IncRegistered(outcome string) {
	if m == nil || m.registered == nil {
		return
	}
	m.registered.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveProvider records a provider round trip.
func (m *PaymentMetrics) ObserveProvider(operation string, err error, duration time.Duration) {
	if m == nil || m.provider == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.provider.WithLabelValues(normalizeLabel(operation), outcome).Observe(duration.Seconds())
}

// IncWebhook counts a webhook delivery.
func (m *PaymentMetrics) IncWebhook(outcome string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrphaned counts a provider transaction with no local row.
func (m *PaymentMetrics) IncOrphaned() {
	if m == nil || m.orphaned == nil {
		return
	}
	m.orphaned.Inc()
}
