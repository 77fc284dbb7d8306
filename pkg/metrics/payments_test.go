package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)

	m.IncRegistered(OutcomeCreated)
	m.IncRegistered(OutcomeReused)
	m.IncRegistered(OutcomeReused)
	m.IncWebhook(WebhookUnmatched)
	m.IncOrphaned()
	m.ObserveProvider("create_transaction", nil, 120*time.Millisecond)
	m.ObserveProvider("create_transaction", errors.New("502"), 80*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "trackwise_payments_registered_total", "outcome", OutcomeReused)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "trackwise_webhook_events_total", "outcome", WebhookUnmatched)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	orphaned, err := findMetric(mfs, "trackwise_payments_orphaned_total", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, orphaned.GetCounter().GetValue())

	sum, err := fetchHistogramSum(mfs, "trackwise_provider_request_duration_seconds", "outcome", "error")
	require.NoError(t, err)
	assert.InDelta(t, 0.08, sum, 0.0001)
}

func TestNilRecordersAreSafe(t *testing.T) {
	var payments *PaymentMetrics
	payments.IncRegistered(OutcomeFailed)
	payments.IncOrphaned()
	payments.ObserveProvider("get_transaction", nil, time.Second)

	NewPaymentMetrics(nil).IncWebhook(WebhookDuplicate)
	NewOutboxMetrics(nil).Inc("payment.registered", "published")

	var cron *CronJobMetrics
	cron.IncFailure("job")
}

func TestOutboxMetricsCountsByEventType(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.Inc("payment.registered", "published")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "trackwise_outbox_events_total", "event_type", "payment.registered")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}
