package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/trackwise-backend/internal/payments"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/novaera"
	"github.com/angelmondragon/trackwise-backend/pkg/outbox"
)

type stubPending struct {
	rows   []models.Payment
	cutoff time.Time
	limit  int
	after  []int64
}

func (s *stubPending) ListPendingBefore(_ context.Context, cutoff time.Time, afterID int64, limit int) ([]models.Payment, error) {
	s.cutoff, s.limit = cutoff, limit
	s.after = append(s.after, afterID)
	var page []models.Payment
	for _, row := range s.rows {
		if row.ID > afterID && len(page) < limit {
			page = append(page, row)
		}
	}
	return page, nil
}

type stubFetcher struct {
	bodies map[string]string
	calls  []string
}

func (s *stubFetcher) GetTransaction(_ context.Context, creds novaera.Credentials, id string) (json.RawMessage, error) {
	s.calls = append(s.calls, id)
	body, ok := s.bodies[id]
	if !ok {
		return nil, errors.New("upstream 500")
	}
	return json.RawMessage(body), nil
}

type stubApplier struct {
	updates []payments.StatusUpdate
}

func (s *stubApplier) ApplyProviderStatus(_ context.Context, update payments.StatusUpdate) (payments.StatusResult, error) {
	s.updates = append(s.updates, update)
	return payments.StatusResult{Matched: 1, Updated: 1}, nil
}

type stubSettings struct {
	current settings.ProviderSettings
}

func (s stubSettings) Reload(context.Context) (settings.ProviderSettings, error) {
	return s.current, nil
}

func orderID(v string) *string { return &v }

func newReconcileJob(t *testing.T, pending *stubPending, fetcher *stubFetcher, applier *stubApplier, creds settings.ProviderSettings) *paymentReconcileJob {
	t.Helper()
	return newReconcileJobWithBatch(t, pending, fetcher, applier, creds, 25)
}

func newReconcileJobWithBatch(t *testing.T, pending *stubPending, fetcher *stubFetcher, applier *stubApplier, creds settings.ProviderSettings, batch int) *paymentReconcileJob {
	t.Helper()
	job, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger:    logger.Nop(),
		Payments:  pending,
		Provider:  fetcher,
		Applier:   applier,
		Settings:  stubSettings{current: creds},
		MinAge:    15 * time.Minute,
		BatchSize: batch,
	})
	require.NoError(t, err)
	return job.(*paymentReconcileJob)
}

func TestPaymentReconcileAppliesProviderStatus(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	pending := &stubPending{rows: []models.Payment{
		{ID: 1, OrderID: orderID("prov-paid")},
		{ID: 2, OrderID: orderID("prov-waiting")},
		{ID: 3},
		{ID: 4, OrderID: orderID("prov-down")},
		{ID: 5, OrderID: orderID("prov-refused")},
	}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"prov-paid":    `{"data":{"id":"prov-paid","status":"approved"}}`,
		"prov-waiting": `{"data":{"id":"prov-waiting","status":"waiting_payment"}}`,
		"prov-refused": `{"id":"prov-refused","status":"canceled"}`,
	}}
	applier := &stubApplier{}
	job := newReconcileJob(t, pending, fetcher, applier, settings.ProviderSettings{SecretKey: "sk", PublicKey: "pk"})
	job.now = func() time.Time { return now }

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "payment 4")

	assert.Equal(t, now.Add(-15*time.Minute), pending.cutoff)
	assert.Equal(t, 25, pending.limit)
	assert.Equal(t, []int64{0}, pending.after)
	assert.Equal(t, []string{"prov-paid", "prov-waiting", "prov-down", "prov-refused"}, fetcher.calls)

	require.Len(t, applier.updates, 2)
	assert.Equal(t, payments.StatusUpdate{ProviderID: "prov-paid", Status: "approved", Source: outbox.SourceCron}, applier.updates[0])
	assert.Equal(t, payments.StatusUpdate{ProviderID: "prov-refused", Status: "canceled", Source: outbox.SourceCron}, applier.updates[1])
}

func TestPaymentReconcileSkipsPendingAndUnconfigured(t *testing.T) {
	pending := &stubPending{rows: []models.Payment{{ID: 1, OrderID: orderID("p1")}}}
	fetcher := &stubFetcher{bodies: map[string]string{"p1": `{"data":{"id":"p1","status":"PENDING"}}`}}
	applier := &stubApplier{}

	job := newReconcileJob(t, pending, fetcher, applier, settings.ProviderSettings{SecretKey: "sk"})
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, fetcher.calls, "no provider calls without both keys")

	job = newReconcileJob(t, pending, fetcher, applier, settings.ProviderSettings{SecretKey: "sk", PublicKey: "pk"})
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"p1"}, fetcher.calls)
	assert.Empty(t, applier.updates)
}

func TestPaymentReconcilePagesPastStillOpenRows(t *testing.T) {
	pending := &stubPending{rows: []models.Payment{
		{ID: 1, OrderID: orderID("p1")},
		{ID: 2, OrderID: orderID("p2")},
		{ID: 3, OrderID: orderID("p3")},
	}}
	fetcher := &stubFetcher{bodies: map[string]string{
		"p1": `{"data":{"id":"p1","status":"waiting_payment"}}`,
		"p2": `{"data":{"id":"p2","status":"waiting_payment"}}`,
		"p3": `{"data":{"id":"p3","status":"paid"}}`,
	}}
	applier := &stubApplier{}
	job := newReconcileJobWithBatch(t, pending, fetcher, applier, settings.ProviderSettings{SecretKey: "sk", PublicKey: "pk"}, 2)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []int64{0, 2}, pending.after)
	assert.Equal(t, []string{"p1", "p2", "p3"}, fetcher.calls)
	require.Len(t, applier.updates, 1)
	assert.Equal(t, "p3", applier.updates[0].ProviderID)
}

func TestPaymentReconcileStopsAtPageBound(t *testing.T) {
	pending := &stubPending{}
	bodies := map[string]string{}
	for i := int64(1); i <= reconcileMaxPages+5; i++ {
		id := fmt.Sprintf("p%d", i)
		pending.rows = append(pending.rows, models.Payment{ID: i, OrderID: orderID(id)})
		bodies[id] = `{"status":"waiting_payment"}`
	}
	fetcher := &stubFetcher{bodies: bodies}
	job := newReconcileJobWithBatch(t, pending, fetcher, &stubApplier{}, settings.ProviderSettings{SecretKey: "sk", PublicKey: "pk"}, 1)

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, pending.after, reconcileMaxPages)
	assert.Len(t, fetcher.calls, reconcileMaxPages)
}
