package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/metrics"
)

type fakeLock struct {
	acquired bool
	held     bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held || f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := &testJob{name: "success"}
	bad := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok, bad),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, bad.runs)
	assert.False(t, lock.acquired, "lock released after the cycle")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestServiceSkipsCycleWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{held: true},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Interval: time.Hour,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Run(ctx), context.Canceled)
	assert.Equal(t, 1, job.runs, "first cycle runs before waiting on the ticker")
}

func TestNewServiceRequiresLogger(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}

func TestServiceCycleSummary(t *testing.T) {
	ok := &testJob{name: "payment_reconcile"}
	bad := &testJob{name: "outbox_retention", err: errors.New("boom")}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok, bad),
	})
	require.NoError(t, err)

	summary, err := svc.cycle(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.skipped)
	assert.Equal(t, 2, summary.ran)
	assert.Equal(t, []string{"outbox_retention"}, summary.failed)

	held, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(ok),
		Lock:     &fakeLock{held: true},
	})
	require.NoError(t, err)
	summary, err = held.cycle(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.skipped)
	assert.Zero(t, summary.ran)
}
