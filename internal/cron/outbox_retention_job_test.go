package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

func TestOutboxRetentionJobUsesRetentionWindow(t *testing.T) {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{remaining: 3}
	job := newOutboxRetentionJob(t, repo, 0, 0)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-outboxRetentionDays*24*time.Hour), repo.lastCutoff)
	assert.Equal(t, 1, repo.calls, "a short batch ends the run")
	assert.Equal(t, outboxRetentionJobName, job.Name())
}

func TestOutboxRetentionJobDeletesInBatches(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{remaining: 25}
	job := newOutboxRetentionJob(t, repo, 30, 10)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 3, repo.calls)
	assert.Zero(t, repo.remaining)
	assert.Equal(t, []int{10, 10, 10}, repo.limits)
}

func TestOutboxRetentionJobStopsAtMaxBatches(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{remaining: 1 << 30}
	job := newOutboxRetentionJob(t, repo, 0, 1)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, outboxRetentionMaxBatches, repo.calls)
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	job := newOutboxRetentionJob(t, &fakeOutboxRetentionRepo{err: errors.New("boom")}, 0, 0)
	assert.Error(t, job.Run(context.Background()))
}

func TestNewOutboxRetentionJobRequiresDeps(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo, days, batch int) *outboxRetentionJob {
	t.Helper()
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.Nop(),
		DB:         passthroughTx{},
		Repository: repo,
		Retention:  days,
		BatchSize:  batch,
	})
	require.NoError(t, err)
	job, ok := jobIface.(*outboxRetentionJob)
	require.True(t, ok, "expected outboxRetentionJob, got %T", jobIface)
	return job
}

type fakeOutboxRetentionRepo struct {
	remaining  int64
	lastCutoff time.Time
	limits     []int
	calls      int
	err        error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	f.calls++
	f.lastCutoff = cutoff
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	n := min(int64(limit), f.remaining)
	f.remaining -= n
	return n, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
