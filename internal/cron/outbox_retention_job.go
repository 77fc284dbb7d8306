package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const (
	outboxRetentionJobName   = "outbox_retention"
	outboxRetentionDays      = 7
	outboxRetentionBatchSize = 500
	// upper bound on batches per run; the remainder waits for the next tick
	outboxRetentionMaxBatches = 100
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository outboxRetentionRepo
	// Retention is in days.
	Retention int
	BatchSize int
}

// NewOutboxRetentionJob deletes published outbox rows older than the
// retention window. Each batch commits on its own.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.DB == nil:
		return nil, errors.New("db runner required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository required")
	}
	job := &outboxRetentionJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		window:    time.Duration(outboxRetentionDays) * 24 * time.Hour,
		batchSize: outboxRetentionBatchSize,
		now:       time.Now,
	}
	if params.Retention > 0 {
		job.window = time.Duration(params.Retention) * 24 * time.Hour
	}
	if params.BatchSize > 0 {
		job.batchSize = params.BatchSize
	}
	return job, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      outboxRetentionRepo
	window    time.Duration
	batchSize int
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return outboxRetentionJobName }

func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.window)

	var total int64
	batches := 0
	for batches < outboxRetentionMaxBatches {
		if err := ctx.Err(); err != nil {
			return err
		}
		var n int64
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			n, err = j.repo.DeletePublishedBefore(ctx, tx, cutoff, j.batchSize)
			return err
		})
		if err != nil {
			return fmt.Errorf("outbox retention after %d rows: %w", total, err)
		}
		batches++
		total += n
		if n < int64(j.batchSize) {
			break
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff.Format(time.RFC3339),
		"batches":      batches,
		"rows_deleted": total,
	}), "outbox retention cleanup complete")
	return nil
}
