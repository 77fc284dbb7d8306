package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/trackwise-backend/pkg/logger"
)

const defaultInterval = 5 * time.Minute

// JobMetrics records per-job outcomes. *metrics.CronJobMetrics satisfies it.
type JobMetrics interface {
	ObserveDuration(job string, d time.Duration)
	IncSuccess(job string)
	IncFailure(job string)
}

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  JobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval while holding Lock.
// A failing job never stops the jobs after it.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  JobMetrics
	interval time.Duration
}

// cycleSummary is logged at the end of each locked cycle.
type cycleSummary struct {
	skipped bool
	ran     int
	failed  []string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	svc := &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}
	if svc.registry == nil {
		svc.registry = NewRegistry()
	}
	if svc.lock == nil {
		svc.lock = NoopLock{}
	}
	if svc.interval <= 0 {
		svc.interval = defaultInterval
	}
	return svc, nil
}

// Run executes a cycle right away and then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.cycle(ctx); err != nil {
			s.logg.Error(ctx, "scheduled run failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single locked cycle.
func (s *Service) RunOnce(ctx context.Context) error {
	_, err := s.cycle(ctx)
	return err
}

func (s *Service) cycle(ctx context.Context) (cycleSummary, error) {
	var summary cycleSummary

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return summary, fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		summary.skipped = true
		s.logg.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return summary, nil
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "failed to release cron lock", err)
		}
	}()

	for _, job := range s.registry.Jobs() {
		summary.ran++
		if err := s.runJob(ctx, job); err != nil {
			summary.failed = append(summary.failed, job.Name())
		}
	}

	fields := map[string]any{"jobs_run": summary.ran}
	if len(summary.failed) > 0 {
		fields["failed_jobs"] = summary.failed
		s.logg.Warn(s.logg.WithFields(ctx, fields), "scheduled run finished with failures")
	} else {
		s.logg.Info(s.logg.WithFields(ctx, fields), "scheduled run complete")
	}
	return summary, nil
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	name := job.Name()
	jobCtx := s.logg.WithFields(ctx, map[string]any{"job": name, "event": "cron.job"})

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())

	if s.metrics != nil {
		s.metrics.ObserveDuration(name, elapsed)
		if err != nil {
			s.metrics.IncFailure(name)
		} else {
			s.metrics.IncSuccess(name)
		}
	}

	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		return err
	}
	s.logg.Debug(jobCtx, "job completed")
	return nil
}
