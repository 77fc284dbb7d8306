package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/trackwise-backend/internal/payments"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	"github.com/angelmondragon/trackwise-backend/pkg/db/models"
	"github.com/angelmondragon/trackwise-backend/pkg/enums"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/novaera"
	"github.com/angelmondragon/trackwise-backend/pkg/outbox"
)

const (
	defaultReconcileMinAge    = 10 * time.Minute
	defaultReconcileBatchSize = 50
	reconcileMaxPages         = 20
)

type pendingPayments interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time, afterID int64, limit int) ([]models.Payment, error)
}

type transactionFetcher interface {
	GetTransaction(ctx context.Context, creds novaera.Credentials, id string) (json.RawMessage, error)
}

type statusApplier interface {
	ApplyProviderStatus(ctx context.Context, update payments.StatusUpdate) (payments.StatusResult, error)
}

type settingsLoader interface {
	Reload(ctx context.Context) (settings.ProviderSettings, error)
}

// PaymentReconcileJobParams configure the pending payment sweep.
type PaymentReconcileJobParams struct {
	Logger    *logger.Logger
	Payments  pendingPayments
	Provider  transactionFetcher
	Applier   statusApplier
	Settings  settingsLoader
	MinAge    time.Duration
	BatchSize int
}

// NewPaymentReconcileJob polls the provider for pending payments that have
// waited longer than MinAge and applies any settled status through the same
// lattice the webhook uses.
func NewPaymentReconcileJob(params PaymentReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Provider == nil {
		return nil, fmt.Errorf("provider client required")
	}
	if params.Applier == nil {
		return nil, fmt.Errorf("status applier required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultReconcileMinAge
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatchSize
	}
	return &paymentReconcileJob{
		logg:     params.Logger,
		payments: params.Payments,
		provider: params.Provider,
		applier:  params.Applier,
		settings: params.Settings,
		minAge:   minAge,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type paymentReconcileJob struct {
	logg     *logger.Logger
	payments pendingPayments
	provider transactionFetcher
	applier  statusApplier
	settings settingsLoader
	minAge   time.Duration
	batch    int
	now      func() time.Time
}

func (j *paymentReconcileJob) Name() string { return "payment_reconcile" }

func (j *paymentReconcileJob) Run(ctx context.Context) error {
	// the API process owns writes to settings; pick them up every sweep
	current, err := j.settings.Reload(ctx)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	creds := current.Credentials()
	if !creds.Configured() {
		j.logg.Info(ctx, "provider credentials not configured, skipping reconcile")
		return nil
	}

	cutoff := j.now().UTC().Add(-j.minAge)

	var (
		errs    error
		afterID int64
		pending int
		checked int
		updated int64
	)
	// rows the provider still reports as open stay pending, so the sweep
	// walks the id keyset instead of rereading the oldest page every run
	for page := 0; page < reconcileMaxPages; page++ {
		rows, err := j.payments.ListPendingBefore(ctx, cutoff, afterID, j.batch)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("list pending payments: %w", err))
			break
		}
		pending += len(rows)
		for _, row := range rows {
			afterID = row.ID
			if row.OrderID == nil || *row.OrderID == "" {
				continue
			}
			checked++
			n, err := j.reconcile(ctx, creds, row)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("payment %d: %w", row.ID, err))
				continue
			}
			updated += n
		}
		if len(rows) < j.batch || ctx.Err() != nil {
			break
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"pending": pending,
		"checked": checked,
		"updated": updated,
		"failed":  len(multierr.Errors(errs)),
	}), "payment reconcile complete")
	return errs
}

func (j *paymentReconcileJob) reconcile(ctx context.Context, creds novaera.Credentials, row models.Payment) (int64, error) {
	raw, err := j.provider.GetTransaction(ctx, creds, *row.OrderID)
	if err != nil {
		return 0, err
	}
	tx, err := novaera.ParseTransaction(raw)
	if err != nil {
		return 0, fmt.Errorf("parse transaction: %w", err)
	}
	// only settled outcomes are pulled; intermediate provider states wait for the webhook
	if !enums.NormalizePaymentStatus(tx.Status).IsTerminal() {
		return 0, nil
	}

	res, err := j.applier.ApplyProviderStatus(ctx, payments.StatusUpdate{
		ProviderID: *row.OrderID,
		Status:     tx.Status,
		Source:     outbox.SourceCron,
	})
	if err != nil {
		return 0, err
	}
	return res.Updated, nil
}
