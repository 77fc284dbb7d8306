package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/trackwise-backend/internal/cron"
	"github.com/angelmondragon/trackwise-backend/internal/leads"
	"github.com/angelmondragon/trackwise-backend/internal/payments"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	"github.com/angelmondragon/trackwise-backend/pkg/config"
	"github.com/angelmondragon/trackwise-backend/pkg/db"
	"github.com/angelmondragon/trackwise-backend/pkg/logger"
	"github.com/angelmondragon/trackwise-backend/pkg/metrics"
	"github.com/angelmondragon/trackwise-backend/pkg/migrate"
	"github.com/angelmondragon/trackwise-backend/pkg/novaera"
	"github.com/angelmondragon/trackwise-backend/pkg/outbox"
	"github.com/angelmondragon/trackwise-backend/pkg/redis"
	"github.com/angelmondragon/trackwise-backend/pkg/security"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	only := flag.String("jobs", "", "comma separated job names to run; empty runs all")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var lock cron.Lock = cron.NoopLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
	} else {
		logg.Warn(context.Background(), "redis not configured; cron runs unlocked")
	}

	sealer, err := security.NewSealer(cfg.Settings.EncryptionKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings sealer", err)
		os.Exit(1)
	}
	settingsService, err := settings.NewService(settings.ServiceParams{
		Repo:    settings.NewRepository(dbClient.DB()),
		DB:      dbClient,
		Sealer:  sealer,
		BaseURL: cfg.NovaEra.BaseURL,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)
	provider := novaera.NewClient(cfg.NovaEra, novaera.WithMetrics(paymentMetrics))
	paymentRepo := payments.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:               paymentRepo,
		Leads:              leads.NewRepository(dbClient.DB()),
		Settings:           settingsService,
		Provider:           provider,
		Outbox:             outbox.NewService(outboxRepo, logg),
		DB:                 dbClient,
		Logger:             logg,
		Metrics:            paymentMetrics,
		DefaultPostbackURL: cfg.App.BaseURL() + "/api/webhooks/novaera",
		ProductImage:       cfg.NovaEra.ProductImage,
		PixExpiresDays:     cfg.NovaEra.PixExpiresDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	reconcileJob, err := cron.NewPaymentReconcileJob(cron.PaymentReconcileJobParams{
		Logger:    logg,
		Payments:  paymentRepo,
		Provider:  provider,
		Applier:   paymentService,
		Settings:  settingsService,
		MinAge:    cfg.Reconcile.MinAge,
		BatchSize: cfg.Reconcile.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(reconcileJob, retentionJob).Only(splitJobs(*only)...)
	if err != nil {
		logg.Error(context.Background(), "invalid job selection", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"jobs":        registry.Names(),
	})

	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func splitJobs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
