package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/trackwise-backend/api/routes"
	"github.com/angelmondragon/trackwise-backend/internal/auth"
	"github.com/angelmondragon/trackwise-backend/internal/leads"
	"github.com/angelmondragon/trackwise-backend/internal/orders"
	"github.com/angelmondragon/trackwise-backend/internal/payments"
	"github.com/angelmondragon/trackwise-backend/internal/settings"
	"github.com/angelmondragon/trackwise-backend/internal/stats"
	"github.com/angelmondragon/trackwise-backend/internal/users"
	novaerawebhook "github.com/angelmondragon/trackwise-backend/internal/webhooks/novaera"
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

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured; webhook dedupe and login rate limiting disabled")
	}

	userRepo := users.NewRepository(dbClient.DB())
	if _, err := users.EnsureAdmin(context.Background(), userRepo, cfg.Admin, cfg.Password, logg); err != nil {
		logg.Error(context.Background(), "failed to seed admin user", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	sealer, err := security.NewSealer(cfg.Settings.EncryptionKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings sealer", err)
		os.Exit(1)
	}
	if sealer == nil {
		logg.Warn(context.Background(), "settings encryption key not set; provider secrets cannot be saved")
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
	if _, err := settingsService.Reload(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to load provider settings", err)
		os.Exit(1)
	}

	paymentMetrics := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	leadRepo := leads.NewRepository(dbClient.DB())
	leadService, err := leads.NewService(leads.ServiceParams{
		Repo:         leadRepo,
		Logger:       logg,
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create lead service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:               payments.NewRepository(dbClient.DB()),
		Leads:              leadRepo,
		Settings:           settingsService,
		Provider:           novaera.NewClient(cfg.NovaEra, novaera.WithMetrics(paymentMetrics)),
		Outbox:             outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
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

	var dedupeStore redis.IdempotencyStore
	if redisClient != nil {
		dedupeStore = redisClient
	}
	guard, err := novaerawebhook.NewIdempotencyGuard(dedupeStore, cfg.NovaEra.WebhookDedupe)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}
	webhookService, err := novaerawebhook.NewService(novaerawebhook.ServiceParams{
		Payments: paymentService,
		Guard:    guard,
		Logger:   logg,
		Metrics:  paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(stats.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"version": cfg.App.Version,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.Handler(),
			authService,
			leadService,
			paymentService,
			webhookService,
			settingsService,
			ordersService,
			statsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
