package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeDucTai-11/MyStore-BE/internal/cron"
	"github.com/LeDucTai-11/MyStore-BE/internal/inventory"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/instance"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
	"github.com/LeDucTai-11/MyStore-BE/pkg/migrate"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/redis"
)

func main() {
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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	outboxRepo := outbox.NewRepository(conn)
	emitter := outbox.NewService(outboxRepo, logg)

	stock, err := inventory.NewLedger(inventory.NewRepository(conn), logg)
	requireResource(logg, "inventory ledger", err)
	tracker, err := vouchers.NewTracker(vouchers.NewRepository(conn), logg)
	requireResource(logg, "voucher tracker", err)
	notifier, err := notifications.NewRequester(emitter)
	requireResource(logg, "notification requester", err)

	ordersRepo := orders.NewRepository(conn)
	canceler, err := orders.NewCanceler(orders.CancelerParams{
		Repo:     ordersRepo,
		Stock:    stock,
		Vouchers: tracker,
		Outbox:   emitter,
		Notifier: notifier,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	requireResource(logg, "order canceler", err)

	expiryJob, err := cron.NewOrderExpiryJob(cron.OrderExpiryJobParams{
		Logger:    logg,
		DB:        dbClient,
		Reader:    ordersRepo,
		Canceler:  canceler,
		Deadline:  cfg.Orders.PaymentConfirmationDeadline(),
		BatchSize: cfg.Cron.ExpiryBatchSize,
		Metrics:   orderMetrics,
	})
	requireResource(logg, "order expiry job", err)

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	requireResource(logg, "outbox retention job", err)

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(conn),
		Retention:  cfg.Cron.NotificationRetentionDays,
	})
	requireResource(logg, "notification cleanup job", err)

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg), cfg.Cron.LockTTL)
	requireResource(logg, "cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, retentionJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Orders.ExpirySweepInterval,
	})
	requireResource(logg, "cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// lockKey scopes the lease per environment so staging and prod never contend.
func lockKey(cfg *config.Config) string {
	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	return cfg.Cron.LockKey + ":" + env
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to bootstrap "+resource, err)
	os.Exit(1)
}
