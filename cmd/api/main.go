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

	"github.com/LeDucTai-11/MyStore-BE/api/routes"
	"github.com/LeDucTai-11/MyStore-BE/internal/billing"
	"github.com/LeDucTai-11/MyStore-BE/internal/inventory"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/orderrequests"
	"github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/payments"
	"github.com/LeDucTai-11/MyStore-BE/internal/push"
	"github.com/LeDucTai-11/MyStore-BE/internal/shipping"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	"github.com/LeDucTai-11/MyStore-BE/pkg/metrics"
	"github.com/LeDucTai-11/MyStore-BE/pkg/migrate"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/redis"
	"github.com/LeDucTai-11/MyStore-BE/pkg/vnpay"
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

	gateway, err := vnpay.NewClient(cfg.VNPay)
	requireResource(logg, "vnpay client", err)

	conn := dbClient.DB()
	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	publisher := push.NewPublisher(redisClient, cfg.Push, logg)

	stock, err := inventory.NewLedger(inventory.NewRepository(conn), logg)
	requireResource(logg, "inventory ledger", err)
	voucherRepo := vouchers.NewRepository(conn)
	tracker, err := vouchers.NewTracker(voucherRepo, logg)
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
	lifecycle, err := orders.NewLifecycle(ordersRepo, emitter, orderMetrics, logg)
	requireResource(logg, "order lifecycle", err)

	engine, err := shipping.NewEngine(shipping.EngineParams{
		Repo:     shipping.NewRepository(conn),
		Tx:       dbClient,
		Canceler: canceler,
		Outbox:   emitter,
		Notifier: notifier,
		Push:     publisher,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	requireResource(logg, "shipping engine", err)

	bills, err := billing.NewService(billing.ServiceParams{
		Repo:   billing.NewRepository(conn),
		Outbox: emitter,
		Logger: logg,
	})
	requireResource(logg, "billing service", err)

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:         payments.NewRepository(conn),
		Tx:           dbClient,
		Gateway:      gateway,
		Lifecycle:    lifecycle,
		Bills:        bills,
		Shipping:     engine,
		Notifier:     notifier,
		Push:         publisher,
		QueryTimeout: cfg.VNPay.QueryTimeout,
		Logger:       logg,
	})
	requireResource(logg, "payments service", err)

	workflow, err := orderrequests.NewWorkflow(orderrequests.WorkflowParams{
		Repo:      orderrequests.NewRepository(conn),
		Tx:        dbClient,
		Lifecycle: lifecycle,
		Canceler:  canceler,
		Bills:     bills,
		Shipping:  engine,
		Notifier:  notifier,
		Push:      publisher,
		Outbox:    emitter,
		Config:    cfg.Orders,
		Logger:    logg,
	})
	requireResource(logg, "order request workflow", err)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Tx:       dbClient,
		Stock:    stock,
		Vouchers: tracker,
		Requests: workflow,
		Shipping: engine,
		Bills:    bills,
		Payments: paymentsSvc,
		Push:     publisher,
		Outbox:   emitter,
		Notifier: notifier,
		Config:   cfg.Orders,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	requireResource(logg, "orders service", err)

	voucherSvc, err := vouchers.NewService(voucherRepo, logg)
	requireResource(logg, "vouchers service", err)
	notificationsSvc, err := notifications.NewService(notifications.NewRepository(conn))
	requireResource(logg, "notifications service", err)

	hub := push.NewHub(logg)
	relay, err := push.NewRelay(redisClient, hub, cfg.Push, logg)
	requireResource(logg, "push relay", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "push relay stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:            dbClient,
			Redis:         redisClient,
			Metrics:       promhttp.Handler(),
			Orders:        ordersSvc,
			Payments:      paymentsSvc,
			Requests:      workflow,
			Shipping:      engine,
			Vouchers:      voucherSvc,
			Bills:         bills,
			Notifications: notificationsSvc,
			Push:          hub,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to bootstrap "+resource, err)
	os.Exit(1)
}
