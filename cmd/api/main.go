package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dinehub-mw/dinehub-backend/api/controllers"
	"github.com/dinehub-mw/dinehub-backend/api/routes"
	"github.com/dinehub-mw/dinehub-backend/internal/ledger"
	"github.com/dinehub-mw/dinehub-backend/internal/orders"
	"github.com/dinehub-mw/dinehub-backend/internal/payments"
	"github.com/dinehub-mw/dinehub-backend/pkg/config"
	"github.com/dinehub-mw/dinehub-backend/pkg/db"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
	"github.com/dinehub-mw/dinehub-backend/pkg/metrics"
	"github.com/dinehub-mw/dinehub-backend/pkg/migrate"
	"github.com/dinehub-mw/dinehub-backend/pkg/paychangu"
	"github.com/dinehub-mw/dinehub-backend/pkg/pubsub"
	"github.com/dinehub-mw/dinehub-backend/pkg/redis"
)

const webhookDedupeTTL = 24 * time.Hour

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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	gateway, err := paychangu.NewClient(cfg.PayChangu, logg, paymentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create paychangu client", err)
		os.Exit(1)
	}

	readyChecks := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var notifier payments.Notifier
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		notifier = payments.NewPubSubNotifier(pubsubClient, cfg.PubSub.PaymentEventsTopic)
		readyChecks["pubsub"] = pubsubClient
	} else {
		logg.Warn(context.Background(), "gcp project id not set, payment events will not be published")
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient, logg, paymentMetrics, cfg.Ledger.MaxRetries)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, ledgerService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		dbClient,
		gateway,
		notifier,
		logg,
		paymentMetrics,
		payments.Config{CallbackURL: cfg.PayChangu.CallbackURL},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	webhookGuard, err := payments.NewWebhookGuard(redisClient, webhookDedupeTTL, "paychangu")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Registry:        registry,
			ReadyChecks:     readyChecks,
			LedgerService:   ledgerService,
			OrdersService:   ordersService,
			PaymentsService: paymentsService,
			WebhookSecrets:  gateway,
			WebhookGuard:    webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
