package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/promolink/promolink-backend/api/controllers"
	"github.com/promolink/promolink-backend/api/routes"
	"github.com/promolink/promolink-backend/internal/notifications"
	"github.com/promolink/promolink-backend/internal/offers"
	"github.com/promolink/promolink-backend/internal/requests"
	"github.com/promolink/promolink-backend/internal/stores"
	"github.com/promolink/promolink-backend/internal/suppliers"
	"github.com/promolink/promolink-backend/pkg/config"
	"github.com/promolink/promolink-backend/pkg/db"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/metrics"
	"github.com/promolink/promolink-backend/pkg/migrate"
	"github.com/promolink/promolink-backend/pkg/outbox"
	"github.com/promolink/promolink-backend/pkg/realtime"
	"github.com/promolink/promolink-backend/pkg/redis"
)

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

	suppliersRepo := suppliers.NewRepository(dbClient.DB())
	storesRepo := stores.NewRepository(dbClient.DB())
	offersRepo := offers.NewRepository(dbClient.DB())
	notifRepo := notifications.NewRepository(dbClient.DB())
	requestsRepo := requests.NewRepository(dbClient.DB())

	offersService, err := offers.NewService(offersRepo, suppliersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	notifService, err := notifications.NewService(notifRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	requestsService, err := requests.NewService(
		requestsRepo,
		storesRepo,
		suppliersRepo,
		offersService,
		offersRepo,
		dbClient,
		outboxService,
		notifService,
		metrics.NewRequestMetrics(registry),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create requests service", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logg)
	bridge := realtime.NewBridge(hub, redisClient, cfg.Realtime.ChannelPrefix, logg)
	go func() {
		if err := bridge.Run(context.Background()); err != nil {
			logg.Error(context.Background(), "realtime bridge stopped", err)
		}
	}()

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
			Config:        cfg,
			Logger:        logg,
			Offers:        offersService,
			Requests:      requestsService,
			Notifications: notifService,
			Hub:           hub,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Metrics: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
