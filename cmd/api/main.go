package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vendaflow/pos-backend/api/routes"
	"github.com/vendaflow/pos-backend/internal/coupons"
	"github.com/vendaflow/pos-backend/internal/customers"
	"github.com/vendaflow/pos-backend/internal/finance"
	"github.com/vendaflow/pos-backend/internal/notifications"
	"github.com/vendaflow/pos-backend/internal/pricing"
	"github.com/vendaflow/pos-backend/internal/products"
	"github.com/vendaflow/pos-backend/internal/sales"
	"github.com/vendaflow/pos-backend/internal/tasks"
	"github.com/vendaflow/pos-backend/pkg/config"
	"github.com/vendaflow/pos-backend/pkg/db"
	"github.com/vendaflow/pos-backend/pkg/logger"
	"github.com/vendaflow/pos-backend/pkg/metrics"
	"github.com/vendaflow/pos-backend/pkg/migrate"
	"github.com/vendaflow/pos-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(promRegistry)

	gormDB := dbClient.DB()
	productsRepo := products.NewRepository(gormDB)
	customersRepo := customers.NewRepository(gormDB)
	couponsRepo := coupons.NewRepository(gormDB)
	salesRepo := sales.NewRepository(gormDB)
	financeRepo := finance.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	tasksRepo := tasks.NewRepository(gormDB)

	productsService, err := products.NewService(productsRepo, dbClient, logg)
	requireService(logg, "products", err)

	customersService, err := customers.NewService(customersRepo)
	requireService(logg, "customers", err)

	couponsService, err := coupons.NewService(couponsRepo, cfg.Loyalty, logg)
	requireService(logg, "coupons", err)

	financeService, err := finance.NewService(financeRepo, logg)
	requireService(logg, "finance", err)

	notificationsService, err := notifications.NewService(notificationsRepo, logg)
	requireService(logg, "notifications", err)

	tasksService, err := tasks.NewService(tasksRepo, logg)
	requireService(logg, "tasks", err)

	salesService, err := sales.NewService(sales.Deps{
		Repo:          salesRepo,
		Products:      productsRepo,
		Coupons:       couponsService,
		CouponRepo:    couponsRepo,
		Finance:       financeRepo,
		Notifications: notificationsService,
		Tx:            dbClient,
		Engine:        pricing.NewEngine(cfg.Pricing),
		Loyalty:       coupons.NewLoyaltyPolicy(cfg.Loyalty),
		Metrics:       settlementMetrics,
		Logger:        logg,
	})
	requireService(logg, "sales", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Products:      productsService,
			Customers:     customersService,
			Coupons:       couponsService,
			Sales:         salesService,
			Finance:       financeService,
			Notifications: notificationsService,
			Tasks:         tasksService,
		}, promRegistry),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
