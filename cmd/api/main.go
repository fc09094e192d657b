package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saborlabs/cardapio-backend/api/routes"
	"github.com/saborlabs/cardapio-backend/internal/addresses"
	"github.com/saborlabs/cardapio-backend/internal/auth"
	"github.com/saborlabs/cardapio-backend/internal/cart"
	"github.com/saborlabs/cardapio-backend/internal/catalog"
	checkoutsvc "github.com/saborlabs/cardapio-backend/internal/checkout"
	"github.com/saborlabs/cardapio-backend/internal/coupons"
	"github.com/saborlabs/cardapio-backend/internal/orders"
	"github.com/saborlabs/cardapio-backend/internal/points"
	"github.com/saborlabs/cardapio-backend/internal/realtime"
	"github.com/saborlabs/cardapio-backend/internal/tenants"
	"github.com/saborlabs/cardapio-backend/internal/users"
	"github.com/saborlabs/cardapio-backend/pkg/config"
	"github.com/saborlabs/cardapio-backend/pkg/db"
	"github.com/saborlabs/cardapio-backend/pkg/env"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
	"github.com/saborlabs/cardapio-backend/pkg/metrics"
	"github.com/saborlabs/cardapio-backend/pkg/migrate"
	"github.com/saborlabs/cardapio-backend/pkg/redis"
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

	gormDB := dbClient.DB()

	authService, err := auth.NewService(
		users.NewRepository(gormDB),
		redisClient,
		cfg.JWT,
		cfg.Password,
		cfg.AuthRateLimit,
	)
	exitOnError(logg, "auth service", err)

	tenantsService, err := tenants.NewService(tenants.NewRepository(gormDB), cfg.Delivery, cfg.Loyalty)
	exitOnError(logg, "tenants service", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	exitOnError(logg, "catalog service", err)

	couponsRepo := coupons.NewRepository(gormDB)
	couponValidator, err := coupons.NewValidator(couponsRepo)
	exitOnError(logg, "coupon validator", err)
	couponsService, err := coupons.NewService(couponsRepo)
	exitOnError(logg, "coupons service", err)

	addressesService, err := addresses.NewService(dbClient, addresses.NewRepository(gormDB))
	exitOnError(logg, "addresses service", err)

	pointsService, err := points.NewService(points.NewRepository(gormDB))
	exitOnError(logg, "points service", err)

	publisher, err := realtime.NewPublisher(redisClient)
	exitOnError(logg, "realtime publisher", err)

	ordersRepo := orders.NewRepository(gormDB)
	ordersService, err := orders.NewService(ordersRepo, publisher)
	exitOnError(logg, "orders service", err)

	cartSessions, err := cart.NewService(redisClient, cfg.Delivery.CartSessionTTL())
	exitOnError(logg, "cart sessions", err)

	wizardSessions, err := checkoutsvc.NewSessions(redisClient, cfg.Delivery.CartSessionTTL())
	exitOnError(logg, "checkout sessions", err)

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	commitService, err := checkoutsvc.NewService(
		dbClient,
		ordersRepo,
		couponsRepo,
		pointsService,
		cartSessions,
		publisher,
		orderMetrics,
	)
	exitOnError(logg, "checkout service", err)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Auth:         authService,
			Tenants:      tenantsService,
			Catalog:      catalogService,
			Coupons:      couponsService,
			Validator:    couponValidator,
			Addresses:    addressesService,
			Points:       pointsService,
			Orders:       ordersService,
			Carts:        cartSessions,
			Wizards:      wizardSessions,
			Commit:       commitService,
			OrderMetrics: orderMetrics,
			Gatherer:     registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to wire "+what, err)
	os.Exit(1)
}
