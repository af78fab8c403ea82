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

	"github.com/teomanager/teomanager-backend/api/routes"
	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/internal/auth"
	"github.com/teomanager/teomanager-backend/internal/cart"
	"github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/internal/checkout"
	"github.com/teomanager/teomanager-backend/internal/dashboard"
	"github.com/teomanager/teomanager-backend/internal/landing"
	"github.com/teomanager/teomanager-backend/internal/messages"
	"github.com/teomanager/teomanager-backend/internal/orders"
	"github.com/teomanager/teomanager-backend/internal/subscriptions"
	"github.com/teomanager/teomanager-backend/pkg/auth/session"
	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/migrate"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
	"github.com/teomanager/teomanager-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	mailer := outbox.NewService(outbox.NewRepository(gormDB), logg)
	accountsRepo := accounts.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)

	accountsService, err := accounts.NewService(accounts.ServiceParams{
		DB:             dbClient,
		Repo:           accountsRepo,
		Mail:           mailer,
		Resets:         redisClient,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	if cfg.Bootstrap.AdminPassword != "" {
		if err := accountsService.EnsureDefaultAdmin(context.Background(), cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			logg.Error(context.Background(), "failed to ensure default admin", err)
			os.Exit(1)
		}
	}

	authService, err := auth.NewService(auth.ServiceParams{
		AccountRepo:    accountsRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		DB:       dbClient,
		Repo:     subscriptions.NewRepository(gormDB),
		Accounts: accountsRepo,
		Counter:  catalogRepo,
		Mail:     mailer,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		DB:          dbClient,
		Repo:        catalogRepo,
		Limits:      subscriptionsService,
		Cache:       redisClient,
		CategoryTTL: cfg.Cache.CategorySummaryTTL,
		Uploads:     cfg.Uploads,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:    redisClient,
		Listings: catalogRepo,
		TTL:      cfg.Cart.TTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo:   dashboard.NewRepository(gormDB),
		Orders: ordersRepo,
		Cache:  redisClient,
		Config: cfg.Cache,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		DB:         dbClient,
		Repo:       ordersRepo,
		Accounts:   accountsRepo,
		Mail:       mailer,
		Dashboards: dashboardService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		DB:         dbClient,
		Carts:      cartService,
		Orders:     ordersRepo,
		Listings:   catalogRepo,
		Accounts:   accountsRepo,
		Mail:       mailer,
		Dashboards: dashboardService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	messagesService, err := messages.NewService(messages.ServiceParams{
		DB:       dbClient,
		Repo:     messages.NewRepository(gormDB),
		Orders:   ordersRepo,
		Accounts: accountsRepo,
		Mail:     mailer,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}

	landingService, err := landing.NewService(landing.ServiceParams{
		Repo:     landing.NewRepository(gormDB),
		Limits:   subscriptionsService,
		Plans:    subscriptionsService,
		Accounts: accountsRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create landing service", err)
		os.Exit(1)
	}

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
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DBPinger:      dbClient,
			RedisClient:   redisClient,
			Sessions:      sessionManager,
			Accounts:      accountsService,
			Auth:          authService,
			Subscriptions: subscriptionsService,
			Catalog:       catalogService,
			Cart:          cartService,
			Checkout:      checkoutService,
			Orders:        ordersService,
			Messages:      messagesService,
			Landing:       landingService,
			Dashboard:     dashboardService,
		}),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
