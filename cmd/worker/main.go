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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/internal/email"
	"github.com/teomanager/teomanager-backend/internal/subscriptions"
	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db"
	pkgemail "github.com/teomanager/teomanager-backend/pkg/email"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/metrics"
	"github.com/teomanager/teomanager-backend/pkg/migrate"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

const metricsShutdownGrace = 5 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	jobMetrics := metrics.NewJobMetrics(registry)
	outboxMetrics := metrics.NewOutboxMetrics(registry)

	gormDB := dbClient.DB()
	outboxRepo := outbox.NewRepository(gormDB)
	mailer := outbox.NewService(outboxRepo, logg)

	renderer, err := email.NewRenderer()
	if err != nil {
		logg.Error(context.Background(), "failed to build email renderer", err)
		os.Exit(1)
	}

	sender, err := pkgemail.NewSendgridClient(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap sendgrid", err)
		os.Exit(1)
	}

	emailWorker, err := email.NewWorker(email.WorkerParams{
		DB:       dbClient,
		Outbox:   outboxRepo,
		DLQ:      outbox.NewDLQRepository(gormDB),
		Sender:   sender,
		Renderer: renderer,
		Config:   cfg.Outbox,
		Metrics:  outboxMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create email worker", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		DB:       dbClient,
		Repo:     subscriptions.NewRepository(gormDB),
		Accounts: accounts.NewRepository(gormDB),
		Counter:  catalog.NewRepository(gormDB),
		Mail:     mailer,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	sweeper := newExpirySweeper(subscriptionsService, cfg.Worker.SweepInterval, jobMetrics, logg)

	metricsServer := &http.Server{
		Addr: ":" + cfg.Worker.MetricsPort,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting worker")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return emailWorker.Run(groupCtx)
	})
	group.Go(func() error {
		return sweeper.Run(groupCtx)
	})
	group.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownGrace)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "worker shutting down gracefully")
}
