package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/teomanager/teomanager-backend/pkg/config"
	"github.com/teomanager/teomanager-backend/pkg/db"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/redis"
)

// toolkit holds the shared infrastructure handles a subcommand may need.
// Connections are established eagerly per flag so a cache command does
// not require a reachable database and vice versa.
type toolkit struct {
	cfg   *config.Config
	logg  *logger.Logger
	db    *db.Client
	redis *redis.Client
}

type toolkitOptions struct {
	needDB    bool
	needRedis bool
}

func newToolkit(ctx context.Context, opts toolkitOptions) (*toolkit, func(), error) {
	logg := logger.New(logger.Options{ServiceName: "teoctl"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "teoctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	tk := &toolkit{cfg: cfg, logg: logg}
	cleanup := func() {
		var err error
		if tk.redis != nil {
			err = multierr.Append(err, tk.redis.Close())
		}
		if tk.db != nil {
			err = multierr.Append(err, tk.db.Close())
		}
		if err != nil {
			logg.Error(context.Background(), "error closing connections", err)
		}
	}

	if opts.needDB {
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		tk.db = client
	}

	if opts.needRedis {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		tk.redis = client
	}

	return tk, cleanup, nil
}
