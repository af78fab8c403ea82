package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/internal/catalog"
	"github.com/teomanager/teomanager-backend/internal/dashboard"
	"github.com/teomanager/teomanager-backend/internal/orders"
	"github.com/teomanager/teomanager-backend/internal/subscriptions"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the redis caches",
	}
	cmd.AddCommand(newCacheClearCommand(), newCacheWarmCommand())
	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached dashboard and category snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch scope {
			case "admin", "company", "categories", "all":
			default:
				return fmt.Errorf("unknown scope %q (want admin, company, categories or all)", scope)
			}

			ctx := cmd.Context()
			tk, cleanup, err := newToolkit(ctx, toolkitOptions{needRedis: true})
			if err != nil {
				return err
			}
			defer cleanup()

			cleared := int64(0)
			if scope == "admin" || scope == "all" {
				if err := tk.redis.Del(ctx, tk.redis.AdminDashboardKey()); err != nil {
					return fmt.Errorf("clear admin dashboard: %w", err)
				}
				cleared++
			}
			if scope == "categories" || scope == "all" {
				if err := tk.redis.Del(ctx, tk.redis.CategorySummaryKey()); err != nil {
					return fmt.Errorf("clear category summary: %w", err)
				}
				cleared++
			}
			if scope == "company" || scope == "all" {
				removed, err := tk.redis.DelPattern(ctx, tk.redis.CompanyDashboardPattern())
				if err != nil {
					return fmt.Errorf("clear company dashboards: %w", err)
				}
				cleared += removed
			}
			fmt.Printf("cleared %d cache entries (scope %s)\n", cleared, scope)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "all", "which caches to drop: admin, company, categories or all")
	return cmd
}

func newCacheWarmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Recompute the admin dashboard and category summary caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, cleanup, err := newToolkit(ctx, toolkitOptions{needDB: true, needRedis: true})
			if err != nil {
				return err
			}
			defer cleanup()

			gormDB := tk.db.DB()
			catalogRepo := catalog.NewRepository(gormDB)
			mailer := outbox.NewService(outbox.NewRepository(gormDB), tk.logg)

			subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
				DB:       tk.db,
				Repo:     subscriptions.NewRepository(gormDB),
				Accounts: accounts.NewRepository(gormDB),
				Counter:  catalogRepo,
				Mail:     mailer,
				Logger:   tk.logg,
			})
			if err != nil {
				return err
			}

			catalogService, err := catalog.NewService(catalog.ServiceParams{
				DB:          tk.db,
				Repo:        catalogRepo,
				Limits:      subscriptionsService,
				Cache:       tk.redis,
				CategoryTTL: tk.cfg.Cache.CategorySummaryTTL,
				Uploads:     tk.cfg.Uploads,
				Logger:      tk.logg,
			})
			if err != nil {
				return err
			}

			dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
				Repo:   dashboard.NewRepository(gormDB),
				Orders: orders.NewRepository(gormDB),
				Cache:  tk.redis,
				Config: tk.cfg.Cache,
				Logger: tk.logg,
			})
			if err != nil {
				return err
			}

			if _, err := dashboardService.AdminMetrics(ctx, true); err != nil {
				return fmt.Errorf("warm admin dashboard: %w", err)
			}

			// The category summary has no force path, so drop the key first.
			if err := tk.redis.Del(ctx, tk.redis.CategorySummaryKey()); err != nil {
				return fmt.Errorf("drop category summary: %w", err)
			}
			if _, err := catalogService.Categories(ctx); err != nil {
				return fmt.Errorf("warm category summary: %w", err)
			}

			fmt.Println("warmed admin dashboard and category summary")
			return nil
		},
	}
}
