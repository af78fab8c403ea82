package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teomanager/teomanager-backend/internal/accounts"
	"github.com/teomanager/teomanager-backend/pkg/outbox"
)

func newEnsureAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-admin",
		Short: "Create the bootstrap admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, cleanup, err := newToolkit(ctx, toolkitOptions{needDB: true, needRedis: true})
			if err != nil {
				return err
			}
			defer cleanup()

			if tk.cfg.Bootstrap.AdminPassword == "" {
				return errors.New("TEO_BOOTSTRAP_ADMIN_PASSWORD is not set")
			}

			gormDB := tk.db.DB()
			accountsService, err := accounts.NewService(accounts.ServiceParams{
				DB:             tk.db,
				Repo:           accounts.NewRepository(gormDB),
				Mail:           outbox.NewService(outbox.NewRepository(gormDB), tk.logg),
				Resets:         tk.redis,
				PasswordConfig: tk.cfg.Password,
				Logger:         tk.logg,
			})
			if err != nil {
				return err
			}

			if err := accountsService.EnsureDefaultAdmin(ctx, tk.cfg.Bootstrap.AdminEmail, tk.cfg.Bootstrap.AdminPassword); err != nil {
				return fmt.Errorf("ensure admin: %w", err)
			}

			fmt.Printf("admin account %s is in place\n", tk.cfg.Bootstrap.AdminEmail)
			return nil
		},
	}
}
