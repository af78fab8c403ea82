package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teomanager/teomanager-backend/internal/catalog"
)

func newFixCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fix-categories",
		Short: "Fold category labels differing only by case or whitespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, cleanup, err := newToolkit(ctx, toolkitOptions{needDB: true, needRedis: true})
			if err != nil {
				return err
			}
			defer cleanup()

			fixes, err := catalog.NewRepository(tk.db.DB()).NormalizeCategories(ctx)
			if err != nil {
				return fmt.Errorf("normalize categories: %w", err)
			}

			if len(fixes) == 0 {
				fmt.Println("categories already normalized")
				return nil
			}

			for _, fix := range fixes {
				fmt.Printf("%q -> %q (%d rows)\n", fix.From, fix.To, fix.Rows)
			}

			// Stale rollups would keep serving the retired spellings.
			if err := tk.redis.Del(ctx, tk.redis.CategorySummaryKey()); err != nil {
				return fmt.Errorf("drop category summary: %w", err)
			}

			fmt.Printf("rewrote %d category labels\n", len(fixes))
			return nil
		},
	}
}
