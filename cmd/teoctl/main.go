package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "teoctl",
		Short:         "TEOmanager operations toolkit",
		Long:          "teoctl bundles the operational chores that do not belong in the request path: cache maintenance, admin bootstrap and data repair.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCacheCommand(),
		newEnsureAdminCommand(),
		newFixCategoriesCommand(),
		newSweepUploadsCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
