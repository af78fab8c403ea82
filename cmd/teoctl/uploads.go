package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teomanager/teomanager-backend/internal/catalog"
)

func newSweepUploadsCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sweep-uploads",
		Short: "Delete upload files no listing gallery references anymore",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tk, cleanup, err := newToolkit(ctx, toolkitOptions{needDB: true})
			if err != nil {
				return err
			}
			defer cleanup()

			urls, err := catalog.NewRepository(tk.db.DB()).ReferencedImageURLs(ctx)
			if err != nil {
				return fmt.Errorf("list referenced images: %w", err)
			}

			// Galleries store URLs; on disk we only have file names, so
			// match on the basename.
			referenced := make(map[string]struct{}, len(urls))
			for _, url := range urls {
				referenced[filepath.Base(url)] = struct{}{}
			}

			dir := tk.cfg.Uploads.Dir
			removed, kept := 0, 0
			err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if entry.IsDir() {
					return nil
				}
				if _, ok := referenced[entry.Name()]; ok {
					kept++
					return nil
				}
				if dryRun {
					fmt.Println("would remove", path)
					removed++
					return nil
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("remove %s: %w", path, err)
				}
				fmt.Println("removed", path)
				removed++
				return nil
			})
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Printf("uploads directory %s does not exist, nothing to sweep\n", dir)
					return nil
				}
				return err
			}

			fmt.Printf("swept %s: %d removed, %d kept\n", dir, removed, kept)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report orphan files without deleting them")
	return cmd
}
