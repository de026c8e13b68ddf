package main

import (
	"fmt"

	"faniverz-sync/internal/services"

	"github.com/spf13/cobra"
)

func newMigrateImagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-images",
		Short: "Re-host images still pointing at the TMDB CDN into the object store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			if err := a.storage.EnsureBuckets(ctx); err != nil {
				return fmt.Errorf("failed to configure buckets: %w", err)
			}

			migrator := services.NewMigrationService(a.movies, a.actors, a.logs, a.storage, a.cfg, a.log)
			result, err := migrator.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("\nMigration summary\n")
			fmt.Printf("  migrated: %d\n", result.Migrated)
			fmt.Printf("  skipped:  %d\n", result.Skipped)
			fmt.Printf("  failed:   %d\n", result.Failed)
			for _, syncErr := range result.Errors {
				fmt.Printf("  error: %s\n", syncErr.Message)
			}

			if result.Failed > 0 {
				return fmt.Errorf("%d image(s) failed to migrate", result.Failed)
			}
			return nil
		},
	}
}
