package main

import (
	"fmt"
	"time"

	"faniverz-sync/internal/services"

	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var (
		years      []int
		limit      int
		skipImages bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Discover and ingest movies from TMDB for the given years",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			if len(years) == 0 {
				years = []int{time.Now().Year()}
			}

			if !skipImages && a.storage.Configured() {
				if err := a.storage.EnsureBuckets(ctx); err != nil {
					a.log.WithError(err).Warn("Failed to configure buckets, continuing")
				}
			}

			seeder := services.NewSeedService(a.movies, a.actors, a.credits, a.logs, a.tmdb, a.storage, a.cfg, a.log)
			result, err := seeder.Run(ctx, services.SeedOptions{
				Years:      years,
				Limit:      limit,
				SkipImages: skipImages,
				DryRun:     dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nSeed summary\n")
			fmt.Printf("  added:   %d\n", result.Added)
			fmt.Printf("  skipped: %d\n", result.Skipped)
			fmt.Printf("  failed:  %d\n", result.Failed)
			for _, syncErr := range result.Errors {
				fmt.Printf("  error: tmdb_id=%d %s\n", syncErr.TMDBID, syncErr.Message)
			}

			if result.Failed > 0 {
				return fmt.Errorf("%d movie(s) failed to sync", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&years, "year", nil, "Release year to sync (repeatable, defaults to the current year)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum new movies per year (0 = unlimited)")
	cmd.Flags().BoolVar(&skipImages, "skip-images", false, "Store CDN URLs instead of relaying images to the object store")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended writes without touching the database")

	return cmd
}
