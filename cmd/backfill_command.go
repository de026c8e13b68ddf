package main

import (
	"fmt"

	"faniverz-sync/internal/services"

	"github.com/spf13/cobra"
)

func newBackfillBirthDatesCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "backfill-birthdates",
		Short: "Fill in missing actor birth dates from the TMDB person endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext()
			defer stop()

			backfiller := services.NewBackfillService(a.actors, a.tmdb, a.cfg.TMDB.PageDelay, a.log)
			result, err := backfiller.BackfillBirthDates(ctx, limit)
			if err != nil {
				return err
			}

			fmt.Printf("\nBackfill summary\n")
			fmt.Printf("  updated: %d\n", result.Updated)
			fmt.Printf("  missing: %d\n", result.Missing)
			fmt.Printf("  failed:  %d\n", result.Failed)

			if result.Failed > 0 {
				return fmt.Errorf("%d person(s) failed to backfill", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum people to process (0 = unlimited)")

	return cmd
}
