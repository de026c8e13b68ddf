package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"faniverz-sync/internal/config"
	"faniverz-sync/internal/database"
	"faniverz-sync/internal/repository"
	"faniverz-sync/internal/services"
	"faniverz-sync/internal/tmdb"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "faniverz-sync",
		Short:         "TMDB synchronization pipelines for the Faniverz movie database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newMigrateImagesCommand())
	rootCmd.AddCommand(newBackfillBirthDatesCommand())

	return rootCmd
}

// app wires configuration, database and services for one command run.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *database.Database
	movies  repository.MovieRepository
	actors  repository.ActorRepository
	credits repository.CreditRepository
	logs    repository.SyncLogRepository
	tmdb    *tmdb.Client
	storage *services.StorageService
}

func newApp(requireStorage bool) (*app, error) {
	cfg := config.Load()
	log := setupLogger()

	if err := cfg.Validate(requireStorage); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage, err := services.NewStorageService(cfg.Storage, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		movies:  repository.NewMovieRepository(db),
		actors:  repository.NewActorRepository(db),
		credits: repository.NewCreditRepository(db),
		logs:    repository.NewSyncLogRepository(db),
		tmdb:    tmdb.NewClient(cfg.TMDB),
		storage: storage,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Errorf("Error closing database connection: %v", err)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so a long
// sync can be stopped cleanly; in-flight items finish, queued ones do not
// start.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
