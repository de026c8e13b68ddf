package services

import (
	"context"
	"fmt"
	"strings"

	"faniverz-sync/internal/config"
	"faniverz-sync/internal/models"
	"faniverz-sync/internal/repository"
	"faniverz-sync/internal/utils"

	"github.com/sirupsen/logrus"
)

// DefaultCDNHost identifies image URLs still served from the TMDB CDN.
const DefaultCDNHost = "image.tmdb.org"

// MigrationResult tallies one migration sweep.
type MigrationResult struct {
	Migrated int
	Skipped  int // fields already pointing at the object store
	Failed   int
	Errors   []models.SyncError
}

// migrationItem is one image field to re-host.
type migrationItem struct {
	table     string
	rowID     uint
	column    string
	sourceURL string
	bucket    string
	key       string
}

// MigrationService sweeps rows whose image fields still point at the TMDB
// CDN and relays them into the object store in place.
type MigrationService struct {
	movies   repository.MovieRepository
	actors   repository.ActorRepository
	syncLogs repository.SyncLogRepository
	relay    ImageRelay
	logger   *logrus.Logger

	cdnHost        string
	concurrency    int
	posterBucket   string
	backdropBucket string
	profileBucket  string
}

func NewMigrationService(
	movies repository.MovieRepository,
	actors repository.ActorRepository,
	syncLogs repository.SyncLogRepository,
	relay ImageRelay,
	cfg *config.Config,
	logger *logrus.Logger,
) *MigrationService {
	return &MigrationService{
		movies:         movies,
		actors:         actors,
		syncLogs:       syncLogs,
		relay:          relay,
		logger:         logger,
		cdnHost:        DefaultCDNHost,
		concurrency:    cfg.Sync.MigrateConcurrency,
		posterBucket:   cfg.Storage.PosterBucket,
		backdropBucket: cfg.Storage.BackdropBucket,
		profileBucket:  cfg.Storage.ProfileBucket,
	}
}

// Run performs the full sweep. Unlike the seed pipeline, the object store is
// the whole point here, so an unconfigured relay is an error.
func (m *MigrationService) Run(ctx context.Context) (*MigrationResult, error) {
	if !m.relay.Configured() {
		return nil, fmt.Errorf("object store is not configured, nothing to migrate into")
	}

	result := &MigrationResult{}

	runLog := models.NewSyncLog(models.PipelineMigrateImages)
	if err := m.syncLogs.Create(ctx, runLog); err != nil {
		return nil, fmt.Errorf("failed to open sync log: %w", err)
	}

	items, err := m.collectItems(ctx, result)
	if err != nil {
		runLog.Close(0, 0, 1, []models.SyncError{{Message: err.Error()}})
		_ = m.syncLogs.Update(ctx, runLog)
		return nil, err
	}

	m.logger.WithField("fields", len(items)).Info("Migrating CDN images to object store")

	errs := utils.RunPool(ctx, items, m.concurrency, m.migrateItem)
	for i, itemErr := range errs {
		if itemErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.SyncError{
				Message: fmt.Sprintf("%s id=%d %s: %s", items[i].table, items[i].rowID, items[i].column, itemErr.Error()),
			})
			m.logger.WithError(itemErr).WithFields(logrus.Fields{
				"table":  items[i].table,
				"row_id": items[i].rowID,
				"column": items[i].column,
			}).Error("Failed to migrate image")
			continue
		}
		result.Migrated++
	}

	runLog.Close(result.Migrated, result.Skipped, result.Failed, result.Errors)
	if err := m.syncLogs.Update(ctx, runLog); err != nil {
		m.logger.WithError(err).Error("Failed to close sync log")
	}

	m.logger.WithFields(logrus.Fields{
		"migrated": result.Migrated,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("Image migration completed")

	return result, nil
}

// collectItems queries both tables for CDN-hosted fields. Fields of matched
// rows that already live in the object store count as skipped.
func (m *MigrationService) collectItems(ctx context.Context, result *MigrationResult) ([]migrationItem, error) {
	var items []migrationItem

	movies, err := m.movies.FindWithCDNImages(ctx, m.cdnHost)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	for _, movie := range movies {
		key := fmt.Sprintf("%d.jpg", movie.ID)
		items = m.appendField(items, result, migrationItem{
			table: "movies", rowID: movie.ID, column: "poster_url",
			bucket: m.posterBucket, key: key,
		}, movie.PosterURL)
		items = m.appendField(items, result, migrationItem{
			table: "movies", rowID: movie.ID, column: "backdrop_url",
			bucket: m.backdropBucket, key: key,
		}, movie.BackdropURL)
	}

	actors, err := m.actors.FindWithCDNPhotos(ctx, m.cdnHost)
	if err != nil {
		return nil, fmt.Errorf("failed to query actors: %w", err)
	}
	for _, actor := range actors {
		items = m.appendField(items, result, migrationItem{
			table: "actors", rowID: actor.ID, column: "photo_url",
			bucket: m.profileBucket, key: fmt.Sprintf("%d.jpg", actor.ID),
		}, actor.PhotoURL)
	}

	return items, nil
}

func (m *MigrationService) appendField(items []migrationItem, result *MigrationResult, item migrationItem, url *string) []migrationItem {
	if url == nil || *url == "" {
		return items
	}
	if !strings.Contains(*url, m.cdnHost) {
		result.Skipped++
		return items
	}
	item.sourceURL = *url
	return append(items, item)
}

func (m *MigrationService) migrateItem(ctx context.Context, item migrationItem) error {
	newURL, relayed := m.relay.Relay(ctx, item.sourceURL, item.bucket, item.key)
	if !relayed {
		return fmt.Errorf("relay failed for %s", item.sourceURL)
	}

	var err error
	switch item.table {
	case "movies":
		err = m.movies.UpdateImageURL(ctx, item.rowID, item.column, newURL)
	case "actors":
		err = m.actors.UpdatePhotoURL(ctx, item.rowID, newURL)
	default:
		err = fmt.Errorf("unknown table %s", item.table)
	}
	if err != nil {
		return fmt.Errorf("row update failed: %w", err)
	}
	return nil
}
