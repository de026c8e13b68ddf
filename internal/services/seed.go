package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"faniverz-sync/internal/config"
	"faniverz-sync/internal/models"
	"faniverz-sync/internal/repository"
	"faniverz-sync/internal/tmdb"
	"faniverz-sync/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// MetadataAPI is the slice of the TMDB client the pipelines consume.
type MetadataAPI interface {
	DiscoverByYear(ctx context.Context, year int) ([]tmdb.DiscoverResult, error)
	GetMovieDetail(ctx context.Context, tmdbID int) (*tmdb.MovieDetail, error)
	GetPersonDetail(ctx context.Context, tmdbPersonID int) (*tmdb.PersonDetail, error)
	PosterURL(path string) string
	BackdropURL(path string) string
	ProfileURL(path string) string
}

// ImageRelay is the slice of the storage service the pipelines consume.
type ImageRelay interface {
	Relay(ctx context.Context, sourceURL, bucket, key string) (string, bool)
	Configured() bool
}

// SeedOptions controls one seed run.
type SeedOptions struct {
	Years      []int
	Limit      int // cap on new movies per year, 0 = unlimited
	SkipImages bool
	DryRun     bool
}

// SyncResult accumulates the outcome of one run. It is returned to the
// caller rather than kept in package state so runs stay independent.
type SyncResult struct {
	Added   int
	Skipped int
	Failed  int
	Errors  []models.SyncError
}

// SeedService brings the database up to date with TMDB for a set of years.
type SeedService struct {
	movies   repository.MovieRepository
	actors   repository.ActorRepository
	credits  repository.CreditRepository
	syncLogs repository.SyncLogRepository
	api      MetadataAPI
	relay    ImageRelay
	logger   *logrus.Logger

	language       string
	concurrency    int
	castLimit      int
	itemDelay      time.Duration
	posterBucket   string
	backdropBucket string
	profileBucket  string

	// Concurrent movie tasks frequently share people (the same actor in two
	// movies of one year); singleflight collapses simultaneous upserts of
	// the same person into one relay + write.
	personGroup singleflight.Group
}

func NewSeedService(
	movies repository.MovieRepository,
	actors repository.ActorRepository,
	credits repository.CreditRepository,
	syncLogs repository.SyncLogRepository,
	api MetadataAPI,
	relay ImageRelay,
	cfg *config.Config,
	logger *logrus.Logger,
) *SeedService {
	return &SeedService{
		movies:         movies,
		actors:         actors,
		credits:        credits,
		syncLogs:       syncLogs,
		api:            api,
		relay:          relay,
		logger:         logger,
		language:       cfg.TMDB.Language,
		concurrency:    cfg.Sync.SeedConcurrency,
		castLimit:      cfg.Sync.CastLimit,
		itemDelay:      cfg.TMDB.PageDelay,
		posterBucket:   cfg.Storage.PosterBucket,
		backdropBucket: cfg.Storage.BackdropBucket,
		profileBucket:  cfg.Storage.ProfileBucket,
	}
}

// Run executes the full sync: discover candidates per year, diff against
// the store, process the new set through the worker pool, and bracket
// everything with a sync log row. Years are processed sequentially so the
// log output stays readable; movies within a year complete in any order.
func (s *SeedService) Run(ctx context.Context, opts SeedOptions) (*SyncResult, error) {
	result := &SyncResult{}

	var runLog *models.SyncLog
	if !opts.DryRun {
		runLog = models.NewSyncLog(models.PipelineSeed)
		if err := s.syncLogs.Create(ctx, runLog); err != nil {
			return nil, fmt.Errorf("failed to open sync log: %w", err)
		}
	}

	for _, year := range opts.Years {
		if err := s.runYear(ctx, year, opts, result); err != nil {
			if runLog != nil {
				result.Errors = append(result.Errors, models.SyncError{Message: err.Error()})
				runLog.Close(result.Added, result.Skipped, result.Failed+1, result.Errors)
				_ = s.syncLogs.Update(ctx, runLog)
			}
			return result, err
		}
	}

	if runLog != nil {
		runLog.Close(result.Added, result.Skipped, result.Failed, result.Errors)
		if err := s.syncLogs.Update(ctx, runLog); err != nil {
			s.logger.WithError(err).Error("Failed to close sync log")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"added":   result.Added,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Seed run completed")

	return result, nil
}

func (s *SeedService) runYear(ctx context.Context, year int, opts SeedOptions, result *SyncResult) error {
	s.logger.WithField("year", year).Info("Discovering movies")

	candidates, err := s.api.DiscoverByYear(ctx, year)
	if err != nil {
		return fmt.Errorf("discovery failed for year %d: %w", year, err)
	}

	ids := make([]int, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	existing, err := s.movies.ExistingTMDBIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("existence check failed for year %d: %w", year, err)
	}

	var newSet []tmdb.DiscoverResult
	for _, c := range candidates {
		if existing[c.ID] {
			result.Skipped++
			continue
		}
		newSet = append(newSet, c)
	}

	if opts.Limit > 0 && len(newSet) > opts.Limit {
		newSet = newSet[:opts.Limit]
	}

	s.logger.WithFields(logrus.Fields{
		"year":       year,
		"discovered": len(candidates),
		"new":        len(newSet),
	}).Info("Processing new movies")

	errs := utils.RunPool(ctx, newSet, s.concurrency, func(ctx context.Context, item tmdb.DiscoverResult) error {
		return s.processMovie(ctx, item, opts)
	})

	for i, procErr := range errs {
		if procErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.SyncError{
				TMDBID:  newSet[i].ID,
				Message: procErr.Error(),
			})
			s.logger.WithError(procErr).WithFields(logrus.Fields{
				"tmdb_id": newSet[i].ID,
				"title":   newSet[i].Title,
			}).Error("Failed to process movie")
			continue
		}
		result.Added++
	}

	return nil
}

// processMovie handles one new movie end to end: detail fetch, image relay,
// movie upsert, credit rebuild. Any error here fails only this movie.
func (s *SeedService) processMovie(ctx context.Context, item tmdb.DiscoverResult, opts SeedOptions) error {
	// Rate-limit courtesy toward TMDB, applied per item regardless of how
	// many pool workers are in flight.
	time.Sleep(s.itemDelay)

	detail, err := s.api.GetMovieDetail(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("detail fetch failed: %w", err)
	}

	category := ClassifyRelease(detail.ReleaseDate, time.Now().UTC())
	director := ExtractDirector(detail.Credits.Crew)

	posterURL := s.api.PosterURL(detail.PosterPath)
	backdropURL := s.api.BackdropURL(detail.BackdropPath)
	if !opts.SkipImages {
		// The internal row ID is unknown before the upsert, so objects are
		// keyed on the TMDB ID, which is just as stable.
		key := fmt.Sprintf("%d.jpg", detail.ID)
		posterURL, _ = s.relay.Relay(ctx, posterURL, s.posterBucket, key)
		backdropURL, _ = s.relay.Relay(ctx, backdropURL, s.backdropBucket, key)
	}

	trailerURL := tmdb.ExtractTrailerURL(detail.Videos.Results)

	genres := make([]string, 0, len(detail.Genres))
	for _, g := range detail.Genres {
		genres = append(genres, g.Name)
	}

	if opts.DryRun {
		s.logger.WithFields(logrus.Fields{
			"tmdb_id":  detail.ID,
			"title":    detail.Title,
			"category": category,
		}).Info("Dry run: would insert movie")
		return nil
	}

	now := time.Now().UTC()
	movie := &models.Movie{
		TMDBID:           detail.ID,
		Title:            detail.Title,
		Overview:         detail.Overview,
		ReleaseDate:      detail.ReleaseDate,
		Runtime:          intPtr(detail.Runtime),
		Genres:           genres,
		PosterURL:        strPtr(posterURL),
		BackdropURL:      strPtr(backdropURL),
		TrailerURL:       strPtr(trailerURL),
		Director:         strPtr(director),
		Category:         category,
		Language:         s.language,
		TMDBLastSyncedAt: &now,
	}

	if err := s.movies.Upsert(ctx, movie); err != nil {
		return fmt.Errorf("movie upsert failed: %w", err)
	}

	// Clear stale credits from any previous sync before rebuilding.
	if err := s.credits.DeleteByMovieID(ctx, movie.ID); err != nil {
		return fmt.Errorf("failed to clear credits: %w", err)
	}

	cast := detail.Credits.Cast
	if len(cast) > s.castLimit {
		cast = cast[:s.castLimit]
	}
	for _, member := range cast {
		actorID, err := s.upsertPerson(ctx, member.ID, member.Name, member.ProfilePath, member.Gender, models.PersonTypeActor, opts.SkipImages)
		if err != nil {
			s.logger.WithError(err).WithField("name", member.Name).Warn("Failed to upsert cast member, skipping")
			continue
		}

		credit := &models.MovieCast{
			MovieID:      movie.ID,
			ActorID:      actorID,
			RoleName:     strPtr(member.Character),
			DisplayOrder: member.Order,
			CreditType:   models.CreditTypeCast,
		}
		if err := s.credits.Create(ctx, credit); err != nil {
			s.logger.WithError(err).WithField("name", member.Name).Warn("Failed to create cast credit, skipping")
		}
	}

	for _, role := range ClassifyCrew(detail.Credits.Crew) {
		actorID, err := s.upsertPerson(ctx, role.Person.ID, role.Person.Name, role.Person.ProfilePath, role.Person.Gender, models.PersonTypeTechnician, opts.SkipImages)
		if err != nil {
			s.logger.WithError(err).WithField("name", role.Person.Name).Warn("Failed to upsert crew member, skipping")
			continue
		}

		roleOrder := role.RoleOrder
		credit := &models.MovieCast{
			MovieID:    movie.ID,
			ActorID:    actorID,
			RoleName:   strPtr(role.RoleName),
			CreditType: models.CreditTypeCrew,
			RoleOrder:  &roleOrder,
		}
		if err := s.credits.Create(ctx, credit); err != nil {
			s.logger.WithError(err).WithField("name", role.Person.Name).Warn("Failed to create crew credit, skipping")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tmdb_id": detail.ID,
		"title":   detail.Title,
	}).Info("Movie synced")

	return nil
}

// upsertPerson writes the sync-owned person fields (never birth date or
// tier rank) and returns the internal row ID. Simultaneous upserts of the
// same person from different movie tasks share a single write.
func (s *SeedService) upsertPerson(ctx context.Context, tmdbPersonID int, name, profilePath string, gender int, personType string, skipImages bool) (uint, error) {
	key := fmt.Sprintf("%d:%s", tmdbPersonID, personType)
	id, err, _ := s.personGroup.Do(key, func() (interface{}, error) {
		photoURL := s.api.ProfileURL(profilePath)
		if !skipImages {
			photoURL, _ = s.relay.Relay(ctx, photoURL, s.profileBucket, fmt.Sprintf("%d.jpg", tmdbPersonID))
		}

		actor := &models.Actor{
			TMDBPersonID: tmdbPersonID,
			Name:         name,
			PhotoURL:     strPtr(photoURL),
			PersonType:   personType,
			Gender:       intPtr(gender),
		}
		if err := s.actors.Upsert(ctx, actor); err != nil {
			return uint(0), err
		}
		return actor.ID, nil
	})
	if err != nil {
		return 0, err
	}
	return id.(uint), nil
}

// ClassifyRelease returns the release category at processing time: a date
// strictly after today is upcoming, today or earlier is theatrical. An
// unparseable or empty date falls back to theatrical.
func ClassifyRelease(releaseDate string, now time.Time) string {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(releaseDate))
	if err != nil {
		return models.CategoryTheatrical
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if parsed.After(today) {
		return models.CategoryUpcoming
	}
	return models.CategoryTheatrical
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
