package services

import (
	"context"
	"fmt"
	"time"

	"faniverz-sync/internal/repository"

	"github.com/sirupsen/logrus"
)

// BackfillResult tallies one birth-date backfill pass.
type BackfillResult struct {
	Updated int
	Missing int // people TMDB has no birthday for
	Failed  int
}

// BackfillService fills in actor birth dates from the person endpoint. The
// seed pipeline deliberately never writes birth dates; this pass owns them.
type BackfillService struct {
	actors repository.ActorRepository
	api    MetadataAPI
	logger *logrus.Logger
	delay  time.Duration
}

func NewBackfillService(actors repository.ActorRepository, api MetadataAPI, delay time.Duration, logger *logrus.Logger) *BackfillService {
	return &BackfillService{
		actors: actors,
		api:    api,
		logger: logger,
		delay:  delay,
	}
}

// BackfillBirthDates processes up to limit people with no birth date yet,
// sequentially with a polite delay per request. A failed person is logged
// and skipped.
func (b *BackfillService) BackfillBirthDates(ctx context.Context, limit int) (*BackfillResult, error) {
	actors, err := b.actors.FindWithoutBirthDate(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actors: %w", err)
	}

	b.logger.WithField("count", len(actors)).Info("Backfilling birth dates")

	result := &BackfillResult{}
	for _, actor := range actors {
		time.Sleep(b.delay)

		detail, err := b.api.GetPersonDetail(ctx, actor.TMDBPersonID)
		if err != nil {
			result.Failed++
			b.logger.WithError(err).WithFields(logrus.Fields{
				"tmdb_person_id": actor.TMDBPersonID,
				"name":           actor.Name,
			}).Warn("Failed to fetch person, skipping")
			continue
		}

		if detail.Birthday == "" {
			result.Missing++
			continue
		}

		if err := b.actors.UpdateBirthDate(ctx, actor.ID, detail.Birthday); err != nil {
			result.Failed++
			b.logger.WithError(err).WithField("name", actor.Name).Warn("Failed to update birth date, skipping")
			continue
		}
		result.Updated++
	}

	b.logger.WithFields(logrus.Fields{
		"updated": result.Updated,
		"missing": result.Missing,
		"failed":  result.Failed,
	}).Info("Birth-date backfill completed")

	return result, nil
}
