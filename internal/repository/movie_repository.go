package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faniverz-sync/internal/database"
	"faniverz-sync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository interface {
	// Upsert inserts the movie or, when a row with the same TMDB ID exists,
	// updates the pipeline-owned columns only. Manual fields survive.
	Upsert(ctx context.Context, movie *models.Movie) error
	FindByTMDBID(ctx context.Context, tmdbID int) (*models.Movie, error)
	// ExistingTMDBIDs reports which of the given TMDB IDs are already stored.
	ExistingTMDBIDs(ctx context.Context, tmdbIDs []int) (map[int]bool, error)

	// Image migration support
	FindWithCDNImages(ctx context.Context, cdnHost string) ([]models.Movie, error)
	UpdateImageURL(ctx context.Context, id uint, column, url string) error
}

type movieRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewMovieRepository(db *database.Database) MovieRepository {
	return &movieRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *movieRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *movieRepository) Upsert(ctx context.Context, movie *models.Movie) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_id"}},
		DoUpdates: clause.AssignmentColumns(movie.SyncedColumns()),
	}).Create(movie).Error
	if err != nil {
		return err
	}

	// On conflict-update the insert does not report the existing primary key,
	// so resolve it for callers that attach credits next.
	if movie.ID == 0 {
		existing, err := r.FindByTMDBID(ctx, movie.TMDBID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("movie with tmdb_id %d missing after upsert", movie.TMDBID)
		}
		movie.ID = existing.ID
	}
	return nil
}

func (r *movieRepository) FindByTMDBID(ctx context.Context, tmdbID int) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.db.WithContext(ctx).Where("tmdb_id = ?", tmdbID).First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) ExistingTMDBIDs(ctx context.Context, tmdbIDs []int) (map[int]bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	existing := make(map[int]bool, len(tmdbIDs))
	if len(tmdbIDs) == 0 {
		return existing, nil
	}

	var found []int
	err := r.db.WithContext(ctx).Model(&models.Movie{}).
		Where("tmdb_id IN ?", tmdbIDs).
		Pluck("tmdb_id", &found).Error
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *movieRepository) FindWithCDNImages(ctx context.Context, cdnHost string) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	pattern := "%" + cdnHost + "%"
	var movies []models.Movie
	err := r.db.WithContext(ctx).
		Where("poster_url LIKE ? OR backdrop_url LIKE ?", pattern, pattern).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

// movieImageColumns guards UpdateImageURL against arbitrary column names.
var movieImageColumns = map[string]bool{
	"poster_url":   true,
	"backdrop_url": true,
}

func (r *movieRepository) UpdateImageURL(ctx context.Context, id uint, column, url string) error {
	if !movieImageColumns[column] {
		return fmt.Errorf("invalid movie image column: %s", column)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Model(&models.Movie{}).
		Where("id = ?", id).
		Update(column, url).Error
}
