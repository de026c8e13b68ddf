package repository

import (
	"context"
	"time"

	"faniverz-sync/internal/database"
	"faniverz-sync/internal/models"
)

type CreditRepository interface {
	// DeleteByMovieID clears every credit row for a movie; the sync rebuilds
	// the full set afterwards so stale cast entries never linger.
	DeleteByMovieID(ctx context.Context, movieID uint) error
	Create(ctx context.Context, credit *models.MovieCast) error
	FindByMovieID(ctx context.Context, movieID uint) ([]models.MovieCast, error)
}

type creditRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewCreditRepository(db *database.Database) CreditRepository {
	return &creditRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *creditRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *creditRepository) DeleteByMovieID(ctx context.Context, movieID uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Delete(&models.MovieCast{}).Error
}

func (r *creditRepository) Create(ctx context.Context, credit *models.MovieCast) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *creditRepository) FindByMovieID(ctx context.Context, movieID uint) ([]models.MovieCast, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var credits []models.MovieCast
	err := r.db.WithContext(ctx).
		Where("movie_id = ?", movieID).
		Order("credit_type, display_order").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}
