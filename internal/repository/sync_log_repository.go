package repository

import (
	"context"
	"errors"
	"time"

	"faniverz-sync/internal/database"
	"faniverz-sync/internal/models"

	"gorm.io/gorm"
)

type SyncLogRepository interface {
	Create(ctx context.Context, log *models.SyncLog) error
	Update(ctx context.Context, log *models.SyncLog) error
	GetLastRun(ctx context.Context, pipeline string) (*models.SyncLog, error)
}

type syncLogRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewSyncLogRepository(db *database.Database) SyncLogRepository {
	return &syncLogRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *syncLogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *syncLogRepository) Create(ctx context.Context, log *models.SyncLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(log).Error
}

func (r *syncLogRepository) Update(ctx context.Context, log *models.SyncLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Save(log).Error
}

func (r *syncLogRepository) GetLastRun(ctx context.Context, pipeline string) (*models.SyncLog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var log models.SyncLog
	err := r.db.WithContext(ctx).
		Where("pipeline = ?", pipeline).
		Order("started_at DESC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
