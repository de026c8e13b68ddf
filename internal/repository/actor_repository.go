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

type ActorRepository interface {
	// Upsert inserts or updates a person keyed on the TMDB person ID,
	// touching only the sync-owned columns (birth date and tier rank are
	// owned by other processes) and fills in the internal primary key.
	Upsert(ctx context.Context, actor *models.Actor) error
	FindByTMDBPersonID(ctx context.Context, tmdbPersonID int) (*models.Actor, error)
	// FindWithoutBirthDate lists people still waiting on the birth-date backfill.
	FindWithoutBirthDate(ctx context.Context, limit int) ([]models.Actor, error)
	UpdateBirthDate(ctx context.Context, id uint, birthDate string) error

	// Image migration support
	FindWithCDNPhotos(ctx context.Context, cdnHost string) ([]models.Actor, error)
	UpdatePhotoURL(ctx context.Context, id uint, url string) error
}

type actorRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewActorRepository(db *database.Database) ActorRepository {
	return &actorRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *actorRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *actorRepository) Upsert(ctx context.Context, actor *models.Actor) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tmdb_person_id"}},
		DoUpdates: clause.AssignmentColumns(actor.SyncedColumns()),
	}).Create(actor).Error
	if err != nil {
		return err
	}

	if actor.ID == 0 {
		existing, err := r.FindByTMDBPersonID(ctx, actor.TMDBPersonID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("actor with tmdb_person_id %d missing after upsert", actor.TMDBPersonID)
		}
		actor.ID = existing.ID
	}
	return nil
}

func (r *actorRepository) FindByTMDBPersonID(ctx context.Context, tmdbPersonID int) (*models.Actor, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var actor models.Actor
	err := r.db.WithContext(ctx).Where("tmdb_person_id = ?", tmdbPersonID).First(&actor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}

func (r *actorRepository) FindWithoutBirthDate(ctx context.Context, limit int) ([]models.Actor, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.WithContext(ctx).Where("birth_date IS NULL")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var actors []models.Actor
	if err := query.Order("id").Find(&actors).Error; err != nil {
		return nil, err
	}
	return actors, nil
}

func (r *actorRepository) UpdateBirthDate(ctx context.Context, id uint, birthDate string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Model(&models.Actor{}).
		Where("id = ?", id).
		Update("birth_date", birthDate).Error
}

func (r *actorRepository) FindWithCDNPhotos(ctx context.Context, cdnHost string) ([]models.Actor, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var actors []models.Actor
	err := r.db.WithContext(ctx).
		Where("photo_url LIKE ?", "%"+cdnHost+"%").
		Find(&actors).Error
	if err != nil {
		return nil, err
	}
	return actors, nil
}

func (r *actorRepository) UpdatePhotoURL(ctx context.Context, id uint, url string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Model(&models.Actor{}).
		Where("id = ?", id).
		Update("photo_url", url).Error
}
