package queue

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
)

// Repository persists pending mutations in the local store. The sync
// coordinator is the only caller of Remove and RecordFailure; enqueue sites
// only ever insert.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends a mutation. When tx is non-nil the write joins the caller's
// transaction so the entity write and its queue entry commit together.
func (r *Repository) Insert(tx *gorm.DB, row *models.PendingMutation) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	return conn.Create(row).Error
}

// ListOrdered returns every pending mutation in enqueue order.
func (r *Repository) ListOrdered(ctx context.Context) ([]models.PendingMutation, error) {
	var rows []models.PendingMutation
	err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&rows).Error
	return rows, err
}

// Remove deletes a replayed mutation. Removing an absent id is a no-op.
func (r *Repository) Remove(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.PendingMutation{}).Error
}

// RecordFailure bumps the retry counter and stores the latest error, leaving
// the row in place for the next pass.
func (r *Repository) RecordFailure(ctx context.Context, id uuid.UUID, failure error) error {
	return r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":  failure.Error(),
			"retry_count": gorm.Expr("retry_count + 1"),
		}).Error
}

// Count reports the queue depth without materializing rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingMutation{}).
		Count(&count).Error
	return count, err
}
