package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
)

// Repository manages persistence for ledger entries and shared expenses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, entry *models.LedgerEntry) error
	Save(ctx context.Context, entry *models.LedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	FetchByDateRange(ctx context.Context, from, to time.Time) ([]models.LedgerEntry, error)
	InsertSharedExpense(ctx context.Context, expense *models.SharedExpense) error
	ListSharedByGroup(ctx context.Context, groupID uuid.UUID) ([]models.SharedExpense, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Save(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// SoftDelete flags the entry; the row stays behind for audit and replay.
func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_deleted": true,
			"updated_at": time.Now(),
		}).Error
}

// FetchByDateRange returns non-deleted entries with occurred_at in [from, to].
func (r *repository) FetchByDateRange(ctx context.Context, from, to time.Time) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("occurred_at >= ? AND occurred_at <= ?", from, to).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) InsertSharedExpense(ctx context.Context, expense *models.SharedExpense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) ListSharedByGroup(ctx context.Context, groupID uuid.UUID) ([]models.SharedExpense, error) {
	var expenses []models.SharedExpense
	if err := r.db.WithContext(ctx).
		Preload("Splits", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}
