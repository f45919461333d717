package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is a single expense record, personal or derived from a shared
// split. Deletion is a soft flag; flagged rows stay for audit and sync replay.
type LedgerEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:text;primaryKey"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Category    string          `gorm:"column:category;not null"`
	OccurredAt  time.Time       `gorm:"column:occurred_at;not null"`
	Description *string         `gorm:"column:description"`
	Notes       *string         `gorm:"column:notes"`
	GroupID     *uuid.UUID      `gorm:"column:group_id;type:text"`
	GroupName   *string         `gorm:"column:group_name"`
	IsDeleted   bool            `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
