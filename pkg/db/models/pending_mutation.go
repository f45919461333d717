package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/splitpocket/splitpocket-sync/pkg/enums"
)

// PendingMutation is a local write awaiting replay against the remote API.
// Rows are appended by mutation flows and removed only after a confirmed
// remote success. Seq is assigned by the store and is strictly monotonic, so
// replay order equals enqueue order even when two rows share a created_at.
type PendingMutation struct {
	Seq        int64                  `gorm:"column:seq;primaryKey;autoIncrement"`
	ID         uuid.UUID              `gorm:"column:id;type:text;not null;uniqueIndex"`
	ItemType   enums.MutationItemType `gorm:"column:item_type;not null"`
	ItemID     string                 `gorm:"column:item_id;not null"`
	Action     enums.MutationAction   `gorm:"column:action;not null"`
	Payload    json.RawMessage        `gorm:"column:payload;not null"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	RetryCount int                    `gorm:"column:retry_count;not null;default:0"`
	LastError  *string                `gorm:"column:last_error"`
}

func (PendingMutation) TableName() string {
	return "pending_mutations"
}
