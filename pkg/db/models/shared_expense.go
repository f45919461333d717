package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SharedExpense is a group expense fronted by one member and owed back via
// per-member splits. The split builder keeps sum(splits) equal to TotalAmount;
// readers tolerate and report drift instead of rejecting it.
type SharedExpense struct {
	ID          uuid.UUID            `gorm:"column:id;type:text;primaryKey"`
	GroupID     uuid.UUID            `gorm:"column:group_id;type:text;not null"`
	Description string               `gorm:"column:description;not null"`
	Category    string               `gorm:"column:category;not null"`
	TotalAmount decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaidBy      uuid.UUID            `gorm:"column:paid_by;type:text;not null"`
	Splits      []SharedExpenseSplit `gorm:"foreignKey:ExpenseID"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (SharedExpense) TableName() string {
	return "shared_expenses"
}

// SharedExpenseSplit is one member's owed share of a shared expense. Position
// preserves the order the split builder produced.
type SharedExpenseSplit struct {
	ID          uuid.UUID       `gorm:"column:id;type:text;primaryKey"`
	ExpenseID   uuid.UUID       `gorm:"column:expense_id;type:text;not null;index"`
	MemberID    uuid.UUID       `gorm:"column:member_id;type:text;not null"`
	ShareAmount decimal.Decimal `gorm:"column:share_amount;type:numeric(12,2);not null"`
	Position    int             `gorm:"column:position;not null"`
}

func (SharedExpenseSplit) TableName() string {
	return "shared_expense_splits"
}
