package remote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request payloads mirror what the backing API expects for each mutation.
// They are what enqueue sites serialize into pending-mutation payloads and
// what the dispatcher decodes back out before sending.

type SplitPayload struct {
	MemberID    string          `json:"memberId" validate:"required,uuid4"`
	ShareAmount decimal.Decimal `json:"shareAmount"`
}

type PersonalExpenseCreate struct {
	ID          string          `json:"id" validate:"required,uuid4"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" validate:"required"`
	OccurredAt  time.Time       `json:"occurredAt" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

type PersonalExpenseDelete struct {
	ID string `json:"id" validate:"required,uuid4"`
}

type SharedExpenseCreate struct {
	ID          string          `json:"id" validate:"required,uuid4"`
	GroupID     string          `json:"groupId" validate:"required,uuid4"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidBy      string          `json:"paidBy" validate:"required,uuid4"`
	Splits      []SplitPayload  `json:"splits" validate:"required,min=1,dive"`
}

type BudgetUpsert struct {
	ID       string          `json:"id" validate:"required,uuid4"`
	Category string          `json:"category" validate:"required"`
	Limit    decimal.Decimal `json:"limit"`
	Month    string          `json:"month" validate:"required"`
}

type CategoryUpsert struct {
	ID   string `json:"id" validate:"required,uuid4"`
	Name string `json:"name" validate:"required"`
}
