package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/splitpocket/splitpocket-sync/internal/balance"
	"github.com/splitpocket/splitpocket-sync/internal/queue"
	"github.com/splitpocket/splitpocket-sync/internal/remote"
	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
	"github.com/splitpocket/splitpocket-sync/pkg/enums"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
)

// txRunner runs fn inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateEntryInput captures a new personal expense.
type CreateEntryInput struct {
	Amount      decimal.Decimal
	Category    string
	OccurredAt  time.Time
	Description *string
	Notes       *string
}

// CreateSharedExpenseInput captures a new group expense. When Splits is empty
// the total is divided equally across MemberIDs.
type CreateSharedExpenseInput struct {
	GroupID     uuid.UUID
	Description string
	Category    string
	TotalAmount decimal.Decimal
	PaidBy      uuid.UUID
	MemberIDs   []uuid.UUID
	Splits      []balance.Split
}

// Service is the offline-first write path: every mutation lands in the local
// store and its replay intent joins the pending queue in the same transaction,
// so a crash can never persist one without the other.
type Service struct {
	repo  Repository
	queue *queue.Service
	tx    txRunner
	logg  *logger.Logger
}

func NewService(repo Repository, queueSvc *queue.Service, tx txRunner, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if queueSvc == nil {
		return nil, fmt.Errorf("queue service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Service{repo: repo, queue: queueSvc, tx: tx, logg: logg}, nil
}

// CreateEntry stores a personal expense and queues its remote create.
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (*models.LedgerEntry, error) {
	if input.Category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if input.OccurredAt.IsZero() {
		return nil, fmt.Errorf("occurred at is required")
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		Amount:      input.Amount,
		Category:    input.Category,
		OccurredAt:  input.OccurredAt,
		Description: input.Description,
		Notes:       input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Insert(ctx, entry); err != nil {
			return err
		}
		_, err := s.queue.Enqueue(ctx, tx, queue.Mutation{
			ItemType: enums.ItemPersonalExpense,
			ItemID:   entry.ID.String(),
			Action:   enums.ActionCreate,
			Data: remote.PersonalExpenseCreate{
				ID:          entry.ID.String(),
				Amount:      entry.Amount,
				Category:    entry.Category,
				OccurredAt:  entry.OccurredAt,
				Description: entry.Description,
				Notes:       entry.Notes,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SaveEntry persists local edits and refreshes the audit timestamp.
func (s *Service) SaveEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry == nil {
		return fmt.Errorf("entry required")
	}
	entry.UpdatedAt = time.Now()
	return s.repo.Save(ctx, entry)
}

// DeleteEntry soft-deletes the entry and queues the remote delete.
func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("entry id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SoftDelete(ctx, id); err != nil {
			return err
		}
		_, err := s.queue.Enqueue(ctx, tx, queue.Mutation{
			ItemType: enums.ItemPersonalExpense,
			ItemID:   id.String(),
			Action:   enums.ActionDelete,
			Data:     remote.PersonalExpenseDelete{ID: id.String()},
		})
		return err
	})
}

// FetchEntries returns the non-deleted entries inside the range.
func (s *Service) FetchEntries(ctx context.Context, from, to time.Time) ([]models.LedgerEntry, error) {
	return s.repo.FetchByDateRange(ctx, from, to)
}

// CreateSharedExpense stores a group expense with its splits and queues the
// remote create. Splits built here always sum exactly to the total.
func (s *Service) CreateSharedExpense(ctx context.Context, input CreateSharedExpenseInput) (*models.SharedExpense, error) {
	if input.GroupID == uuid.Nil {
		return nil, fmt.Errorf("group id required")
	}
	if input.PaidBy == uuid.Nil {
		return nil, fmt.Errorf("payer required")
	}
	if input.Description == "" {
		return nil, fmt.Errorf("description required")
	}

	splits := input.Splits
	if len(splits) == 0 {
		built, err := balance.EqualSplits(input.TotalAmount, input.MemberIDs)
		if err != nil {
			return nil, err
		}
		splits = built
	}

	expense := &models.SharedExpense{
		ID:          uuid.New(),
		GroupID:     input.GroupID,
		Description: input.Description,
		Category:    input.Category,
		TotalAmount: input.TotalAmount,
		PaidBy:      input.PaidBy,
	}
	payloadSplits := make([]remote.SplitPayload, 0, len(splits))
	for i, split := range splits {
		expense.Splits = append(expense.Splits, models.SharedExpenseSplit{
			ID:          uuid.New(),
			ExpenseID:   expense.ID,
			MemberID:    split.MemberID,
			ShareAmount: split.ShareAmount,
			Position:    i,
		})
		payloadSplits = append(payloadSplits, remote.SplitPayload{
			MemberID:    split.MemberID.String(),
			ShareAmount: split.ShareAmount,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).InsertSharedExpense(ctx, expense); err != nil {
			return err
		}
		_, err := s.queue.Enqueue(ctx, tx, queue.Mutation{
			ItemType: enums.ItemSharedExpense,
			ItemID:   expense.ID.String(),
			Action:   enums.ActionCreate,
			Data: remote.SharedExpenseCreate{
				ID:          expense.ID.String(),
				GroupID:     expense.GroupID.String(),
				Description: expense.Description,
				Category:    expense.Category,
				TotalAmount: expense.TotalAmount,
				PaidBy:      expense.PaidBy.String(),
				Splits:      payloadSplits,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// GroupBalances reads the group's expenses and derives net balances. Split
// drift is logged, never fatal; one corrupt record does not block the view.
func (s *Service) GroupBalances(ctx context.Context, groupID uuid.UUID, members []balance.Member) ([]balance.MemberBalance, error) {
	expenses, err := s.repo.ListSharedByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		for _, expense := range expenses {
			if drift := balance.SplitImbalance(expense); !drift.IsZero() {
				fields := map[string]any{
					"expense_id": expense.ID.String(),
					"drift":      drift.String(),
				}
				s.logg.Warn(s.logg.WithFields(ctx, fields), "shared expense splits do not sum to total")
			}
		}
	}
	return balance.Compute(members, expenses), nil
}
