package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
	"github.com/splitpocket/splitpocket-sync/pkg/enums"
	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
)

// Mutation describes a local write that needs replay against the remote API.
type Mutation struct {
	ItemType enums.MutationItemType
	ItemID   string
	Action   enums.MutationAction
	Data     interface{}
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Enqueue serializes the mutation payload and persists it. A persistence
// failure is returned to the caller; a financial write that cannot be durably
// queued must fail the user action rather than vanish.
func (s *Service) Enqueue(ctx context.Context, tx *gorm.DB, mutation Mutation) (*models.PendingMutation, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !mutation.ItemType.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid mutation item type")
	}
	if !mutation.Action.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid mutation action")
	}
	payload, err := json.Marshal(mutation.Data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "marshaling mutation payload")
	}

	row := &models.PendingMutation{
		ID:       uuid.New(),
		ItemType: mutation.ItemType,
		ItemID:   mutation.ItemID,
		Action:   mutation.Action,
		Payload:  payload,
	}
	if err := s.repo.Insert(tx, row); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDurability, err, "persisting pending mutation")
	}

	if s.logg != nil {
		fields := map[string]any{
			"mutation_id": row.ID.String(),
			"item_type":   row.ItemType,
			"item_id":     row.ItemID,
			"action":      row.Action,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "pending mutation queued")
	}
	return row, nil
}

// ListOrdered returns a restartable snapshot of the queue in enqueue order.
func (s *Service) ListOrdered(ctx context.Context) ([]models.PendingMutation, error) {
	return s.repo.ListOrdered(ctx)
}

// Remove drops a mutation after confirmed remote success. Idempotent.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.Remove(ctx, id)
}

// RecordFailure stores replay failure bookkeeping for the next pass.
func (s *Service) RecordFailure(ctx context.Context, id uuid.UUID, failure error) error {
	return s.repo.RecordFailure(ctx, id, failure)
}

// Count reports the pending badge value.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
