package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/splitpocket/splitpocket-sync/internal/remote"
	"github.com/splitpocket/splitpocket-sync/pkg/enums"
	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
)

type dispatchKey struct {
	itemType enums.MutationItemType
	action   enums.MutationAction
}

type handlerFunc func(ctx context.Context, payload json.RawMessage) error

// DispatchRegistry routes a queued mutation to the remote operation matching
// its (itemType, action) pair. A missing handler is a per-item failure that
// will never succeed on retry, surfaced with a distinguishable code.
type DispatchRegistry struct {
	mtx      sync.RWMutex
	registry map[dispatchKey]handlerFunc
}

func NewDispatchRegistry() *DispatchRegistry {
	return &DispatchRegistry{registry: make(map[dispatchKey]handlerFunc)}
}

func (r *DispatchRegistry) Register(itemType enums.MutationItemType, action enums.MutationAction, handler handlerFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[dispatchKey{itemType: itemType, action: action}] = handler
}

func (r *DispatchRegistry) Dispatch(ctx context.Context, itemType enums.MutationItemType, action enums.MutationAction, payload json.RawMessage) error {
	r.mtx.RLock()
	handler, ok := r.registry[dispatchKey{itemType: itemType, action: action}]
	r.mtx.RUnlock()
	if !ok {
		return apperrors.New(apperrors.CodeUnsupportedOperation, fmt.Sprintf("no handler for %s/%s", itemType, action))
	}
	return handler(ctx, payload)
}

// NewRemoteRegistry wires the full dispatch table against the remote client.
func NewRemoteRegistry(client remote.Client, validate *validator.Validate) *DispatchRegistry {
	if validate == nil {
		validate = validator.New()
	}
	registry := NewDispatchRegistry()
	registry.Register(enums.ItemPersonalExpense, enums.ActionCreate, decodeAndSend(validate, client.CreatePersonalExpense))
	registry.Register(enums.ItemPersonalExpense, enums.ActionDelete, decodeAndSend(validate, client.DeletePersonalExpense))
	registry.Register(enums.ItemSharedExpense, enums.ActionCreate, decodeAndSend(validate, client.CreateSharedExpense))
	registry.Register(enums.ItemBudget, enums.ActionCreate, decodeAndSend(validate, client.CreateBudget))
	registry.Register(enums.ItemBudget, enums.ActionUpdate, decodeAndSend(validate, client.UpdateBudget))
	registry.Register(enums.ItemCategory, enums.ActionCreate, decodeAndSend(validate, client.CreateCategory))
	registry.Register(enums.ItemCategory, enums.ActionUpdate, decodeAndSend(validate, client.UpdateCategory))
	return registry
}

func decodeAndSend[T any](validate *validator.Validate, send func(context.Context, T) error) handlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var req T
		if err := json.Unmarshal(payload, &req); err != nil {
			return apperrors.Wrap(apperrors.CodeDecoding, err, "decoding mutation payload")
		}
		if err := validate.StructCtx(ctx, req); err != nil {
			return apperrors.Wrap(apperrors.CodeValidation, err, "validating mutation payload")
		}
		return send(ctx, req)
	}
}
