package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
	"github.com/splitpocket/splitpocket-sync/pkg/enums"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
	"github.com/splitpocket/splitpocket-sync/pkg/metrics"
)

const defaultPollInterval = time.Minute

type pendingQueue interface {
	ListOrdered(ctx context.Context) ([]models.PendingMutation, error)
	Remove(ctx context.Context, id uuid.UUID) error
	RecordFailure(ctx context.Context, id uuid.UUID, failure error) error
	Count(ctx context.Context) (int64, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, itemType enums.MutationItemType, action enums.MutationAction, payload json.RawMessage) error
}

type connectivitySource interface {
	IsConnected() bool
}

// CoordinatorParams configure the sync coordinator.
type CoordinatorParams struct {
	Logger       *logger.Logger
	Queue        pendingQueue
	Dispatcher   dispatcher
	Connectivity connectivitySource
	Metrics      *metrics.SyncMetrics
	PollInterval time.Duration
}

// Coordinator drains the pending mutation queue against the remote API, one
// pass at a time. A pass replays mutations strictly in enqueue order and never
// aborts on a single bad item; failures are recorded per item and retried on
// the next pass.
type Coordinator struct {
	logg         *logger.Logger
	queue        pendingQueue
	dispatch     dispatcher
	connectivity connectivitySource
	metrics      *metrics.SyncMetrics
	pollInterval time.Duration

	mu       sync.Mutex
	syncing  bool
	pending  int64
	lastSync *time.Time
	subs     []chan SyncStatus
}

func NewCoordinator(params CoordinatorParams) (*Coordinator, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Queue == nil {
		return nil, errors.New("queue is required")
	}
	if params.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if params.Connectivity == nil {
		return nil, errors.New("connectivity source is required")
	}
	interval := params.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Coordinator{
		logg:         params.Logger,
		queue:        params.Queue,
		dispatch:     params.Dispatcher,
		connectivity: params.Connectivity,
		metrics:      params.Metrics,
		pollInterval: interval,
	}, nil
}

// Status returns a snapshot of the aggregate sync state.
func (c *Coordinator) Status() SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Coordinator) statusLocked() SyncStatus {
	status := SyncStatus{
		IsSyncing:    c.syncing,
		PendingCount: c.pending,
		IsConnected:  c.connectivity.IsConnected(),
	}
	if c.lastSync != nil {
		last := *c.lastSync
		status.LastSyncDate = &last
	}
	return status
}

// Subscribe returns a channel receiving status snapshots after every change.
// Sends never block; slow readers only miss intermediate snapshots.
func (c *Coordinator) Subscribe() <-chan SyncStatus {
	ch := make(chan SyncStatus, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

func (c *Coordinator) publish(status SyncStatus) {
	c.mu.Lock()
	subs := make([]chan SyncStatus, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub <- status:
		default:
		}
	}
}

// RefreshPending re-reads the queue depth, for startup and after enqueues.
func (c *Coordinator) RefreshPending(ctx context.Context) error {
	count, err := c.queue.Count(ctx)
	if err != nil {
		return err
	}
	c.metrics.SetPending(count)
	c.mu.Lock()
	c.pending = count
	status := c.statusLocked()
	c.mu.Unlock()
	c.publish(status)
	return nil
}

// TriggerSync requests one pass. It is a no-op when offline or when a pass is
// already running.
func (c *Coordinator) TriggerSync(ctx context.Context) {
	if err := c.syncPendingItems(ctx, "manual"); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "sync pass finished with failures")
	}
}

// SyncPendingItems runs one drain pass and returns the aggregated per-item
// failures (nil when everything replayed).
func (c *Coordinator) SyncPendingItems(ctx context.Context) error {
	return c.syncPendingItems(ctx, "manual")
}

func (c *Coordinator) syncPendingItems(ctx context.Context, trigger string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !c.connectivity.IsConnected() {
		// Queued work stays visible while offline; only dispatch waits for
		// connectivity.
		if err := c.RefreshPending(ctx); err != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "failed to refresh pending count while offline")
		}
		return nil
	}

	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return nil
	}
	c.syncing = true
	status := c.statusLocked()
	c.mu.Unlock()
	c.publish(status)

	start := time.Now()
	passCtx := c.logg.WithField(ctx, "trigger", trigger)

	items, listErr := c.queue.ListOrdered(passCtx)
	var failures error
	if listErr != nil {
		failures = fmt.Errorf("listing pending mutations: %w", listErr)
		c.logg.Error(passCtx, "failed to snapshot pending queue", listErr)
	}

	replayed := 0
	for _, item := range items {
		if err := c.replayItem(passCtx, item); err != nil {
			failures = multierr.Append(failures, err)
			continue
		}
		replayed++
	}

	count, countErr := c.queue.Count(passCtx)
	if countErr != nil {
		failures = multierr.Append(failures, fmt.Errorf("refreshing pending count: %w", countErr))
	} else {
		c.metrics.SetPending(count)
	}

	now := time.Now()
	c.mu.Lock()
	c.syncing = false
	c.lastSync = &now
	if countErr == nil {
		c.pending = count
	}
	status = c.statusLocked()
	c.mu.Unlock()
	c.publish(status)

	duration := time.Since(start)
	c.metrics.ObservePassDuration(trigger, duration)
	fields := map[string]any{
		"replayed":    replayed,
		"attempted":   len(items),
		"duration_ms": duration.Milliseconds(),
	}
	c.logg.Info(c.logg.WithFields(passCtx, fields), "sync pass complete")
	return failures
}

func (c *Coordinator) replayItem(ctx context.Context, item models.PendingMutation) error {
	itemCtx := c.logg.WithFields(ctx, map[string]any{
		"mutation_id": item.ID.String(),
		"item_type":   item.ItemType,
		"item_id":     item.ItemID,
		"action":      item.Action,
		"retry_count": item.RetryCount,
	})

	if err := c.dispatch.Dispatch(ctx, item.ItemType, item.Action, item.Payload); err != nil {
		c.metrics.IncItemFailure(string(item.ItemType))
		c.logg.Warn(c.logg.WithField(itemCtx, "error", err.Error()), "mutation replay failed")
		if recErr := c.queue.RecordFailure(ctx, item.ID, err); recErr != nil {
			return fmt.Errorf("recording failure for %s: %w", item.ID, recErr)
		}
		return fmt.Errorf("mutation %s: %w", item.ID, err)
	}

	if err := c.queue.Remove(ctx, item.ID); err != nil {
		return fmt.Errorf("removing replayed mutation %s: %w", item.ID, err)
	}
	c.metrics.IncItemSuccess(string(item.ItemType))
	c.logg.Info(itemCtx, "mutation replayed")
	return nil
}

// Run drains the queue on a fixed cadence as a fallback for connectivity
// transitions the monitor never observed. Runs until the context is canceled.
func (c *Coordinator) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.RefreshPending(ctx); err != nil {
		c.logg.Error(ctx, "failed to read initial queue depth", err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logg.Info(ctx, "sync coordinator context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := c.syncPendingItems(ctx, "poll"); err != nil {
				c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "scheduled sync pass finished with failures")
			}
		}
	}
}
