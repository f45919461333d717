package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitpocket/splitpocket-sync/pkg/db/models"
	"github.com/splitpocket/splitpocket-sync/pkg/enums"
	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
)

type fakeQueue struct {
	mu    sync.Mutex
	items []models.PendingMutation
}

func (q *fakeQueue) add(itemType enums.MutationItemType, action enums.MutationAction, itemID string) uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()
	row := models.PendingMutation{
		ID:        uuid.New(),
		ItemType:  itemType,
		ItemID:    itemID,
		Action:    action,
		Payload:   json.RawMessage(`{}`),
		CreatedAt: time.Now().UTC(),
	}
	q.items = append(q.items, row)
	return row.ID
}

func (q *fakeQueue) ListOrdered(_ context.Context) ([]models.PendingMutation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.PendingMutation, len(q.items))
	copy(out, q.items)
	return out, nil
}

func (q *fakeQueue) Remove(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *fakeQueue) RecordFailure(_ context.Context, id uuid.UUID, failure error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].RetryCount++
			msg := failure.Error()
			q.items[i].LastError = &msg
			return nil
		}
	}
	return fmt.Errorf("mutation %s not found", id)
}

func (q *fakeQueue) Count(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

func (q *fakeQueue) get(id uuid.UUID) (models.PendingMutation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.PendingMutation{}, false
}

type fakeDispatcher struct {
	mu       sync.Mutex
	calls    []string
	failFor  map[string]error
	blocking chan struct{}
}

func (d *fakeDispatcher) Dispatch(_ context.Context, itemType enums.MutationItemType, action enums.MutationAction, _ json.RawMessage) error {
	if d.blocking != nil {
		<-d.blocking
	}
	key := fmt.Sprintf("%s/%s", itemType, action)
	d.mu.Lock()
	d.calls = append(d.calls, key)
	err := d.failFor[key]
	d.mu.Unlock()
	return err
}

func (d *fakeDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type fakeConnectivity struct{ online bool }

func (c *fakeConnectivity) IsConnected() bool { return c.online }

func newTestCoordinator(t *testing.T, queue *fakeQueue, dispatch *fakeDispatcher, conn *fakeConnectivity) *Coordinator {
	t.Helper()
	coordinator, err := NewCoordinator(CoordinatorParams{
		Logger:     logger.New(logger.Options{ServiceName: "syncer-test", Output: io.Discard}),
		Queue:      queue,
		Dispatcher: dispatch,
		// Metrics stay nil; the recorder methods tolerate that.
		Connectivity: conn,
	})
	require.NoError(t, err)
	return coordinator
}

func TestSyncPendingItemsDrainsQueueInOrder(t *testing.T) {
	queue := &fakeQueue{}
	queue.add(enums.ItemPersonalExpense, enums.ActionCreate, uuid.NewString())
	queue.add(enums.ItemSharedExpense, enums.ActionCreate, uuid.NewString())
	queue.add(enums.ItemBudget, enums.ActionUpdate, uuid.NewString())

	dispatch := &fakeDispatcher{}
	coordinator := newTestCoordinator(t, queue, dispatch, &fakeConnectivity{online: true})

	require.NoError(t, coordinator.SyncPendingItems(context.Background()))

	assert.Equal(t, []string{
		"personal_expense/create",
		"shared_expense/create",
		"budget/update",
	}, dispatch.calls)

	status := coordinator.Status()
	assert.False(t, status.IsSyncing)
	assert.Equal(t, int64(0), status.PendingCount)
	require.NotNil(t, status.LastSyncDate)
	assert.WithinDuration(t, time.Now(), *status.LastSyncDate, 5*time.Second)
}

func TestSyncPendingItemsIsolatesFailures(t *testing.T) {
	queue := &fakeQueue{}
	queue.add(enums.ItemPersonalExpense, enums.ActionCreate, uuid.NewString())
	failingID := queue.add(enums.ItemBudget, enums.ActionCreate, uuid.NewString())
	queue.add(enums.ItemCategory, enums.ActionCreate, uuid.NewString())

	dispatch := &fakeDispatcher{failFor: map[string]error{
		"budget/create": apperrors.New(apperrors.CodeServerError, "remote rejected budget"),
	}}
	coordinator := newTestCoordinator(t, queue, dispatch, &fakeConnectivity{online: true})

	err := coordinator.SyncPendingItems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), failingID.String())

	// The bad item must not stop the items behind it.
	assert.Equal(t, 3, dispatch.callCount())

	// Succeeded items leave the queue; the failed one stays with bookkeeping.
	count, countErr := queue.Count(context.Background())
	require.NoError(t, countErr)
	assert.Equal(t, int64(1), count)

	failed, ok := queue.get(failingID)
	require.True(t, ok)
	assert.Equal(t, 1, failed.RetryCount)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, "remote rejected budget")

	assert.Equal(t, int64(1), coordinator.Status().PendingCount)
}

func TestSyncPendingItemsRetriesKeepOrder(t *testing.T) {
	queue := &fakeQueue{}
	queue.add(enums.ItemBudget, enums.ActionCreate, uuid.NewString())
	queue.add(enums.ItemCategory, enums.ActionCreate, uuid.NewString())

	dispatch := &fakeDispatcher{failFor: map[string]error{
		"budget/create":   errors.New("transient outage"),
		"category/create": errors.New("transient outage"),
	}}
	coordinator := newTestCoordinator(t, queue, dispatch, &fakeConnectivity{online: true})

	require.Error(t, coordinator.SyncPendingItems(context.Background()))

	// Next pass replays survivors in their original enqueue order.
	dispatch.mu.Lock()
	dispatch.calls = nil
	dispatch.failFor = nil
	dispatch.mu.Unlock()

	require.NoError(t, coordinator.SyncPendingItems(context.Background()))
	assert.Equal(t, []string{"budget/create", "category/create"}, dispatch.calls)
}

func TestSyncPendingItemsNoOpWhenOffline(t *testing.T) {
	queue := &fakeQueue{}
	queue.add(enums.ItemPersonalExpense, enums.ActionCreate, uuid.NewString())

	dispatch := &fakeDispatcher{}
	coordinator := newTestCoordinator(t, queue, dispatch, &fakeConnectivity{online: false})

	require.NoError(t, coordinator.SyncPendingItems(context.Background()))
	assert.Zero(t, dispatch.callCount(), "offline pass must not touch the remote")

	count, err := queue.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSyncPendingItemsSinglePassGuard(t *testing.T) {
	queue := &fakeQueue{}
	queue.add(enums.ItemPersonalExpense, enums.ActionCreate, uuid.NewString())

	dispatch := &fakeDispatcher{blocking: make(chan struct{})}
	coordinator := newTestCoordinator(t, queue, dispatch, &fakeConnectivity{online: true})

	statusCh := coordinator.Subscribe()
	done := make(chan error, 1)
	go func() {
		done <- coordinator.SyncPendingItems(context.Background())
	}()

	// Wait until the first pass flags itself as running.
	select {
	case status := <-statusCh:
		require.True(t, status.IsSyncing)
	case <-time.After(2 * time.Second):
		t.Fatal("first pass never started")
	}

	// A second request while the pass is in flight returns without dispatching.
	require.NoError(t, coordinator.SyncPendingItems(context.Background()))

	close(dispatch.blocking)
	require.NoError(t, <-done)
	assert.Equal(t, 1, dispatch.callCount(), "guard must keep replay to a single pass")
}

func TestOfflinePassKeepsQueueDepthVisible(t *testing.T) {
	queue := &fakeQueue{}
	dispatch := &fakeDispatcher{}
	coordinator := newTestCoordinator(t, queue, dispatch, &fakeConnectivity{online: false})

	// Mutations land after the startup refresh; the poll pass is the only
	// periodic path that can surface them.
	queue.add(enums.ItemPersonalExpense, enums.ActionCreate, uuid.NewString())
	queue.add(enums.ItemBudget, enums.ActionUpdate, uuid.NewString())
	queue.add(enums.ItemCategory, enums.ActionCreate, uuid.NewString())

	require.NoError(t, coordinator.SyncPendingItems(context.Background()))

	status := coordinator.Status()
	assert.Equal(t, int64(3), status.PendingCount, "offline badge must track the durable queue")
	assert.Zero(t, dispatch.callCount())
	assert.Nil(t, status.LastSyncDate, "an offline pass is not a sync")
}

func TestReconnectionTriggersFullReplay(t *testing.T) {
	queue := &fakeQueue{}
	conn := &fakeConnectivity{online: false}
	dispatch := &fakeDispatcher{}
	coordinator := newTestCoordinator(t, queue, dispatch, conn)

	// Mutations pile up while offline; the offline pass refreshes the badge.
	queue.add(enums.ItemPersonalExpense, enums.ActionCreate, uuid.NewString())
	queue.add(enums.ItemPersonalExpense, enums.ActionDelete, uuid.NewString())
	queue.add(enums.ItemSharedExpense, enums.ActionCreate, uuid.NewString())
	require.NoError(t, coordinator.SyncPendingItems(context.Background()))

	status := coordinator.Status()
	assert.False(t, status.IsConnected)
	assert.Equal(t, int64(3), status.PendingCount)
	assert.Nil(t, status.LastSyncDate)

	// Connectivity returns; one pass drains everything.
	conn.online = true
	require.NoError(t, coordinator.SyncPendingItems(context.Background()))

	status = coordinator.Status()
	assert.True(t, status.IsConnected)
	assert.Equal(t, int64(0), status.PendingCount)
	require.NotNil(t, status.LastSyncDate)
	assert.Equal(t, 3, dispatch.callCount())
}

func TestNewCoordinatorValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "syncer-test", Output: io.Discard})
	queue := &fakeQueue{}
	dispatch := &fakeDispatcher{}
	conn := &fakeConnectivity{}

	_, err := NewCoordinator(CoordinatorParams{Queue: queue, Dispatcher: dispatch, Connectivity: conn})
	assert.Error(t, err)

	_, err = NewCoordinator(CoordinatorParams{Logger: logg, Dispatcher: dispatch, Connectivity: conn})
	assert.Error(t, err)

	_, err = NewCoordinator(CoordinatorParams{Logger: logg, Queue: queue, Connectivity: conn})
	assert.Error(t, err)

	_, err = NewCoordinator(CoordinatorParams{Logger: logg, Queue: queue, Dispatcher: dispatch})
	assert.Error(t, err)
}
