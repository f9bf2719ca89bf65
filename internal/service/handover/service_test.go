package handover

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database/dbtest"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (q *recordingQueue) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, req)
	return nil
}

type fixture struct {
	tx    *dbtest.Transactor
	store *dbtest.HandoverStore
	queue *recordingQueue
	svc   *HandoverServiceImpl
}

func newFixture(t *testing.T, revert bool) *fixture {
	t.Helper()
	tx := dbtest.NewTransactor()
	f := &fixture{tx: tx, store: dbtest.NewHandoverStore(tx), queue: &recordingQueue{}}
	f.svc = NewHandoverService(tx, f.store, f.queue, metrics.New(), revert).(*HandoverServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) create(t *testing.T) handover.Handover {
	t.Helper()
	mgr := "mgr-1"
	h, err := f.svc.Create(context.Background(), handover.CreateHandoverRequest{EmployeeID: "emp-1", ManagerID: &mgr, Note: "quarter close"})
	require.NoError(t, err)
	return h
}

func (f *fixture) addItems(t *testing.T, handoverID string, n int) []handover.Item {
	t.Helper()
	items := make([]handover.Item, 0, n)
	for i := 0; i < n; i++ {
		change, err := f.svc.AddItem(context.Background(), handoverID, handover.AddItemRequest{Title: "task"})
		require.NoError(t, err)
		items = append(items, change.Item)
	}
	return items
}

func (f *fixture) setStatus(t *testing.T, itemID string, status string) handover.ItemChange {
	t.Helper()
	change, err := f.svc.SetItemStatus(context.Background(), handover.SetItemStatusRequest{ItemID: itemID, Status: status})
	require.NoError(t, err)
	return change
}

func TestCreateStartsOpen(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)

	assert.Equal(t, handover.StatusOpen, h.Status)

	got, err := f.svc.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, handover.StatusOpen, got.Status)
}

func TestAddItemMovesOpenToInProgress(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)

	change, err := f.svc.AddItem(context.Background(), h.ID, handover.AddItemRequest{Title: "payroll files"})
	require.NoError(t, err)

	assert.Equal(t, handover.ItemPending, change.Item.Status)
	assert.Equal(t, handover.StatusInProgress, change.Handover.Status)
}

func TestAddItemKeepsAssignee(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)
	assignee := "emp-7"

	change, err := f.svc.AddItem(context.Background(), h.ID, handover.AddItemRequest{Title: "vendor calls", AssigneeID: &assignee})
	require.NoError(t, err)
	require.NotNil(t, change.Item.AssigneeID)
	assert.Equal(t, "emp-7", *change.Item.AssigneeID)

	got, err := f.svc.Get(context.Background(), h.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].AssigneeID)
	assert.Equal(t, "emp-7", *got.Items[0].AssigneeID)

	blank := " "
	_, err = f.svc.AddItem(context.Background(), h.ID, handover.AddItemRequest{Title: "x", AssigneeID: &blank})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestThreeItemCompletion(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)
	items := f.addItems(t, h.ID, 3)

	assert.Equal(t, handover.StatusInProgress, f.setStatus(t, items[0].ID, "DONE").Handover.Status)
	assert.Equal(t, handover.StatusInProgress, f.setStatus(t, items[1].ID, "DONE").Handover.Status)
	assert.Empty(t, f.queue.sent)

	last := f.setStatus(t, items[2].ID, "DONE")
	assert.Equal(t, handover.StatusDone, last.Handover.Status)
	require.NotNil(t, last.Item.DoneAt)

	require.Len(t, f.queue.sent, 1)
	assert.Equal(t, "mgr-1", f.queue.sent[0].RecipientID)
	assert.Equal(t, notification.TypeHandoverCompleted, f.queue.sent[0].Type)

	got, err := f.svc.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 3)
	assert.Equal(t, handover.StatusDone, got.Status)
}

func TestEmptyHandoverNeverDone(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)

	got, err := f.svc.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.NotEqual(t, handover.StatusDone, got.Status)
}

func TestReopenedItemKeepsDoneByDefault(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)
	items := f.addItems(t, h.ID, 2)
	f.setStatus(t, items[0].ID, "DONE")
	f.setStatus(t, items[1].ID, "DONE")

	change := f.setStatus(t, items[1].ID, "PENDING")

	assert.Nil(t, change.Item.DoneAt)
	assert.Equal(t, handover.StatusDone, change.Handover.Status)
}

func TestReopenedItemRevertsWhenConfigured(t *testing.T) {
	f := newFixture(t, true)
	h := f.create(t)
	items := f.addItems(t, h.ID, 2)
	f.setStatus(t, items[0].ID, "DONE")
	f.setStatus(t, items[1].ID, "DONE")

	change := f.setStatus(t, items[1].ID, "PENDING")
	assert.Equal(t, handover.StatusInProgress, change.Handover.Status)

	change = f.setStatus(t, items[1].ID, "DONE")
	assert.Equal(t, handover.StatusDone, change.Handover.Status)
	assert.Len(t, f.queue.sent, 2)
}

func TestSetItemStatusErrors(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)
	items := f.addItems(t, h.ID, 1)

	_, err := f.svc.SetItemStatus(context.Background(), handover.SetItemStatusRequest{ItemID: items[0].ID, Status: "FINISHED"})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = f.svc.SetItemStatus(context.Background(), handover.SetItemStatusRequest{ItemID: "missing", Status: "DONE"})
	assert.ErrorIs(t, err, handover.ErrItemNotFound)

	_, err = f.svc.AddItem(context.Background(), "missing", handover.AddItemRequest{Title: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.AddItem(context.Background(), h.ID, handover.AddItemRequest{})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestParentSyncFailureRollsBackItem(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)
	f.store.UpdateStatusErr = errors.New("write failed")

	_, err := f.svc.AddItem(context.Background(), h.ID, handover.AddItemRequest{Title: "task"})
	require.Error(t, err)

	total, _, err := f.store.CountItems(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConcurrentItemUpdatesComplete(t *testing.T) {
	f := newFixture(t, false)
	h := f.create(t)
	items := f.addItems(t, h.ID, 8)

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.SetItemStatus(context.Background(), handover.SetItemStatusRequest{ItemID: id, Status: "DONE"})
			assert.NoError(t, err)
		}(item.ID)
	}
	wg.Wait()

	got, err := f.svc.Get(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, handover.StatusDone, got.Status)
	assert.Len(t, f.queue.sent, 1)
}
