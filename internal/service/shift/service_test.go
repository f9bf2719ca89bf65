package shift

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database/dbtest"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]shift.Template
	getErr  error
	hits    int
}

func (c *mapCache) Get(ctx context.Context, id string) (shift.Template, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return shift.Template{}, false, c.getErr
	}
	t, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return t, ok, nil
}

func (c *mapCache) Set(ctx context.Context, t shift.Template) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[t.ID] = t
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T) (*ShiftServiceImpl, *mapCache, *dbtest.TemplateStore) {
	t.Helper()
	tx := dbtest.NewTransactor()
	store := dbtest.NewTemplateStore(tx)
	cache := &mapCache{entries: make(map[string]shift.Template)}
	return NewShiftService(tx, store, cache, metrics.New()), cache, store
}

func createDay(t *testing.T, svc *ShiftServiceImpl) shift.Template {
	t.Helper()
	created, err := svc.Create(context.Background(), shift.CreateShiftRequest{
		Code: "DAY", Name: "Day", StartTime: "08:00", EndTime: "17:00", BreakMinutes: ptr(60),
	})
	require.NoError(t, err)
	return created
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc, _, _ := newService(t)
	createDay(t, svc)

	_, err := svc.Create(context.Background(), shift.CreateShiftRequest{Code: "DAY", Name: "Other", StartTime: "09:00", EndTime: "18:00"})
	assert.ErrorIs(t, err, shift.ErrShiftCodeExists)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUpdateVersionedKeepsOldSnapshot(t *testing.T) {
	svc, cache, _ := newService(t)
	ctx := context.Background()
	v1 := createDay(t, svc)

	// warm the cache
	_, err := svc.GetSnapshot(ctx, v1.ID)
	require.NoError(t, err)

	v2, err := svc.UpdateVersioned(ctx, shift.UpdateShiftRequest{ID: v1.ID, EndTime: ptr("18:00")})
	require.NoError(t, err)

	assert.NotEqual(t, v1.ID, v2.ID)
	assert.Equal(t, "DAY", v2.Code)
	assert.Equal(t, shift.TimeOfDay{Hour: 18}, v2.EndTime)
	assert.Equal(t, 60, v2.BreakMinutes)
	assert.NotContains(t, cache.entries, v1.ID)

	_, err = svc.Get(ctx, v1.ID)
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)

	old, err := svc.GetSnapshot(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, shift.TimeOfDay{Hour: 17}, old.EndTime)
	assert.NotNil(t, old.DeletedAt)

	active, err := svc.GetByCode(ctx, "DAY")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)
}

func TestUpdateVersionedConflictRollsBack(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	day := createDay(t, svc)
	_, err := svc.Create(ctx, shift.CreateShiftRequest{Code: "NIGHT", Name: "Night", StartTime: "22:00", EndTime: "06:00", Overnight: true})
	require.NoError(t, err)

	_, err = svc.UpdateVersioned(ctx, shift.UpdateShiftRequest{ID: day.ID, Code: ptr("NIGHT")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	still, err := svc.Get(ctx, day.ID)
	require.NoError(t, err)
	assert.Nil(t, still.DeletedAt)
}

func TestUpdateVersionedValidates(t *testing.T) {
	svc, _, _ := newService(t)
	day := createDay(t, svc)

	_, err := svc.UpdateVersioned(context.Background(), shift.UpdateShiftRequest{ID: day.ID, PayFactor: ptr(9.0)})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, err = svc.UpdateVersioned(context.Background(), shift.UpdateShiftRequest{ID: "missing"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetSnapshotUsesCache(t *testing.T) {
	svc, cache, _ := newService(t)
	ctx := context.Background()
	day := createDay(t, svc)

	_, err := svc.GetSnapshot(ctx, day.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.entries, day.ID)

	assert.Zero(t, cache.hits)

	got, err := svc.GetSnapshot(ctx, day.ID)
	require.NoError(t, err)
	assert.Equal(t, day.ID, got.ID)
	assert.Equal(t, 1, cache.hits)
}

func TestGetSnapshotFallsBackOnCacheError(t *testing.T) {
	svc, cache, _ := newService(t)
	day := createDay(t, svc)
	cache.getErr = errors.New("connection refused")

	got, err := svc.GetSnapshot(context.Background(), day.ID)
	require.NoError(t, err)
	assert.Equal(t, day.ID, got.ID)
}

func TestDelete(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	day := createDay(t, svc)

	require.NoError(t, svc.Delete(ctx, day.ID))

	list, err := svc.List(ctx, shift.ShiftFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	err = svc.Delete(ctx, day.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Create(ctx, shift.CreateShiftRequest{Code: "DAY", Name: "Day again", StartTime: "07:00", EndTime: "16:00"})
	assert.NoError(t, err)
}
