package cache

import (
	"context"
	"testing"
	"time"

	"parking_tracker/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisLotCache, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLotCache(client, time.Minute), client, mr
}

func testLots() []domain.ParkingLot {
	updated := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return []domain.ParkingLot{{
		ID:         7,
		Name:       "Forum Mall",
		Location:   "Koramangala",
		Latitude:   12.9346,
		Longitude:  77.6112,
		TotalSlots: 2,
		CreatedAt:  updated.Add(-time.Hour),
		UpdatedAt:  updated,
		Slots: []domain.ParkingSlot{
			{ID: 70, LotID: 7, SlotNumber: 1, Status: true, UpdatedAt: updated},
			{ID: 71, LotID: 7, SlotNumber: 2, UpdatedAt: updated},
		},
	}}
}

func TestRedisLotCache_RoundTrip(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()

	lots, generation, ok := c.GetLots(ctx)
	require.False(t, ok)
	assert.Nil(t, lots)
	assert.Zero(t, generation)

	c.SetLots(ctx, generation, testLots())

	got, _, ok := c.GetLots(ctx)
	require.True(t, ok)
	require.Len(t, got, 1)
	want := testLots()[0]
	assert.Equal(t, want.Name, got[0].Name)
	assert.True(t, want.UpdatedAt.Equal(got[0].UpdatedAt))
	require.Len(t, got[0].Slots, 2)
	assert.Equal(t, 7, got[0].Slots[0].LotID)
	assert.True(t, got[0].Slots[0].Status)
	assert.False(t, got[0].Slots[1].Status)
	assert.True(t, want.Slots[1].UpdatedAt.Equal(got[0].Slots[1].UpdatedAt))
}

func TestRedisLotCache_InvalidateRemovesEntry(t *testing.T) {
	c, client, _ := newTestCache(t)
	ctx := context.Background()

	_, generation, _ := c.GetLots(ctx)
	c.SetLots(ctx, generation, testLots())
	c.Invalidate(ctx)

	assert.ErrorIs(t, client.Get(ctx, lotListKey).Err(), redis.Nil)
	_, next, ok := c.GetLots(ctx)
	assert.False(t, ok)
	assert.Equal(t, generation+1, next)
}

func TestRedisLotCache_SnapshotOlderThanInvalidateIsNotStored(t *testing.T) {
	c, client, _ := newTestCache(t)
	ctx := context.Background()

	_, generation, _ := c.GetLots(ctx)
	c.Invalidate(ctx)
	c.SetLots(ctx, generation, testLots())

	assert.ErrorIs(t, client.Get(ctx, lotListKey).Err(), redis.Nil)
	_, _, ok := c.GetLots(ctx)
	assert.False(t, ok)
}

func TestRedisLotCache_EntryFromOlderGenerationIsIgnored(t *testing.T) {
	c, _, mr := newTestCache(t)
	ctx := context.Background()

	_, generation, _ := c.GetLots(ctx)
	c.SetLots(ctx, generation, testLots())

	// Generation moved but the entry itself was never deleted.
	_, err := mr.Incr(lotGenerationKey, 1)
	require.NoError(t, err)

	_, _, ok := c.GetLots(ctx)
	assert.False(t, ok)
}

func TestRedisLotCache_CorruptEntryIsDropped(t *testing.T) {
	c, _, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(lotListKey, "not json"))

	lots, _, ok := c.GetLots(ctx)
	assert.False(t, ok)
	assert.Nil(t, lots)
	assert.False(t, mr.Exists(lotListKey))
}

// An unreachable Redis must degrade to cache misses, never errors or panics.
func TestRedisLotCache_UnreachableServerIsAMiss(t *testing.T) {
	client := NewRedisClient("127.0.0.1:1", "", 0)
	defer client.Close()
	c := NewRedisLotCache(client, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	lots, generation, ok := c.GetLots(ctx)
	assert.False(t, ok)
	assert.Nil(t, lots)
	assert.Negative(t, generation)

	assert.NotPanics(t, func() {
		c.SetLots(ctx, 0, nil)
		c.Invalidate(ctx)
	})
}
