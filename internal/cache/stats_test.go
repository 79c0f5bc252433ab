package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/repository"
)

func newTestCache(t *testing.T) (*StatsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStatsCache(client, 30*time.Second), mr
}

func sampleStats() *repository.AppointmentStats {
	return &repository.AppointmentStats{
		Today:            2,
		ThisWeek:         9,
		DistinctPatients: 6,
		Pending:          3,
	}
}

func TestStatsCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct-vet-01", sampleStats()))

	got, err := cache.Get(ctx, "acct-vet-01")
	require.NoError(t, err)
	assert.Equal(t, sampleStats(), got)
}

func TestStatsCache_Get_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), "acct-vet-unknown")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStatsCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct-vet-01", sampleStats()))
	require.NoError(t, cache.Invalidate(ctx, "acct-vet-01"))

	_, err := cache.Get(ctx, "acct-vet-01")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStatsCache_Invalidate_AbsentKeyIsNoop(t *testing.T) {
	cache, _ := newTestCache(t)

	assert.NoError(t, cache.Invalidate(context.Background(), "acct-vet-01"))
}

func TestStatsCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "acct-vet-01", sampleStats()))

	mr.FastForward(31 * time.Second)

	_, err := cache.Get(ctx, "acct-vet-01")
	assert.ErrorIs(t, err, ErrMiss)
}
