package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleCacheTTL(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.SetEX(ctx, "k", "v", 20*time.Millisecond))
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, "v", v)
	d, ok := c.RemainingTTL(ctx, "k")
	assert.True(t, ok)
	assert.LessOrEqual(t, d, 20*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	v, _ = c.Get(ctx, "k")
	assert.Empty(t, v)
	_, ok = c.RemainingTTL(ctx, "k")
	assert.False(t, ok)
}

func TestLayeredBackfillAndDelete(t *testing.T) {
	ctx := context.Background()
	l1, l2 := New(), New()
	lc := NewLayered(l1, l2)

	require.NoError(t, l2.SetEX(ctx, "users:list", "[]", time.Minute))
	v, _ := lc.Get(ctx, "users:list")
	assert.Equal(t, "[]", v)
	v, _ = l1.Get(ctx, "users:list")
	assert.Equal(t, "[]", v, "L2 hit should backfill L1")

	v, _ = lc.Get(ctx, "users:list")
	assert.Equal(t, "[]", v)

	require.NoError(t, lc.Del(ctx, "users:list"))
	v, _ = lc.Get(ctx, "users:list")
	assert.Empty(t, v)

	m := lc.SnapshotMetrics()
	assert.Equal(t, uint64(1), m.HitsL1)
	assert.Equal(t, uint64(1), m.HitsL2)
	assert.Equal(t, uint64(1), m.Miss)
	assert.Equal(t, uint64(1), m.BackfillL1)
	assert.InDelta(t, 2.0/3.0, m.HitRate, 1e-9)
}

func TestLayeredWithoutL2(t *testing.T) {
	ctx := context.Background()
	lc := NewLayered(New(), nil)
	require.NoError(t, lc.SetEX(ctx, "a", "1", time.Minute))
	v, _ := lc.Get(ctx, "a")
	assert.Equal(t, "1", v)
	assert.NoError(t, lc.Del(ctx, "a"))
}

func TestTieredSkipsL1WhenShared(t *testing.T) {
	ctx := context.Background()
	shared := New()
	a, b := NewTiered(shared), NewTiered(shared)
	assert.Nil(t, a.L1)

	require.NoError(t, a.SetEX(ctx, "k", "v1", time.Minute))
	v, _ := b.Get(ctx, "k")
	assert.Equal(t, "v1", v)

	require.NoError(t, a.Del(ctx, "k"))
	v, _ = b.Get(ctx, "k")
	assert.Empty(t, v, "delete on one instance must be visible on the other")

	assert.NotNil(t, NewTiered(nil).L1)
}
