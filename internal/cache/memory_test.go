package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGet(t *testing.T) {
	m := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryClient_Miss(t *testing.T) {
	m := NewMemoryClient(10)

	_, err := m.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_TTLExpiry(t *testing.T) {
	m := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Delete(t *testing.T) {
	m := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Delete(ctx, "k"))

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_EvictsAtCapacity(t *testing.T) {
	m := NewMemoryClient(3)
	ctx := context.Background()

	// Fill with staggered expiries so eviction order is deterministic.
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Duration(i+1)*time.Hour))
	}
	require.NoError(t, m.Set(ctx, "k3", []byte("v"), 4*time.Hour))

	// k0 had the soonest expiry and must be the one evicted.
	_, err := m.Get(ctx, "k0")
	assert.ErrorIs(t, err, ErrCacheMiss)
	for _, key := range []string{"k1", "k2", "k3"} {
		_, err := m.Get(ctx, key)
		assert.NoError(t, err, "key %s", key)
	}
}

func TestMemoryClient_Close(t *testing.T) {
	m := NewMemoryClient(10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Close())

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCompletionKey_Stable(t *testing.T) {
	a := CompletionKey("gpt-4o-mini", "qa", 3, 0.7, "chunk text")
	b := CompletionKey("gpt-4o-mini", "qa", 3, 0.7, "chunk text")
	assert.Equal(t, a, b)
	assert.Contains(t, a, "completion:")
}

func TestCompletionKey_DistinguishesInputs(t *testing.T) {
	base := CompletionKey("gpt-4o-mini", "qa", 3, 0.7, "chunk text")

	assert.NotEqual(t, base, CompletionKey("gpt-4o", "qa", 3, 0.7, "chunk text"))
	assert.NotEqual(t, base, CompletionKey("gpt-4o-mini", "interview", 3, 0.7, "chunk text"))
	assert.NotEqual(t, base, CompletionKey("gpt-4o-mini", "qa", 4, 0.7, "chunk text"))
	assert.NotEqual(t, base, CompletionKey("gpt-4o-mini", "qa", 3, 0.8, "chunk text"))
	assert.NotEqual(t, base, CompletionKey("gpt-4o-mini", "qa", 3, 0.7, "other text"))
}
