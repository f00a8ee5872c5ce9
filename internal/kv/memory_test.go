package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/menu-factory/internal/config"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", "2"))
	v, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", v)

	require.NoError(t, s.Set(ctx, "a", "3"))
	v, _, _ = s.Get(ctx, "a")
	assert.Equal(t, "3", v)

	require.NoError(t, s.Delete(ctx, "a", "missing"))
	assert.Equal(t, []string{"b"}, s.Keys())
}

func TestMemoryEmptyValueIsFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "k", ""))
	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, v)
}

func TestDisabledAlwaysUnavailable(t *testing.T) {
	ctx := context.Background()
	var s Store = Disabled{}
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), ErrUnavailable)
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrUnavailable)
}

func TestOpenFallsBackToMemory(t *testing.T) {
	s, closeFn := Open(context.Background(), config.Config{StoreBackend: config.BackendRedis}, nil)
	defer closeFn()
	_, ok := s.(*Memory)
	assert.True(t, ok, "redis without a client should degrade to memory")

	s, closeFn = Open(context.Background(), config.Config{StoreBackend: config.BackendDisabled}, nil)
	defer closeFn()
	assert.IsType(t, Disabled{}, s)
}
