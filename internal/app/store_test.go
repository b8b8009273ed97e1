package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

func TestOpenStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &Config{StoreDriver: StoreRedis, RedisAddr: mr.Addr()}

	store, closeStore, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore(newLogger(&discard{}, cfg))

	_, ok := store.(*users.RedisRepository)
	assert.True(t, ok)
	assert.NoError(t, store.EnsureSchema(context.Background()))
}

func TestOpenStoreRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := OpenStore(context.Background(), &Config{StoreDriver: StoreRedis, RedisAddr: addr})
	assert.Error(t, err)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
