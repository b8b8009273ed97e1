package users_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/users"
	_ "github.com/odyssey-erp/odyssey-auth/testing"
)

func newRedisRepository(t *testing.T) (*users.RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return users.NewRedisRepository(client), mr
}

func TestRedisRepository(t *testing.T) {
	repo, _ := newRedisRepository(t)
	exerciseStore(t, repo)
}

func TestRedisRepositoryKeys(t *testing.T) {
	repo, mr := newRedisRepository(t)

	created, err := repo.Create(context.Background(), newUser("keys@example.com"))
	require.NoError(t, err)

	id, err := mr.Get("odyssey-auth:user:email:keys@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)
	assert.True(t, mr.Exists("odyssey-auth:user:"+created.ID))
}
