package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-auth/internal/auth/password"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

func TestSeedUserIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := users.NewRedisRepository(client)

	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	acc := seedAccount{name: "Admin", email: "admin@x.io", password: "admin123", roles: []users.Role{users.RoleAdmin}}
	ctx := context.Background()

	created, err := seedUser(ctx, store, hasher, acc)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = seedUser(ctx, store, hasher, acc)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := store.FindByEmail(ctx, "admin@x.io")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("admin123", stored.PasswordHash))
	assert.True(t, stored.EmailValidated)
}
