package users_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

func newUser(email string) *users.User {
	return &users.User{
		Name:         "Ana",
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Roles:        []users.Role{users.RoleUser},
	}
}

// exerciseStore runs the behaviour every Store backend must share.
func exerciseStore(t *testing.T, store users.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))

	t.Run("create and find", func(t *testing.T) {
		created, err := store.Create(ctx, newUser("find@example.com"))
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		byEmail, err := store.FindByEmail(ctx, "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, created.PasswordHash, byEmail.PasswordHash)
		assert.Equal(t, []users.Role{users.RoleUser}, byEmail.Roles)

		byID, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "find@example.com", byID.Email)
	})

	t.Run("missing records", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, "nobody@example.com")
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		_, err = store.FindByID(ctx, "not-an-id")
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		deleted, err := store.Delete(ctx, "not-an-id")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.Create(ctx, newUser("dup@example.com"))
		require.NoError(t, err)

		_, err = store.Create(ctx, newUser("dup@example.com"))
		assert.True(t, errors.Is(err, shared.ErrDuplicateEmail))
	})

	t.Run("concurrent create has one winner", func(t *testing.T) {
		const attempts = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
			dups int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Create(ctx, newUser("race@example.com"))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, shared.ErrDuplicateEmail):
					dups++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
		assert.Equal(t, attempts-1, dups)
	})

	t.Run("update", func(t *testing.T) {
		created, err := store.Create(ctx, newUser("update@example.com"))
		require.NoError(t, err)

		validated := true
		newEmail := "moved@example.com"
		updated, err := store.Update(ctx, created.ID, users.Update{EmailValidated: &validated, Email: &newEmail})
		require.NoError(t, err)
		assert.True(t, updated.EmailValidated)
		assert.Equal(t, newEmail, updated.Email)

		_, err = store.FindByEmail(ctx, "update@example.com")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		again, err := store.FindByEmail(ctx, newEmail)
		require.NoError(t, err)
		assert.True(t, again.EmailValidated)

		_, err = store.Update(ctx, "not-an-id", users.Update{EmailValidated: &validated})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("update onto taken email", func(t *testing.T) {
		_, err := store.Create(ctx, newUser("taken@example.com"))
		require.NoError(t, err)
		other, err := store.Create(ctx, newUser("other@example.com"))
		require.NoError(t, err)

		taken := "taken@example.com"
		_, err = store.Update(ctx, other.ID, users.Update{Email: &taken})
		assert.True(t, errors.Is(err, shared.ErrDuplicateEmail))
	})

	t.Run("delete", func(t *testing.T) {
		created, err := store.Create(ctx, newUser("delete@example.com"))
		require.NoError(t, err)

		deleted, err := store.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = store.FindByEmail(ctx, "delete@example.com")
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		_, err = store.Create(ctx, newUser("delete@example.com"))
		assert.NoError(t, err)
	})

	t.Run("rejects invalid records", func(t *testing.T) {
		bad := newUser("bad@example.com")
		bad.Roles = []users.Role{"ROOT"}
		_, err := store.Create(ctx, bad)
		assert.True(t, errors.Is(err, users.ErrInvalidRole))
	})
}
