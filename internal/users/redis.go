package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

const redisKeyPrefix = "odyssey-auth:user:"

type redisUser struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmailValidated bool      `json:"emailValidated"`
	PasswordHash   string    `json:"password"`
	Roles          []Role    `json:"role"`
	Image          *string   `json:"img,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// RedisRepository implements Store with one JSON value per user plus an
// email index key. The index key is claimed with SETNX so concurrent
// registrations of one email resolve to a single winner.
type RedisRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRepository constructs a Redis-backed repository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client, now: time.Now}
}

func userKey(id string) string     { return redisKeyPrefix + id }
func emailKey(email string) string { return redisKeyPrefix + "email:" + email }

// EnsureSchema only checks the server is reachable; keys need no setup.
func (r *RedisRepository) EnsureSchema(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// FindByEmail resolves the email index and loads the user.
func (r *RedisRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	id, err := r.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID loads a user by id.
func (r *RedisRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return loadRedisUser(ctx, r.client, id)
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func loadRedisUser(ctx context.Context, c redisGetter, id string) (*User, error) {
	raw, err := c.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var rec redisUser
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("users: decode %s: %w", id, err)
	}
	return &User{
		ID:             rec.ID,
		Name:           rec.Name,
		Email:          rec.Email,
		EmailValidated: rec.EmailValidated,
		PasswordHash:   rec.PasswordHash,
		Roles:          rec.Roles,
		Image:          rec.Image,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

func encodeRedisUser(u User) ([]byte, error) {
	return json.Marshal(redisUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmailValidated: u.EmailValidated,
		PasswordHash:   u.PasswordHash,
		Roles:          u.Roles,
		Image:          u.Image,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	})
}

// Create claims the email index and stores the user.
func (r *RedisRepository) Create(ctx context.Context, user *User) (*User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	now := r.now().UTC()
	record := *user
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now

	payload, err := encodeRedisUser(record)
	if err != nil {
		return nil, err
	}

	claimed, err := r.client.SetNX(ctx, emailKey(record.Email), record.ID, 0).Result()
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, shared.ErrDuplicateEmail
	}
	if err := r.client.Set(ctx, userKey(record.ID), payload, 0).Err(); err != nil {
		_ = r.client.Del(ctx, emailKey(record.Email)).Err()
		return nil, err
	}
	return &record, nil
}

// Update rewrites the user under WATCH so concurrent writers cannot
// interleave. An email change moves the index key.
func (r *RedisRepository) Update(ctx context.Context, id string, changes Update) (*User, error) {
	var updated *User
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := loadRedisUser(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := changes.Apply(*current, r.now().UTC())
		if err != nil {
			return err
		}
		payload, err := encodeRedisUser(next)
		if err != nil {
			return err
		}

		moved := next.Email != current.Email
		if moved {
			claimed, err := r.client.SetNX(ctx, emailKey(next.Email), id, 0).Result()
			if err != nil {
				return err
			}
			if !claimed {
				return shared.ErrDuplicateEmail
			}
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, userKey(id), payload, 0)
			if moved {
				p.Del(ctx, emailKey(current.Email))
			}
			return nil
		})
		if err != nil {
			if moved {
				_ = r.client.Del(ctx, emailKey(next.Email)).Err()
			}
			return err
		}
		updated = &next
		return nil
	}, userKey(id))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the user and its email index entry.
func (r *RedisRepository) Delete(ctx context.Context, id string) (bool, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	var removed *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		removed = p.Del(ctx, userKey(id))
		p.Del(ctx, emailKey(current.Email))
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed.Val() == 1, nil
}

var _ Store = (*RedisRepository)(nil)
