package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/docstore"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

const storeCloseTimeout = 10 * time.Second

// CloseFunc releases the connection behind a store.
type CloseFunc func(logger *slog.Logger)

// OpenStore connects to the backend named by cfg.StoreDriver and returns the
// user store on top of it. The caller must invoke the CloseFunc.
func OpenStore(ctx context.Context, cfg *Config) (users.Store, CloseFunc, error) {
	switch cfg.StoreDriver {
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, nil, err
		}
		return users.NewPGRepository(pool), func(*slog.Logger) { pool.Close() }, nil

	case StoreRedis:
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, nil, err
		}
		return users.NewRedisRepository(client), func(logger *slog.Logger) {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}, nil

	default:
		client, err := docstore.New(ctx, cfg.MongoURL, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return users.NewMongoRepository(client.Database()), func(logger *slog.Logger) {
			closeCtx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Warn("mongo close", slog.Any("error", err))
			}
		}, nil
	}
}
