package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/odyssey-erp/odyssey-auth/internal/app"
	"github.com/odyssey-erp/odyssey-auth/internal/auth/password"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

type seedAccount struct {
	name     string
	email    string
	password string
	roles    []users.Role
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore(slog.Default())

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("prepare store: %v", err)
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}

	accounts := []seedAccount{
		{"Administrator", getenv("SEED_ADMIN_EMAIL", "admin@odyssey.local"), getenv("SEED_ADMIN_PASSWORD", "admin123"), []users.Role{users.RoleAdmin, users.RoleUser}},
		{"Demo User", "user@odyssey.local", "user1234", []users.Role{users.RoleUser}},
	}

	fmt.Println("→ Seeding users...")
	for _, acc := range accounts {
		created, err := seedUser(ctx, store, hasher, acc)
		if err != nil {
			log.Fatalf("seed %s: %v", acc.email, err)
		}
		if created {
			fmt.Println("  created", acc.email)
		} else {
			fmt.Println("  exists ", acc.email)
		}
	}
	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedUser(ctx context.Context, store users.Repository, hasher *password.Hasher, acc seedAccount) (bool, error) {
	if _, err := store.FindByEmail(ctx, acc.email); err == nil {
		return false, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}
	digest, err := hasher.Hash(acc.password)
	if err != nil {
		return false, err
	}
	_, err = store.Create(ctx, &users.User{
		Name:           acc.name,
		Email:          acc.email,
		EmailValidated: true,
		PasswordHash:   digest,
		Roles:          acc.roles,
	})
	if errors.Is(err, shared.ErrDuplicateEmail) {
		return false, nil
	}
	return err == nil, err
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
