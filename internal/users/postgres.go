package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/db"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

const pgUniqueViolation = "23505"

const pgSchema = `
CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL,
	email_validated BOOLEAN NOT NULL DEFAULT FALSE,
	password_hash   TEXT NOT NULL,
	roles           TEXT[] NOT NULL DEFAULT ARRAY['USER'],
	img             TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const pgEmailIndex = `CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`

const pgUserColumns = `id, name, email, email_validated, password_hash, roles, img, created_at, updated_at`

// PGRepository implements Store using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPGRepository constructs a PostgreSQL repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, now: time.Now}
}

// EnsureSchema creates the users table and its unique email index.
func (r *PGRepository) EnsureSchema(ctx context.Context) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, pgSchema); err != nil {
			return fmt.Errorf("users: create table: %w", err)
		}
		if _, err := tx.Exec(ctx, pgEmailIndex); err != nil {
			return fmt.Errorf("users: create email index: %w", err)
		}
		return nil
	})
}

// FindByEmail fetches a user by exact email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanPGUser(r.pool.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1`, email))
}

// FindByID fetches a user by id. Ids that are not UUIDs cannot exist.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	return scanPGUser(r.pool.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id))
}

// Create inserts a new user. The unique email index decides races.
func (r *PGRepository) Create(ctx context.Context, user *User) (*User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	now := r.now().UTC()
	record := *user
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (`+pgUserColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+pgUserColumns,
		record.ID, record.Name, record.Email, record.EmailValidated, record.PasswordHash,
		rolesToStrings(record.Roles), record.Image, record.CreatedAt, record.UpdatedAt,
	)
	created, err := scanPGUser(row)
	if err != nil {
		return nil, translatePGError(err)
	}
	return created, nil
}

// Update applies changes to the user identified by id inside a transaction.
func (r *PGRepository) Update(ctx context.Context, id string, changes Update) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	var updated *User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanPGUser(tx.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		next, err := changes.Apply(*current, r.now().UTC())
		if err != nil {
			return err
		}
		updated, err = scanPGUser(tx.QueryRow(ctx, `
			UPDATE users
			SET name = $2, email = $3, email_validated = $4, password_hash = $5, roles = $6, img = $7, updated_at = $8
			WHERE id = $1
			RETURNING `+pgUserColumns,
			id, next.Name, next.Email, next.EmailValidated, next.PasswordHash,
			rolesToStrings(next.Roles), next.Image, next.UpdatedAt,
		))
		return err
	})
	if err != nil {
		return nil, translatePGError(err)
	}
	return updated, nil
}

// Delete removes the user and reports whether a row was deleted.
func (r *PGRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanPGUser(row pgx.Row) (*User, error) {
	var (
		user  User
		roles []string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.EmailValidated, &user.PasswordHash,
		&roles, &user.Image, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Roles = stringsToRoles(roles)
	return &user, nil
}

func translatePGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return shared.ErrDuplicateEmail
	}
	return err
}

func rolesToStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

func stringsToRoles(values []string) []Role {
	out := make([]Role, len(values))
	for i, v := range values {
		out[i] = Role(v)
	}
	return out
}

var _ Store = (*PGRepository)(nil)
