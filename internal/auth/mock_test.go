package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/auth/password"
	"github.com/odyssey-erp/odyssey-auth/internal/auth/token"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
	_ "github.com/odyssey-erp/odyssey-auth/testing"
)

const (
	testAPIKey = "test-api-key"
	testSecret = "test-jwt-secret"
)

type memRepo struct {
	mu     sync.Mutex
	byID   map[string]users.User
	nextID int

	// hideOnLookup makes FindByEmail miss existing records, simulating a
	// concurrent registration that lands between lookup and insert.
	hideOnLookup bool
	findErr      error
	createErr    error
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]users.User{}}
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.hideOnLookup {
		return nil, shared.ErrNotFound
	}
	for _, u := range m.byID {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memRepo) FindByID(ctx context.Context, id string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (m *memRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	for _, u := range m.byID {
		if u.Email == user.Email {
			return nil, shared.ErrDuplicateEmail
		}
	}
	m.nextID++
	record := *user
	record.ID = fmt.Sprintf("user-%d", m.nextID)
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	m.byID[record.ID] = record
	return &record, nil
}

func (m *memRepo) Update(ctx context.Context, id string, changes users.Update) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	next, err := changes.Apply(current, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	m.byID[id] = next
	return &next, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

func newTestService(t *testing.T, repo users.Repository) (*auth.Service, *token.Issuer) {
	t.Helper()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := token.New(testSecret, 2*time.Hour)
	require.NoError(t, err)
	svc, err := auth.NewService(repo, hasher, issuer, testAPIKey)
	require.NoError(t, err)
	return svc, issuer
}

func mustRegistration(t *testing.T, name, email, pw string) auth.Registration {
	t.Helper()
	reg, err := auth.NewRegistration(auth.RegisterRequest{Name: name, Email: email, Password: pw})
	require.NoError(t, err)
	return reg
}

func mustCredentials(t *testing.T, email, pw string) auth.Credentials {
	t.Helper()
	creds, err := auth.NewCredentials(auth.LoginRequest{Email: email, Password: pw})
	require.NoError(t, err)
	return creds
}
