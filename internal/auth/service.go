package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-auth/internal/auth/duration"
	"github.com/odyssey-erp/odyssey-auth/internal/auth/password"
	"github.com/odyssey-erp/odyssey-auth/internal/auth/token"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	repo   users.Repository
	hasher *password.Hasher
	issuer *token.Issuer
	apiKey string
}

// NewService constructs a new Service.
func NewService(repo users.Repository, hasher *password.Hasher, issuer *token.Issuer, apiKey string) (*Service, error) {
	switch {
	case repo == nil:
		return nil, errors.New("auth: repository must be provided")
	case hasher == nil:
		return nil, errors.New("auth: hasher must be provided")
	case issuer == nil:
		return nil, errors.New("auth: token issuer must be provided")
	case apiKey == "":
		return nil, errors.New("auth: api key must be provided")
	}
	return &Service{repo: repo, hasher: hasher, issuer: issuer, apiKey: apiKey}, nil
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// ValidateAPIKey checks the key presented by a client.
func (s *Service) ValidateAPIKey(key string) error {
	return compareAPIKey(s.apiKey, key)
}

// RegisterUser creates an account and returns it with a token of the
// default lifetime.
func (s *Service) RegisterUser(ctx context.Context, reg Registration) (*Result, error) {
	_, err := s.repo.FindByEmail(ctx, reg.creds.email)
	switch {
	case err == nil:
		return nil, shared.ErrDuplicateEmail
	case !errors.Is(err, shared.ErrNotFound):
		return nil, internal(err)
	}

	digest, err := s.hasher.Hash(reg.creds.password)
	if err != nil {
		return nil, internal(err)
	}

	created, err := s.repo.Create(ctx, &users.User{
		Name:         reg.name,
		Email:        reg.creds.email,
		PasswordHash: digest,
		Roles:        reg.roles,
		Image:        reg.image,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, internal(err)
	}

	signed, err := s.issuer.Issue(created.ID, created.Email, 0)
	if err != nil {
		return nil, internal(err)
	}
	return &Result{User: created.Profile(), Token: signed}, nil
}

// LoginUser checks credentials and issues a token living for lifetime, a
// duration string such as "1d 3h 25m". The lifetime is parsed before the
// store is consulted. Unknown emails and wrong passwords are indistinguishable.
func (s *Service) LoginUser(ctx context.Context, creds Credentials, lifetime string) (*Result, error) {
	spec, err := duration.Parse(lifetime)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, creds.email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, internal(err)
	}
	if !s.hasher.Verify(creds.password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}

	signed, err := s.issuer.Issue(user.ID, user.Email, spec.Duration())
	if err != nil {
		return nil, internal(err)
	}
	return &Result{User: user.Profile(), Token: signed}, nil
}

// Authenticate verifies a bearer token and returns the caller it names.
func (s *Service) Authenticate(raw string) (shared.Principal, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return shared.Principal{}, err
	}
	return shared.Principal{UserID: claims.UserID, Email: claims.Email}, nil
}

// ValidateEmail marks the account named by a verification token as having a
// confirmed email. Repeating the call is harmless.
func (s *Service) ValidateEmail(ctx context.Context, raw string) (*Result, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, internal(err)
	}
	if user.EmailValidated {
		return &Result{User: user.Profile()}, nil
	}

	validated := true
	updated, err := s.repo.Update(ctx, user.ID, users.Update{EmailValidated: &validated})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, internal(err)
	}
	return &Result{User: updated.Profile()}, nil
}

// CurrentUser loads the account of an authenticated caller.
func (s *Service) CurrentUser(ctx context.Context, principal shared.Principal) (*Result, error) {
	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, internal(err)
	}
	return &Result{User: user.Profile()}, nil
}
