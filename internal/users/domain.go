package users

import (
	"errors"
	"fmt"
	"time"
)

// Role is a permission level attached to a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ErrInvalidRole is returned for role values outside the known set.
var ErrInvalidRole = errors.New("invalid role")

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// NormalizeRoles applies the default role set and rejects unknown values.
// Duplicates are collapsed, order is kept.
func NormalizeRoles(roles []Role) ([]Role, error) {
	if len(roles) == 0 {
		return []Role{RoleUser}, nil
	}
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// User is the persisted user record. PasswordHash never leaves the service
// layer; callers receive a Profile instead.
type User struct {
	ID             string
	Name           string
	Email          string
	EmailValidated bool
	PasswordHash   string
	Roles          []Role
	Image          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the caller-facing view of a user.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmailValidated bool      `json:"emailValidated"`
	Roles          []Role    `json:"role"`
	Image          *string   `json:"img,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Profile strips credentials from u.
func (u *User) Profile() Profile {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return Profile{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmailValidated: u.EmailValidated,
		Roles:          roles,
		Image:          u.Image,
		CreatedAt:      u.CreatedAt,
	}
}

// Validate checks the invariants every store enforces before writing.
func (u *User) Validate() error {
	switch {
	case u.Name == "":
		return errors.New("users: name is required")
	case u.Email == "":
		return errors.New("users: email is required")
	case u.PasswordHash == "":
		return errors.New("users: password hash is required")
	}
	if len(u.Roles) == 0 {
		return fmt.Errorf("%w: role set is empty", ErrInvalidRole)
	}
	for _, r := range u.Roles {
		if !r.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
		}
	}
	return nil
}

// Update lists optional field changes. Nil fields are left untouched.
type Update struct {
	Name           *string
	Email          *string
	EmailValidated *bool
	PasswordHash   *string
	Roles          []Role
	Image          *string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Email == nil && u.EmailValidated == nil &&
		u.PasswordHash == nil && u.Roles == nil && u.Image == nil
}

// Apply writes the changes onto a copy of user and validates the result.
func (u Update) Apply(user User, now time.Time) (User, error) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.EmailValidated != nil {
		user.EmailValidated = *u.EmailValidated
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Roles != nil {
		roles, err := NormalizeRoles(u.Roles)
		if err != nil {
			return User{}, err
		}
		user.Roles = roles
	}
	if u.Image != nil {
		user.Image = u.Image
	}
	user.UpdatedAt = now
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	return user, nil
}
