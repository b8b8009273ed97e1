package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-auth/internal/auth/password"
	"github.com/odyssey-erp/odyssey-auth/internal/users"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string       `json:"name" validate:"required,max=120"`
	Email    string       `json:"email" validate:"required,email,max=254"`
	Password string       `json:"password" validate:"required,min=6,max=72"`
	Roles    []users.Role `json:"role" validate:"omitempty,dive,oneof=ADMIN USER"`
	Image    *string      `json:"img" validate:"omitempty,max=2048"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Credentials is a validated email/password pair.
type Credentials struct {
	email    string
	password string
}

// Email returns the login email.
func (c Credentials) Email() string { return c.email }

// Registration is a validated sign-up request.
type Registration struct {
	name  string
	creds Credentials
	roles []users.Role
	image *string
}

// NewCredentials validates req and builds Credentials.
func NewCredentials(req LoginRequest) (Credentials, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := check(req); err != nil {
		return Credentials{}, err
	}
	if err := checkPasswordBytes(req.Password); err != nil {
		return Credentials{}, err
	}
	return Credentials{email: req.Email, password: req.Password}, nil
}

// NewRegistration validates req, applies the default role and builds a
// Registration.
func NewRegistration(req RegisterRequest) (Registration, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := check(req); err != nil {
		return Registration{}, err
	}
	if err := checkPasswordBytes(req.Password); err != nil {
		return Registration{}, err
	}
	roles, err := users.NormalizeRoles(req.Roles)
	if err != nil {
		return Registration{}, &ValidationError{Fields: map[string]string{"role": "must be one of ADMIN, USER"}}
	}
	return Registration{
		name:  req.Name,
		creds: Credentials{email: req.Email, password: req.Password},
		roles: roles,
		image: req.Image,
	}, nil
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("auth: validate input: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := fields[field]; !seen {
			fields[field] = describe(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

// The validator counts runes; bcrypt's ceiling is in bytes.
func checkPasswordBytes(pw string) error {
	if len(pw) > password.MaxLength {
		return &ValidationError{Fields: map[string]string{"password": fmt.Sprintf("must be at most %d bytes", password.MaxLength)}}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

// Result is returned by register and login. Token is empty for calls that
// only look a user up.
type Result struct {
	User  users.Profile `json:"user"`
	Token string        `json:"token,omitempty"`
}
