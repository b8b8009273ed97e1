package auth

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrMissingAPIKey is returned when a gated call carries no API key.
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrInvalidAPIKey is returned when the presented key does not match.
	ErrInvalidAPIKey = errors.New("api key is invalid")
	// ErrInternal wraps unexpected store, hashing and signing failures.
	ErrInternal = errors.New("internal error")
)

// ValidationError lists rejected input fields keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
