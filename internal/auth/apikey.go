package auth

import "crypto/subtle"

// HeaderAPIKey carries the shared client key on gated routes.
const HeaderAPIKey = "X-API-Key"

func compareAPIKey(expected, presented string) error {
	if presented == "" {
		return ErrMissingAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) != 1 {
		return ErrInvalidAPIKey
	}
	return nil
}
