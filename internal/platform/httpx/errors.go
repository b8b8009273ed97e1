package httpx

import (
	"errors"
	"net/http"
)

// ErrMalformedBody is returned by DecodeJSON.
var ErrMalformedBody = errors.New("malformed request body")

// RespondError writes the fallback problem for errors a handler did not map
// itself. Unknown errors become a 500 without detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMalformedBody):
		Problem(w, http.StatusBadRequest, "Bad Request", ErrMalformedBody.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
