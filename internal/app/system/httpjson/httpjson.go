// Package httpjson decodes JSON request bodies for the API handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 64 << 10

// Decode reads r's body into v. Malformed, empty or oversized bodies become a
// validation error. Unknown fields are ignored.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("Request body is required")
		case errors.As(err, &tooBig):
			return apperr.Validation("Request body is too large")
		default:
			return apperr.Validation("Invalid JSON body")
		}
	}
	return nil
}
