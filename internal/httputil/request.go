package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ParseJSON decodes JSON from the request body into the given destination.
// The body is capped at maxBytes; anything larger is answered with 413 by the server.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
