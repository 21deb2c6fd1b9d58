package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxRequestBodyBytes = 1 << 20

// decodeJSONBody reads a single JSON object into dst. An empty body leaves
// dst untouched.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("body must not be larger than %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}

	if dec.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
