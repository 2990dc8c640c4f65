package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hrconsole/internal/transport/http/api"
	"hrconsole/internal/transport/http/middleware"
)

// DecodeJSON reads the request body into dst. An empty body leaves dst
// untouched. It writes the 400 itself and reports false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}
