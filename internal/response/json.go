package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Writer converts errors to JSON responses. With Debug enabled, unexpected
// errors carry their cause in the body; in production they collapse to the
// generic 500 shape.
type Writer struct {
	Debug bool
}

// Error writes err as a JSON error response. A response.Error is rendered
// as-is; anything else becomes ErrServerError.
func (wr Writer) Error(w http.ResponseWriter, err error) {
	var respErr Error
	if !errors.As(err, &respErr) {
		respErr = ErrServerError
		if wr.Debug {
			respErr = respErr.WithError(err)
		}
	}
	JSON(w, respErr.Status, respErr)
}
