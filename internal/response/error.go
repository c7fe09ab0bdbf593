package response

import (
	"encoding/json"
	"net/http"
)

// Error is a structured error response implementing the error interface.
// Code lands in the JSON "error" field; Details are flattened into the
// top-level object so bodies like {error, message, origin, allowedOrigins}
// keep their wire shape.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

// Predefined errors covering the subsystem's failure taxonomy.
var (
	// ErrUnauthenticated rejects requests without a valid authenticated session.
	ErrUnauthenticated = Error{Status: http.StatusUnauthorized, Code: "unauthenticated", Message: "Authentication required"}
	// ErrForbidden rejects requests from a principal that does not own the resource.
	ErrForbidden = Error{Status: http.StatusForbidden, Code: "forbidden", Message: "You do not have permission to modify this resource"}
	// ErrNotFound reports an absent resource without leaking an ownership distinction.
	ErrNotFound = Error{Status: http.StatusNotFound, Code: "Resource not found"}
	// ErrCORSRejected reports an origin outside the allow-list.
	ErrCORSRejected = Error{Status: http.StatusForbidden, Code: "CORS Error"}
	// ErrOwnershipCheck reports a backing-store failure during the ownership lookup.
	ErrOwnershipCheck = Error{Status: http.StatusInternalServerError, Code: "Server error during authorization check"}
	// ErrValidation rejects malformed or invalid request payloads.
	ErrValidation = Error{Status: http.StatusBadRequest, Code: "validation_error", Message: "Invalid request payload"}
	// ErrServerError is the default for unexpected failures.
	ErrServerError = Error{Status: http.StatusInternalServerError, Code: "server_error", Message: "Internal server error"}
)

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// WithMessage returns a copy of the error with a custom message.
func (e Error) WithMessage(message string) Error {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional top-level fields.
func (e Error) WithDetails(details map[string]any) Error {
	e.Details = details
	return e
}

// WithError returns a copy of the error carrying the cause under "cause".
// Only used outside production; production responses never expose causes.
func (e Error) WithError(err error) Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

// MarshalJSON flattens Code, Message and Details into one object.
func (e Error) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Details)+2)
	out["error"] = e.Code
	if e.Message != "" {
		out["message"] = e.Message
	}
	for k, v := range e.Details {
		out[k] = v
	}
	return json.Marshal(out)
}
