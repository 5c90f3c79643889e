// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-directory/internal/utils/validate"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases and for
// confirmations that carry no record.
//
// Success responses for records are the records themselves (an object or
// an array). Everything else looks like:
//
//	{ "status": "error", "error": "student not found" }
//	{ "status": "ok", "detail": "student deleted successfully" }
//
// Fields is only set for validation failures and is keyed by JSON field name.
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK builds a confirmation with a human-readable detail.
func OK(detail string) Response {
	return Response{
		Status: StatusOK,
		Detail: detail,
	}
}

// GeneralError wraps any Go error into our standard Response shape.
// Only pass errors whose message is safe to show to a client.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts validator.ValidationErrors into a Response.
//
// Error joins every message (sorted by field, so the output is stable)
// and Fields keeps them per field for clients that want to highlight
// individual inputs:
//
//	{
//	  "status": "error",
//	  "error":  "email is a required field, name is a required field",
//	  "fields": { "email": "email is a required field", "name": "name is a required field" }
//	}
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	fields := validate.Translate(errs)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	errMessages := make([]string, 0, len(names))
	for _, name := range names {
		errMessages = append(errMessages, fields[name])
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
		Fields: fields,
	}
}
