package web

// errors.go turns handler errors into JSON responses.
//
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status comes from statusFor, the message from core.MapError
//  4. The technical error is logged with the request id
//  5. The client gets {"error", "action", "code"}

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/csvapi/internal/catalog"
	"github.com/JonMunkholm/csvapi/internal/core"
	"github.com/JonMunkholm/csvapi/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// errBadJSON marks request bodies that are not the expected JSON document.
var errBadJSON = errors.New("request body is not valid JSON")

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	var (
		ve      *catalog.ValidationError
		maxErr  *http.MaxBytesError
		filterE *core.FilterError
	)

	switch {
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInputRejected), errors.Is(err, errBadJSON), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateISBN):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &filterE), errors.Is(err, core.ErrIngestFailed):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessage maps catalog errors, then falls back to core.MapError.
func userMessage(err error) core.UserMessage {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		return core.UserMessage{
			Message: ve.Error(),
			Action:  "Provide isbn, title and author of at most 150 characters",
			Code:    "BOOK001",
		}
	case errors.Is(err, catalog.ErrDuplicateISBN):
		return core.UserMessage{
			Message: "A book with this ISBN already exists",
			Action:  "Use a different ISBN",
			Code:    "BOOK002",
		}
	case errors.Is(err, errBadJSON):
		return core.UserMessage{
			Message: err.Error(),
			Action:  "Send a JSON object with Content-Type application/json",
			Code:    "REQ001",
		}
	}
	return core.MapError(err)
}

// respondError logs err and writes the mapped JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := userMessage(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	writeJSON(w, r, status, ErrorResponse{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// writeJSON encodes v as the response body with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// messageResponse is the body of informational responses.
type messageResponse struct {
	Message string `json:"message"`
}
