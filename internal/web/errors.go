package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), which picks the status from the error
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is returned as JSON

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/sheetcheck/internal/core"
	"github.com/JonMunkholm/sheetcheck/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns a JSON body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		File:    core.FailingFile(err),
	})
}

// writeError writes a JSON error for a fixed message, such as a malformed
// request, mapped through the same user-message table.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	userMsg := core.MapError(errors.New(message))

	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"reason", message,
	)

	resp := ErrorResponse{
		Error:   message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if userMsg.Code == "ERR000" {
		resp.Message = message
		resp.Action = ""
		resp.Code = "REQ000"
	}
	writeJSON(w, status, resp)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var fre *core.FileReadError
	var ese *core.EmptySheetError

	switch {
	case errors.Is(err, core.ErrIngestNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrIngestInProgress),
		errors.Is(err, core.ErrNotIdle),
		errors.Is(err, core.ErrCancelled):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyIngestions):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &fre), errors.As(err, &ese):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoFiles),
		errors.Is(err, errInvalidForm),
		errors.Is(err, core.ErrTooManyFiles),
		errors.Is(err, core.ErrUnknownProfile),
		errors.Is(err, core.ErrRowOutOfRange),
		errors.Is(err, core.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
