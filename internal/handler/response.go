package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nbarreto/gamereel/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns: a machine-readable
// type plus a human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent by now; logging is all that's left.
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError maps a domain error onto an HTTP status. The service layer only
// speaks apperror sentinels; this is the single place they become codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUnavailable):
			status = http.StatusServiceUnavailable
			errorType = "unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown error: never leak internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON reads the request body into dst, rejecting malformed input with
// a validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
