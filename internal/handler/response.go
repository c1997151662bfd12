package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Gopi-techy/SkillSlate/internal/apperror"
	"github.com/Gopi-techy/SkillSlate/internal/github"
)

// The API carries two error envelopes, matching what the frontend expects:
// the auth and GitHub endpoints answer {"message": ...} while the portfolio
// and AI endpoints answer {"success": false, "message": ...}. Both get a
// "code" when the error carries a machine-readable one and an "errors" map
// for per-field validation failures.

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError sends a domain error in the {"message": ...} envelope.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	writeJSON(w, status, body)
}

// writeEnvelopeError sends a domain error in the {"success": false, ...}
// envelope.
func writeEnvelopeError(w http.ResponseWriter, err error) {
	status, body := errorBody(err)
	body["success"] = false
	writeJSON(w, status, body)
}

// errorBody maps a domain error to an HTTP status and the shared response
// fields. Unclassified errors become a generic 500 without leaking internals.
func errorBody(err error) (int, map[string]any) {
	var status int
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		// The client treats these as request-level failures, code included.
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUpstream):
		status = http.StatusBadGateway
	default:
		return http.StatusInternalServerError, map[string]any{
			"message": "An unexpected error occurred",
		}
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body := map[string]any{"message": appErr.Message}
		if appErr.Code != "" {
			body["code"] = appErr.Code
		}
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		return status, body
	}

	// Classified errors without an AppError wrapper. The GitHub client's
	// *APIError unwraps to ErrUpstream; its message is GitHub's own text and
	// goes to the client as-is.
	var apiErr *github.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return status, map[string]any{"message": apiErr.Message}
	}
	return status, map[string]any{"message": err.Error()}
}
