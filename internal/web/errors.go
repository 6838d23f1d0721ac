package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/makt28/alertrelay/internal/notify"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// classify maps a relay failure to an HTTP status and response body.
func classify(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, notify.ErrNotReady):
		return http.StatusServiceUnavailable, errorResponse{Error: "Bot is not ready"}
	case errors.Is(err, notify.ErrChannelNotFound):
		return http.StatusNotFound, errorResponse{Error: "Channel not found"}
	}

	if code, ok := notify.ErrorCode(err); ok {
		switch code {
		case notify.CodeUnknownChannel:
			return http.StatusNotFound, errorResponse{Error: "Channel not found"}
		case notify.CodeMissingPermissions:
			return http.StatusForbidden, errorResponse{Error: "Missing permissions"}
		case notify.CodeInvalidFormBody:
			return http.StatusBadRequest, errorResponse{Error: "Invalid form body"}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorResponse{Error: "Platform request timed out", Details: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Details: err.Error()}
}

// respondPlatformError logs err and writes its classified response.
func respondPlatformError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	slog.Error("alert relay failed",
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
