package apperr

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type body struct {
	Error bodyError `json:"error"`
}

type bodyError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// Write renders err as the error envelope. Internal errors are logged with
// their cause; clients only see the generic message.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	appErr := From(err)
	if appErr.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	WriteJSON(w, appErr.Status, body{Error: bodyError{
		Code:    appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	}})
}
