package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lab1702/solar-web/apperr"
)

// ErrorResponse represents the JSON error response sent to clients
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// writeError logs err at a level matching its type and sends it as JSON
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorType := apperr.GetType(err)
	statusCode := statusFor(errorType)

	logCtx := logger.With(
		"method", r.Method,
		"path", r.URL.Path,
		"error_type", errorType,
		"status_code", statusCode,
	)
	switch errorType {
	case apperr.TypeNotFound, apperr.TypeValidation:
		logCtx.Debug("Request rejected", "error", err)
	case apperr.TypeExternal:
		logCtx.Warn("External service error", "error", err)
	default:
		logCtx.Error("Internal server error", "error", err)
	}

	writeJSON(w, statusCode, ErrorResponse{
		Error:   string(errorType),
		Message: err.Error(),
		Code:    statusCode,
	})
}

func statusFor(errorType apperr.ErrorType) int {
	switch errorType {
	case apperr.TypeNotFound:
		return http.StatusNotFound
	case apperr.TypeValidation:
		return http.StatusBadRequest
	case apperr.TypeExternal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		// The status is already sent; nothing useful to do with an encode error
		_ = json.NewEncoder(w).Encode(data)
	}
}
