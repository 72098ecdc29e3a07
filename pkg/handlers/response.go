package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/llm"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps a service error onto the HTTP taxonomy: validation
// 400, missing 404, ownership 403, provider credential 502, transient
// provider failure 503, everything else 500 with a generic message.
func WriteServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var ve *apperrors.ValidationError
	var writeErr error

	switch {
	case errors.As(err, &ve):
		writeErr = ErrorResponse(w, http.StatusBadRequest, "validation_failed", ve.Error())

	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", "Resource not found")

	case errors.Is(err, apperrors.ErrPermissionDenied):
		writeErr = ErrorResponse(w, http.StatusForbidden, "permission_denied", "You do not own this resource")

	default:
		switch llm.GetErrorType(err) {
		case llm.ErrorTypeAuth:
			writeErr = ErrorResponse(w, http.StatusBadGateway, "provider_auth_failed",
				"Completion provider rejected the configured credential")
		case llm.ErrorTypeRateLimit, llm.ErrorTypeTimeout, llm.ErrorTypeUnavailable:
			writeErr = ErrorResponse(w, http.StatusServiceUnavailable, "provider_unavailable",
				"Completion provider is temporarily unavailable")
		default:
			logger.Error("Unhandled service error", zap.Error(err))
			writeErr = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal error")
		}
	}

	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
