package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OwnerIDHeader carries the authenticated user's id. Token verification
// happens upstream; this service trusts the header contract.
const OwnerIDHeader = "X-User-ID"

// ParseRecommendationID extracts and validates the recommendation ID from the
// request path. Returns the parsed UUID and true on success, or uuid.Nil and
// false on error (after writing an error response).
// Expects path parameter: rid
func ParseRecommendationID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	return parseUUID(w, r, "rid", "invalid_recommendation_id", "Invalid recommendation ID format", logger)
}

// OwnerID extracts and validates the caller's user ID from the request
// headers. Returns uuid.Nil and false after writing a 401 when the header is
// missing or malformed.
func OwnerID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	raw := r.Header.Get(OwnerIDHeader)
	if raw == "" {
		if err := ErrorResponse(w, http.StatusUnauthorized, "missing_user_id", "X-User-ID header required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "invalid_user_id", "Invalid X-User-ID header"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// parseUUID is the internal helper that does the actual parsing work.
func parseUUID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue(pathParam)
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, errorCode, errorMessage); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
