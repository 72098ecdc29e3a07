package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
	"github.com/duahurufo/exeloka-engine/pkg/services"
)

// InsightsHandler exposes the learning insights derived from feedback.
type InsightsHandler struct {
	recalibrator services.Recalibrator
	logger       *zap.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(recalibrator services.Recalibrator, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{recalibrator: recalibrator, logger: logger}
}

// RegisterRoutes registers the insights handler's routes on the given mux.
func (h *InsightsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/insights", h.List)
}

// List handles GET /api/insights
// Query parameters: category, min_confidence, limit.
func (h *InsightsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := OwnerID(w, r, h.logger); !ok {
		return
	}

	filter := repositories.InsightFilter{
		Category: models.InsightCategory(r.URL.Query().Get("category")),
	}

	if raw := r.URL.Query().Get("min_confidence"); raw != "" {
		minConfidence, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_min_confidence", "min_confidence must be a number"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		filter.MinConfidence = minConfidence
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		filter.Limit = limit
	}

	insights, err := h.recalibrator.Insights(r.Context(), filter)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"insights": insights,
		"count":    len(insights),
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
