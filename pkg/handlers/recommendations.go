package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/services"
)

// RecommendationsHandler handles recommendation generation, reads, and the
// feedback loop.
type RecommendationsHandler struct {
	recommendations services.RecommendationService
	recalibrator    services.Recalibrator
	logger          *zap.Logger
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(
	recommendations services.RecommendationService,
	recalibrator services.Recalibrator,
	logger *zap.Logger,
) *RecommendationsHandler {
	return &RecommendationsHandler{
		recommendations: recommendations,
		recalibrator:    recalibrator,
		logger:          logger,
	}
}

// RegisterRoutes registers the recommendations handler's routes on the given mux.
func (h *RecommendationsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/recommendations/generate", h.Generate)
	mux.HandleFunc("GET /api/recommendations/{rid}", h.Get)
	mux.HandleFunc("POST /api/recommendations/{rid}/feedback", h.SubmitFeedback)
	mux.HandleFunc("GET /api/recommendations/{rid}/feedback/summary", h.FeedbackSummary)
}

// Generate handles POST /api/recommendations/generate
// Runs one analysis (quick or enhanced) for the caller's project and returns
// the persisted recommendation.
func (h *RecommendationsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(w, r, h.logger)
	if !ok {
		return
	}

	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	recommendation, err := h.recommendations.Generate(r.Context(), ownerID, &req)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, recommendation); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/recommendations/{rid}
// Returns one recommendation owned by the caller.
func (h *RecommendationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(w, r, h.logger)
	if !ok {
		return
	}
	recommendationID, ok := ParseRecommendationID(w, r, h.logger)
	if !ok {
		return
	}

	recommendation, err := h.recommendations.Get(r.Context(), recommendationID, ownerID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, recommendation); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// FeedbackRequest is the request body for submitting feedback.
type FeedbackRequest struct {
	Rating                int    `json:"rating"`
	FeedbackText          string `json:"feedback_text"`
	ImplementationSuccess string `json:"implementation_success"`
	OutcomeDetails        string `json:"outcome_details"`
	LessonsLearned        string `json:"lessons_learned"`
}

// SubmitFeedback handles POST /api/recommendations/{rid}/feedback
// Stores the caller's feedback and triggers recalibration.
func (h *RecommendationsHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(w, r, h.logger)
	if !ok {
		return
	}
	recommendationID, ok := ParseRecommendationID(w, r, h.logger)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	feedback := &models.Feedback{
		RecommendationID:      recommendationID,
		UserID:                ownerID,
		Rating:                req.Rating,
		FeedbackText:          req.FeedbackText,
		ImplementationSuccess: models.ImplementationSuccess(req.ImplementationSuccess),
		OutcomeDetails:        req.OutcomeDetails,
		LessonsLearned:        req.LessonsLearned,
	}

	if err := h.recalibrator.SubmitFeedback(r.Context(), feedback); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "success"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// FeedbackSummary handles GET /api/recommendations/{rid}/feedback/summary
// Returns the per-recommendation feedback aggregate.
func (h *RecommendationsHandler) FeedbackSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(w, r, h.logger)
	if !ok {
		return
	}
	recommendationID, ok := ParseRecommendationID(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.recalibrator.Summary(r.Context(), recommendationID, ownerID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
