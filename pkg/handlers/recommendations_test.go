package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/llm"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

func newRecommendationsHandler(svc *mockRecommendationService, rec *mockRecalibrator) (*RecommendationsHandler, *http.ServeMux) {
	h := NewRecommendationsHandler(svc, rec, zap.NewNop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func authedRequest(method, target string, body []byte, ownerID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(OwnerIDHeader, ownerID.String())
	return req
}

func TestRecommendations_Generate(t *testing.T) {
	svc := &mockRecommendationService{}
	_, mux := newRecommendationsHandler(svc, &mockRecalibrator{})

	ownerID := uuid.New()
	projectID := uuid.New()
	body, _ := json.Marshal(map[string]interface{}{
		"project_id":    projectID.String(),
		"analysis_type": "quick",
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/recommendations/generate", body, ownerID))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if svc.lastOwnerID != ownerID {
		t.Errorf("expected owner %s passed to service, got %s", ownerID, svc.lastOwnerID)
	}
	if svc.lastRequest.ProjectID != projectID {
		t.Errorf("expected project %s in request, got %s", projectID, svc.lastRequest.ProjectID)
	}
	if svc.lastRequest.AnalysisType != "quick" {
		t.Errorf("expected analysis_type quick, got %q", svc.lastRequest.AnalysisType)
	}

	var response models.Recommendation
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != models.RecommendationStatusGenerated {
		t.Errorf("expected status generated, got %q", response.Status)
	}
}

func TestRecommendations_Generate_MissingUserHeader(t *testing.T) {
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, &mockRecalibrator{})

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations/generate", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRecommendations_Generate_InvalidBody(t *testing.T) {
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, &mockRecalibrator{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/recommendations/generate", []byte("{not json"), uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestRecommendations_Generate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apperrors.NewValidationError("analysis_type", "unknown analysis type"), http.StatusBadRequest},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden},
		{"provider auth", llm.NewError(llm.ErrorTypeAuth, "authentication failed", false, nil), http.StatusBadGateway},
		{"provider rate limit", llm.NewError(llm.ErrorTypeRateLimit, "rate limited", true, nil), http.StatusServiceUnavailable},
		{"provider timeout", fmt.Errorf("enhanced analysis: %w", llm.NewError(llm.ErrorTypeTimeout, "request timeout", true, nil)), http.StatusServiceUnavailable},
		{"internal", errors.New("pool exhausted"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRecommendationService{err: tc.err}
			_, mux := newRecommendationsHandler(svc, &mockRecalibrator{})

			body, _ := json.Marshal(map[string]string{"project_id": uuid.New().String()})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/recommendations/generate", body, uuid.New()))

			if rec.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRecommendations_Get(t *testing.T) {
	svc := &mockRecommendationService{}
	_, mux := newRecommendationsHandler(svc, &mockRecalibrator{})

	recommendationID := uuid.New()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/recommendations/"+recommendationID.String(), nil, uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if svc.lastGetID != recommendationID {
		t.Errorf("expected id %s passed to service, got %s", recommendationID, svc.lastGetID)
	}
}

func TestRecommendations_Get_InvalidID(t *testing.T) {
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, &mockRecalibrator{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/recommendations/not-a-uuid", nil, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestRecommendations_SubmitFeedback(t *testing.T) {
	recalibrator := &mockRecalibrator{}
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, recalibrator)

	ownerID := uuid.New()
	recommendationID := uuid.New()
	body, _ := json.Marshal(FeedbackRequest{
		Rating:                4,
		FeedbackText:          "worked well with the village head",
		ImplementationSuccess: "successful",
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost,
		"/api/recommendations/"+recommendationID.String()+"/feedback", body, ownerID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	fb := recalibrator.lastFeedback
	if fb == nil {
		t.Fatal("expected feedback passed to recalibrator")
	}
	if fb.RecommendationID != recommendationID {
		t.Errorf("expected recommendation id from path, got %s", fb.RecommendationID)
	}
	if fb.UserID != ownerID {
		t.Errorf("expected user id from header, got %s", fb.UserID)
	}
	if fb.Rating != 4 {
		t.Errorf("expected rating 4, got %d", fb.Rating)
	}
	if fb.ImplementationSuccess != models.ImplementationSuccessful {
		t.Errorf("expected implementation success 'successful', got %q", fb.ImplementationSuccess)
	}
}

func TestRecommendations_SubmitFeedback_ValidationError(t *testing.T) {
	recalibrator := &mockRecalibrator{err: apperrors.NewValidationError("rating", "rating must be between 1 and 5")}
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, recalibrator)

	body, _ := json.Marshal(FeedbackRequest{Rating: 9})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost,
		"/api/recommendations/"+uuid.New().String()+"/feedback", body, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestRecommendations_FeedbackSummary(t *testing.T) {
	recalibrator := &mockRecalibrator{
		summary: &models.FeedbackSummary{
			TotalFeedback: 3,
			AverageRating: 3.67,
		},
	}
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, recalibrator)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet,
		"/api/recommendations/"+uuid.New().String()+"/feedback/summary", nil, uuid.New()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var summary models.FeedbackSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if summary.TotalFeedback != 3 {
		t.Errorf("expected 3 total feedback, got %d", summary.TotalFeedback)
	}
}

func TestRecommendations_FeedbackSummary_NotOwner(t *testing.T) {
	recalibrator := &mockRecalibrator{err: apperrors.ErrNotFound}
	_, mux := newRecommendationsHandler(&mockRecommendationService{}, recalibrator)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodGet,
		"/api/recommendations/"+uuid.New().String()+"/feedback/summary", nil, uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
