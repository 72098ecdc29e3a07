package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/llm"
	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
)

type stubRecommendationRepo struct {
	rec *models.Recommendation

	statusUpdates      []string
	updatedConfidence  *float64
	updatedMetadata    models.JSONBMap
	getErr             error
	updateConfErr      error
	createdRecs        []*models.Recommendation
	createErr          error
	listByProjectItems []*models.Recommendation
}

func (s *stubRecommendationRepo) Create(ctx context.Context, rec *models.Recommendation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdRecs = append(s.createdRecs, rec)
	return nil
}

func (s *stubRecommendationRepo) GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Recommendation, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.rec, nil
}

func (s *stubRecommendationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	return s.rec, nil
}

func (s *stubRecommendationRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Recommendation, error) {
	return s.listByProjectItems, nil
}

func (s *stubRecommendationRepo) UpdateConfidenceAndMetadata(ctx context.Context, id uuid.UUID, confidence float64, metadata models.JSONBMap) error {
	if s.updateConfErr != nil {
		return s.updateConfErr
	}
	s.updatedConfidence = &confidence
	s.updatedMetadata = metadata
	return nil
}

func (s *stubRecommendationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

type stubFeedbackRepo struct {
	rows      []*models.Feedback
	upsertErr error
	listErr   error
	upserted  []*models.Feedback
}

func (s *stubFeedbackRepo) Upsert(ctx context.Context, feedback *models.Feedback) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, feedback)
	return nil
}

func (s *stubFeedbackRepo) ListByRecommendation(ctx context.Context, recommendationID uuid.UUID) ([]*models.Feedback, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.rows, nil
}

type stubInsightRepo struct {
	appended  []*models.LearningInsight
	appendErr error
	listed    []*models.LearningInsight
}

func (s *stubInsightRepo) Append(ctx context.Context, insight *models.LearningInsight) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, insight)
	return nil
}

func (s *stubInsightRepo) List(ctx context.Context, filter repositories.InsightFilter) ([]*models.LearningInsight, error) {
	return s.listed, nil
}

func baseRecommendation(confidence float64) *models.Recommendation {
	return &models.Recommendation{
		ID:                uuid.New(),
		ProjectID:         uuid.New(),
		Title:             "Engagement plan",
		StrategicApproach: []string{"Meet the kyai"},
		ConfidenceScore:   confidence,
		AnalysisMetadata:  models.JSONBMap{"analysis_type": "enhanced"},
		Status:            models.RecommendationStatusGenerated,
	}
}

func feedbackAnalysisClient() *llm.MockClient {
	client := llm.NewMockClient()
	client.CompleteFunc = func(ctx context.Context, task llm.TaskType, systemMessage, prompt string) (*llm.CompletionResult, error) {
		return &llm.CompletionResult{
			Content: `{"insights": ["one insight"], "improvements": ["one improvement"], "lessons": ["one lesson"]}`,
			Model:   "mock-model",
		}, nil
	}
	return client
}

func newTestRecalibrator(recRepo *stubRecommendationRepo, fbRepo *stubFeedbackRepo, insights *stubInsightRepo, client llm.Client) Recalibrator {
	orch := NewOrchestrator(client, zap.NewNop())
	return NewRecalibrator(recRepo, fbRepo, insights, orch, zap.NewNop())
}

func validFeedback(rec *models.Recommendation, rating int, success models.ImplementationSuccess) *models.Feedback {
	return &models.Feedback{
		RecommendationID:      rec.ID,
		UserID:                uuid.New(),
		Rating:                rating,
		ImplementationSuccess: success,
	}
}

func TestSubmitFeedback_ConfidenceNudges(t *testing.T) {
	cases := []struct {
		name     string
		rating   int
		success  models.ImplementationSuccess
		start    float64
		expected float64
	}{
		{"reward on high rating and success", 5, models.ImplementationSuccessful, 0.8, 0.85},
		{"exceeded counts as success", 4, models.ImplementationExceeded, 0.8, 0.85},
		{"penalty on low rating", 1, "", 0.8, 0.7},
		{"penalty on failed implementation", 3, models.ImplementationFailed, 0.8, 0.7},
		{"no change on middling feedback", 3, models.ImplementationPartial, 0.8, 0.8},
		{"high rating without success is not rewarded", 5, models.ImplementationPartial, 0.8, 0.8},
		{"clamped at ceiling", 5, models.ImplementationSuccessful, 0.98, 1.0},
		{"clamped at floor", 1, models.ImplementationFailed, 0.12, 0.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := baseRecommendation(tc.start)
			recRepo := &stubRecommendationRepo{rec: rec}
			fbRepo := &stubFeedbackRepo{}
			insights := &stubInsightRepo{}
			fb := validFeedback(rec, tc.rating, tc.success)
			fbRepo.rows = []*models.Feedback{fb}

			r := newTestRecalibrator(recRepo, fbRepo, insights, feedbackAnalysisClient())
			require.NoError(t, r.SubmitFeedback(context.Background(), fb))

			require.NotNil(t, recRepo.updatedConfidence)
			assert.InDelta(t, tc.expected, *recRepo.updatedConfidence, 1e-9)
		})
	}
}

func TestSubmitFeedback_StatusTransitions(t *testing.T) {
	rec := baseRecommendation(0.8)
	recRepo := &stubRecommendationRepo{rec: rec}
	fbRepo := &stubFeedbackRepo{}
	fb := validFeedback(rec, 4, models.ImplementationSuccessful)
	fbRepo.rows = []*models.Feedback{fb}

	r := newTestRecalibrator(recRepo, fbRepo, &stubInsightRepo{}, feedbackAnalysisClient())
	require.NoError(t, r.SubmitFeedback(context.Background(), fb))

	assert.Equal(t, []string{
		models.RecommendationStatusRated,
		models.RecommendationStatusRecalibrated,
	}, recRepo.statusUpdates)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	rec := baseRecommendation(0.8)
	r := newTestRecalibrator(&stubRecommendationRepo{rec: rec}, &stubFeedbackRepo{}, &stubInsightRepo{}, nil)

	err := r.SubmitFeedback(context.Background(), validFeedback(rec, 0, ""))
	assert.True(t, apperrors.IsValidation(err))

	err = r.SubmitFeedback(context.Background(), validFeedback(rec, 6, ""))
	assert.True(t, apperrors.IsValidation(err))

	err = r.SubmitFeedback(context.Background(), validFeedback(rec, 3, "miraculous"))
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubmitFeedback_OwnershipErrorsPropagate(t *testing.T) {
	rec := baseRecommendation(0.8)
	recRepo := &stubRecommendationRepo{rec: rec, getErr: apperrors.ErrNotFound}
	r := newTestRecalibrator(recRepo, &stubFeedbackRepo{}, &stubInsightRepo{}, nil)

	err := r.SubmitFeedback(context.Background(), validFeedback(rec, 4, ""))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSubmitFeedback_UpsertErrorPropagates(t *testing.T) {
	rec := baseRecommendation(0.8)
	fbRepo := &stubFeedbackRepo{upsertErr: fmt.Errorf("connection lost")}
	r := newTestRecalibrator(&stubRecommendationRepo{rec: rec}, fbRepo, &stubInsightRepo{}, nil)

	err := r.SubmitFeedback(context.Background(), validFeedback(rec, 4, ""))
	require.Error(t, err)
}

func TestSubmitFeedback_RecalibrationFailureIsSwallowed(t *testing.T) {
	rec := baseRecommendation(0.8)
	recRepo := &stubRecommendationRepo{rec: rec}
	fbRepo := &stubFeedbackRepo{listErr: fmt.Errorf("query failed")}

	r := newTestRecalibrator(recRepo, fbRepo, &stubInsightRepo{}, nil)
	err := r.SubmitFeedback(context.Background(), validFeedback(rec, 4, ""))
	assert.NoError(t, err, "the feedback row is durable; recalibration failure stays internal")
}

func TestSubmitFeedback_MetadataCarriesMetrics(t *testing.T) {
	rec := baseRecommendation(0.8)
	recRepo := &stubRecommendationRepo{rec: rec}
	fb := validFeedback(rec, 4, models.ImplementationSuccessful)
	fbRepo := &stubFeedbackRepo{rows: []*models.Feedback{fb}}

	r := newTestRecalibrator(recRepo, fbRepo, &stubInsightRepo{}, feedbackAnalysisClient())
	require.NoError(t, r.SubmitFeedback(context.Background(), fb))

	require.NotNil(t, recRepo.updatedMetadata)
	assert.Equal(t, "enhanced", recRepo.updatedMetadata["analysis_type"], "existing metadata preserved")
	assert.Contains(t, recRepo.updatedMetadata, "feedback_metrics")
	assert.Contains(t, recRepo.updatedMetadata, "last_recalibrated_at")
}

func TestComputeFeedbackMetrics_FullSetRecompute(t *testing.T) {
	now := time.Now()
	rows := []*models.Feedback{
		{Rating: 5, ImplementationSuccess: models.ImplementationExceeded, UpdatedAt: now},
		{Rating: 4, ImplementationSuccess: models.ImplementationSuccessful, UpdatedAt: now.Add(-time.Hour)},
		{Rating: 2, ImplementationSuccess: models.ImplementationFailed, UpdatedAt: now.Add(-2 * time.Hour)},
		{Rating: 3, UpdatedAt: now.Add(-3 * time.Hour)},
	}

	metrics := computeFeedbackMetrics(rows)

	assert.Equal(t, 4, metrics.TotalFeedback)
	assert.InDelta(t, 3.5, metrics.AverageRating, 1e-9)
	assert.Equal(t, 2, metrics.SuccessCount)
	assert.InDelta(t, 0.5, metrics.ImplementationSuccessRate, 1e-9)

	require.Len(t, metrics.History, 4)
	// Chronological: oldest first.
	assert.Equal(t, 3, metrics.History[0].Rating)
	assert.Equal(t, 5, metrics.History[3].Rating)
}

func TestComputeFeedbackMetrics_HistoryCap(t *testing.T) {
	now := time.Now()
	var rows []*models.Feedback
	for i := 0; i < models.MaxFeedbackHistory+5; i++ {
		rows = append(rows, &models.Feedback{
			Rating:    (i % 5) + 1,
			UpdatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	metrics := computeFeedbackMetrics(rows)
	assert.Equal(t, models.MaxFeedbackHistory+5, metrics.TotalFeedback)
	assert.Len(t, metrics.History, models.MaxFeedbackHistory)
	// The newest event is last.
	assert.Equal(t, rows[0].Rating, metrics.History[len(metrics.History)-1].Rating)
}

func TestComputeFeedbackMetrics_Empty(t *testing.T) {
	metrics := computeFeedbackMetrics(nil)
	assert.Equal(t, 0, metrics.TotalFeedback)
	assert.Empty(t, metrics.History)
}

func TestDeriveInsights_Weights(t *testing.T) {
	rec := baseRecommendation(0.8)
	recRepo := &stubRecommendationRepo{rec: rec}
	insights := &stubInsightRepo{}
	fb := validFeedback(rec, 4, models.ImplementationSuccessful)
	fbRepo := &stubFeedbackRepo{rows: []*models.Feedback{fb}}

	r := newTestRecalibrator(recRepo, fbRepo, insights, feedbackAnalysisClient())
	require.NoError(t, r.SubmitFeedback(context.Background(), fb))

	require.Len(t, insights.appended, 3)
	byCategory := map[models.InsightCategory]*models.LearningInsight{}
	for _, insight := range insights.appended {
		byCategory[insight.Category] = insight
		require.NotNil(t, insight.SourceRecommendationID)
		assert.Equal(t, rec.ID, *insight.SourceRecommendationID)
	}

	assert.InDelta(t, insightWeightSuccessPattern, byCategory[models.InsightSuccessPattern].ConfidenceLevel, 1e-9)
	assert.InDelta(t, insightWeightImplementationTip, byCategory[models.InsightImplementationTip].ConfidenceLevel, 1e-9)
	assert.InDelta(t, insightWeightCulturalFactor, byCategory[models.InsightCulturalFactor].ConfidenceLevel, 1e-9)
}

func TestDeriveInsights_TrivialOnProviderFailure(t *testing.T) {
	rec := baseRecommendation(0.8)
	recRepo := &stubRecommendationRepo{rec: rec}
	insights := &stubInsightRepo{}
	fb := validFeedback(rec, 2, "")
	fbRepo := &stubFeedbackRepo{rows: []*models.Feedback{fb}}

	client := llm.NewMockClient()
	client.CompleteFunc = func(ctx context.Context, task llm.TaskType, systemMessage, prompt string) (*llm.CompletionResult, error) {
		return nil, llm.NewError(llm.ErrorTypeUnavailable, "provider down", true, nil)
	}

	r := newTestRecalibrator(recRepo, fbRepo, insights, client)
	require.NoError(t, r.SubmitFeedback(context.Background(), fb))

	require.Len(t, insights.appended, 3)
	assert.Contains(t, insights.appended[0].Content, "2/5")
}

func TestSummary_Aggregates(t *testing.T) {
	rec := baseRecommendation(0.8)
	now := time.Now()
	fbRepo := &stubFeedbackRepo{rows: []*models.Feedback{
		{Rating: 5, ImplementationSuccess: models.ImplementationSuccessful, OutcomeDetails: "went well", UpdatedAt: now},
		{Rating: 2, ImplementationSuccess: models.ImplementationFailed, UpdatedAt: now.Add(-time.Hour)},
		{Rating: 4, UpdatedAt: now.Add(-2 * time.Hour)},
	}}

	r := newTestRecalibrator(&stubRecommendationRepo{rec: rec}, fbRepo, &stubInsightRepo{}, nil)
	summary, err := r.Summary(context.Background(), rec.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFeedback)
	assert.InDelta(t, 3.67, summary.AverageRating, 1e-9)
	assert.Equal(t, 2, summary.TotalImplementations)
	assert.Equal(t, 1, summary.SuccessfulImplementations)
	assert.InDelta(t, 0.5, summary.ImplementationSuccessRate, 1e-9)
	assert.Len(t, summary.RecentFeedback, 3)
	assert.Equal(t, "went well", summary.RecentFeedback[0].OutcomeSummary)
}

func TestSummary_OwnershipChecked(t *testing.T) {
	recRepo := &stubRecommendationRepo{getErr: apperrors.ErrPermissionDenied}
	r := newTestRecalibrator(recRepo, &stubFeedbackRepo{}, &stubInsightRepo{}, nil)

	_, err := r.Summary(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestInsights_FilterValidation(t *testing.T) {
	insights := &stubInsightRepo{listed: []*models.LearningInsight{{Category: models.InsightCulturalFactor}}}
	r := newTestRecalibrator(&stubRecommendationRepo{}, &stubFeedbackRepo{}, insights, nil)

	listed, err := r.Insights(context.Background(), repositories.InsightFilter{Category: models.InsightCulturalFactor})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = r.Insights(context.Background(), repositories.InsightFilter{Category: "bogus"})
	assert.True(t, apperrors.IsValidation(err))
}
