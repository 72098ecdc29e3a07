package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
	"github.com/duahurufo/exeloka-engine/pkg/services"
)

// mockRecommendationService is a configurable mock for handler tests.
type mockRecommendationService struct {
	recommendation *models.Recommendation
	err            error

	lastOwnerID uuid.UUID
	lastRequest *models.GenerationRequest
	lastGetID   uuid.UUID
}

func (m *mockRecommendationService) Generate(ctx context.Context, ownerID uuid.UUID, req *models.GenerationRequest) (*models.Recommendation, error) {
	m.lastOwnerID = ownerID
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	if m.recommendation != nil {
		return m.recommendation, nil
	}
	return &models.Recommendation{
		ID:        uuid.New(),
		ProjectID: req.ProjectID,
		Title:     "Recommendations for Test Project",
		Status:    models.RecommendationStatusGenerated,
	}, nil
}

func (m *mockRecommendationService) Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Recommendation, error) {
	m.lastGetID = id
	m.lastOwnerID = ownerID
	if m.err != nil {
		return nil, m.err
	}
	if m.recommendation != nil {
		return m.recommendation, nil
	}
	return &models.Recommendation{ID: id, Status: models.RecommendationStatusGenerated}, nil
}

// mockRecalibrator is a configurable mock for the feedback endpoints.
type mockRecalibrator struct {
	summary  *models.FeedbackSummary
	insights []*models.LearningInsight
	err      error

	lastFeedback *models.Feedback
	lastFilter   repositories.InsightFilter
}

func (m *mockRecalibrator) SubmitFeedback(ctx context.Context, feedback *models.Feedback) error {
	m.lastFeedback = feedback
	return m.err
}

func (m *mockRecalibrator) Summary(ctx context.Context, recommendationID, ownerID uuid.UUID) (*models.FeedbackSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &models.FeedbackSummary{}, nil
}

func (m *mockRecalibrator) Insights(ctx context.Context, filter repositories.InsightFilter) ([]*models.LearningInsight, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.insights, nil
}

// mockIngestionService is a configurable mock for the knowledge endpoints.
type mockIngestionService struct {
	result   *services.IngestionResult
	batchErr error
	err      error

	lastRequest *services.IngestionRequest
	lastBatch   []*services.IngestionRequest
}

func (m *mockIngestionService) Ingest(ctx context.Context, req *services.IngestionRequest) (*services.IngestionResult, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &services.IngestionResult{SourceID: uuid.New(), Title: req.Title, EntriesCreated: 1}, nil
}

func (m *mockIngestionService) IngestBatch(ctx context.Context, reqs []*services.IngestionRequest) []services.BatchIngestionResult {
	m.lastBatch = reqs
	results := make([]services.BatchIngestionResult, len(reqs))
	for i, req := range reqs {
		results[i].Title = req.Title
		if m.batchErr != nil && i == 0 {
			results[i].Err = m.batchErr
			continue
		}
		results[i].Result = &services.IngestionResult{SourceID: uuid.New(), Title: req.Title, EntriesCreated: 2}
	}
	return results
}
