package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/testhelpers"
)

func createTestRecommendation(t *testing.T, engineDB *testhelpers.EngineDB) *models.Recommendation {
	t.Helper()
	ctx := context.Background()

	project := newTestProject(uuid.New())
	require.NoError(t, NewProjectRepository(engineDB.DB).Create(ctx, project))

	rec := &models.Recommendation{
		ProjectID:         project.ID,
		Title:             "Engagement plan",
		ExecutiveSummary:  "Engage religious leaders before breaking ground",
		StrategicApproach: []string{"meet the kyai", "hold a community forum"},
		ConfidenceScore:   0.7,
		AnalysisMetadata:  models.JSONBMap{"analysis_type": models.AnalysisTypeEnhanced},
	}
	require.NoError(t, NewRecommendationRepository(engineDB.DB).Create(ctx, rec))
	return rec
}

func TestFeedbackRepository_UpsertReplacesExisting(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	repo := NewFeedbackRepository(engineDB.DB)
	ctx := context.Background()

	rec := createTestRecommendation(t, engineDB)
	userID := uuid.New()

	first := &models.Feedback{
		RecommendationID:      rec.ID,
		UserID:                userID,
		Rating:                3,
		ImplementationSuccess: models.ImplementationPartial,
	}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &models.Feedback{
		RecommendationID:      rec.ID,
		UserID:                userID,
		Rating:                5,
		ImplementationSuccess: models.ImplementationSuccessful,
		LessonsLearned:        "early engagement paid off",
	}
	require.NoError(t, repo.Upsert(ctx, second))

	items, err := repo.ListByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, items, 1, "resubmission must not create a second row")

	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, 5, items[0].Rating)
	assert.Equal(t, models.ImplementationSuccessful, items[0].ImplementationSuccess)
	assert.Equal(t, "early engagement paid off", items[0].LessonsLearned)
}

func TestFeedbackRepository_DistinctUsers(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	repo := NewFeedbackRepository(engineDB.DB)
	ctx := context.Background()

	rec := createTestRecommendation(t, engineDB)

	for _, rating := range []int{2, 4} {
		fb := &models.Feedback{
			RecommendationID: rec.ID,
			UserID:           uuid.New(),
			Rating:           rating,
		}
		require.NoError(t, repo.Upsert(ctx, fb))
	}

	items, err := repo.ListByRecommendation(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRecommendationRepository_OwnerChecks(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	ctx := context.Background()

	ownerID := uuid.New()
	project := newTestProject(ownerID)
	require.NoError(t, NewProjectRepository(engineDB.DB).Create(ctx, project))

	repo := NewRecommendationRepository(engineDB.DB)
	rec := &models.Recommendation{
		ProjectID:        project.ID,
		Title:            "Plan",
		ExecutiveSummary: "Summary",
		ConfidenceScore:  0.5,
	}
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.GetByIDForOwner(ctx, rec.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.RecommendationStatusGenerated, got.Status)

	_, err = repo.GetByIDForOwner(ctx, rec.ID, uuid.New())
	assert.Error(t, err)
}

func TestRecommendationRepository_UpdateConfidenceAndMetadata(t *testing.T) {
	engineDB := testhelpers.GetEngineDB(t)
	repo := NewRecommendationRepository(engineDB.DB)
	ctx := context.Background()

	rec := createTestRecommendation(t, engineDB)

	metadata := models.JSONBMap{
		"feedback_metrics": map[string]interface{}{"total_feedback": 1},
	}
	require.NoError(t, repo.UpdateConfidenceAndMetadata(ctx, rec.ID, 0.75, metadata))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.ConfidenceScore, 1e-9)
	assert.Contains(t, got.AnalysisMetadata, "feedback_metrics")
}
