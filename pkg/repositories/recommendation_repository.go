package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/database"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// RecommendationRepository defines the interface for recommendation data
// access.
type RecommendationRepository interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	// GetByIDForOwner retrieves a recommendation and verifies the caller owns
	// the parent project.
	GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Recommendation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Recommendation, error)
	// UpdateConfidenceAndMetadata commits a recalibration result.
	UpdateConfidenceAndMetadata(ctx context.Context, id uuid.UUID, confidence float64, metadata models.JSONBMap) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// recommendationRepository implements RecommendationRepository using
// PostgreSQL.
type recommendationRepository struct {
	db *database.DB
}

// NewRecommendationRepository creates a new recommendation repository.
func NewRecommendationRepository(db *database.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

const recommendationColumns = `r.id, r.project_id, r.title, r.executive_summary,
	r.strategic_approach, r.detailed_methods, r.risk_mitigation,
	r.timeline_recommendations, r.success_metrics, r.cultural_considerations,
	r.confidence_score, r.analysis_metadata, r.status, r.created_at, r.updated_at`

// Create inserts a new recommendation.
func (r *recommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = models.RecommendationStatusGenerated
	}

	query := `
		INSERT INTO engine_recommendations (id, project_id, title, executive_summary,
			strategic_approach, detailed_methods, risk_mitigation,
			timeline_recommendations, success_metrics, cultural_considerations,
			confidence_score, analysis_metadata, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.ProjectID,
		rec.Title,
		rec.ExecutiveSummary,
		rec.StrategicApproach,
		rec.DetailedMethods,
		rec.RiskMitigation,
		rec.TimelineRecommendations,
		rec.SuccessMetrics,
		rec.CulturalConsiderations,
		rec.ConfidenceScore,
		rec.AnalysisMetadata,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	return nil
}

// GetByIDForOwner retrieves a recommendation and checks project ownership in
// one round trip.
func (r *recommendationRepository) GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Recommendation, error) {
	query := fmt.Sprintf(`
		SELECT %s, p.owner_id
		FROM engine_recommendations r
		JOIN engine_projects p ON p.id = r.project_id
		WHERE r.id = $1`, recommendationColumns)

	var rec models.Recommendation
	var projectOwner uuid.UUID

	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.ProjectID,
		&rec.Title,
		&rec.ExecutiveSummary,
		&rec.StrategicApproach,
		&rec.DetailedMethods,
		&rec.RiskMitigation,
		&rec.TimelineRecommendations,
		&rec.SuccessMetrics,
		&rec.CulturalConsiderations,
		&rec.ConfidenceScore,
		&rec.AnalysisMetadata,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&projectOwner,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}

	if projectOwner != ownerID {
		return nil, apperrors.ErrPermissionDenied
	}

	return &rec, nil
}

// GetByID retrieves a recommendation without an ownership check. Internal
// callers only.
func (r *recommendationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Recommendation, error) {
	query := fmt.Sprintf(`SELECT %s FROM engine_recommendations r WHERE r.id = $1`, recommendationColumns)

	rec, err := scanRecommendation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}
	return rec, nil
}

// ListByProject retrieves all recommendations for a project, newest first.
func (r *recommendationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Recommendation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM engine_recommendations r
		WHERE r.project_id = $1
		ORDER BY r.created_at DESC`, recommendationColumns)

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}
	return recs, nil
}

// UpdateConfidenceAndMetadata writes the recalibrated confidence score and
// the recomputed feedback metrics in one statement.
func (r *recommendationRepository) UpdateConfidenceAndMetadata(ctx context.Context, id uuid.UUID, confidence float64, metadata models.JSONBMap) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE engine_recommendations
		 SET confidence_score = $1, analysis_metadata = $2, updated_at = now()
		 WHERE id = $3`,
		confidence, metadata, id)
	if err != nil {
		return fmt.Errorf("failed to update recommendation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the recommendation status.
func (r *recommendationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE engine_recommendations SET status = $1, updated_at = now() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update recommendation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanRecommendation(row pgx.Row) (*models.Recommendation, error) {
	var rec models.Recommendation
	err := row.Scan(
		&rec.ID,
		&rec.ProjectID,
		&rec.Title,
		&rec.ExecutiveSummary,
		&rec.StrategicApproach,
		&rec.DetailedMethods,
		&rec.RiskMitigation,
		&rec.TimelineRecommendations,
		&rec.SuccessMetrics,
		&rec.CulturalConsiderations,
		&rec.ConfidenceScore,
		&rec.AnalysisMetadata,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
