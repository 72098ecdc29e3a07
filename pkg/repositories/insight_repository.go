package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duahurufo/exeloka-engine/pkg/database"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// InsightFilter narrows an insight listing. Zero values mean no filtering.
type InsightFilter struct {
	Category      models.InsightCategory
	MinConfidence float64
	Limit         int
}

// InsightRepository defines the interface for learning insight data access.
// The store is append-only.
type InsightRepository interface {
	Append(ctx context.Context, insight *models.LearningInsight) error
	List(ctx context.Context, filter InsightFilter) ([]*models.LearningInsight, error)
}

// insightRepository implements InsightRepository using PostgreSQL.
type insightRepository struct {
	db *database.DB
}

// NewInsightRepository creates a new insight repository.
func NewInsightRepository(db *database.DB) InsightRepository {
	return &insightRepository{db: db}
}

// Append inserts a learning insight.
func (r *insightRepository) Append(ctx context.Context, insight *models.LearningInsight) error {
	if insight.ID == uuid.Nil {
		insight.ID = uuid.New()
	}
	insight.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO engine_learning_insights
			(id, category, content, confidence_level, source_recommendation_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		insight.ID,
		string(insight.Category),
		insight.Content,
		insight.ConfidenceLevel,
		insight.SourceRecommendationID,
		insight.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append insight: %w", err)
	}
	return nil
}

// List retrieves insights matching the filter, newest first.
func (r *insightRepository) List(ctx context.Context, filter InsightFilter) ([]*models.LearningInsight, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, category, content, confidence_level, source_recommendation_id, created_at
		FROM engine_learning_insights
		WHERE ($1 = '' OR category = $1)
		  AND confidence_level >= $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, string(filter.Category), filter.MinConfidence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var insights []*models.LearningInsight
	for rows.Next() {
		var insight models.LearningInsight
		var category string
		err := rows.Scan(
			&insight.ID,
			&category,
			&insight.Content,
			&insight.ConfidenceLevel,
			&insight.SourceRecommendationID,
			&insight.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insight.Category = models.InsightCategory(category)
		insights = append(insights, &insight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read insights: %w", err)
	}
	return insights, nil
}
