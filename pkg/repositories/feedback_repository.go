package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duahurufo/exeloka-engine/pkg/database"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// FeedbackRepository defines the interface for feedback data access.
type FeedbackRepository interface {
	// Upsert inserts a feedback row or replaces the caller's prior feedback
	// for the same recommendation.
	Upsert(ctx context.Context, feedback *models.Feedback) error
	ListByRecommendation(ctx context.Context, recommendationID uuid.UUID) ([]*models.Feedback, error)
}

// feedbackRepository implements FeedbackRepository using PostgreSQL.
type feedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db *database.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert inserts or updates feedback keyed on (recommendation_id, user_id).
// Resubmission keeps the original created_at and row identity.
func (r *feedbackRepository) Upsert(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}

	now := time.Now()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	query := `
		INSERT INTO engine_feedback (id, recommendation_id, user_id, rating,
			feedback_text, implementation_success, outcome_details, lessons_learned,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)
		ON CONFLICT (recommendation_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    feedback_text = EXCLUDED.feedback_text,
		    implementation_success = EXCLUDED.implementation_success,
		    outcome_details = EXCLUDED.outcome_details,
		    lessons_learned = EXCLUDED.lessons_learned,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		feedback.ID,
		feedback.RecommendationID,
		feedback.UserID,
		feedback.Rating,
		feedback.FeedbackText,
		string(feedback.ImplementationSuccess),
		feedback.OutcomeDetails,
		feedback.LessonsLearned,
		feedback.CreatedAt,
		feedback.UpdatedAt,
	).Scan(&feedback.ID, &feedback.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}

	return nil
}

// ListByRecommendation retrieves all feedback for a recommendation, newest
// first.
func (r *feedbackRepository) ListByRecommendation(ctx context.Context, recommendationID uuid.UUID) ([]*models.Feedback, error) {
	query := `
		SELECT id, recommendation_id, user_id, rating,
			COALESCE(feedback_text, ''), COALESCE(implementation_success, ''),
			COALESCE(outcome_details, ''), COALESCE(lessons_learned, ''),
			created_at, updated_at
		FROM engine_feedback
		WHERE recommendation_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	return scanFeedbackRows(rows)
}

func scanFeedbackRows(rows pgx.Rows) ([]*models.Feedback, error) {
	var items []*models.Feedback
	for rows.Next() {
		var fb models.Feedback
		var success string
		err := rows.Scan(
			&fb.ID,
			&fb.RecommendationID,
			&fb.UserID,
			&fb.Rating,
			&fb.FeedbackText,
			&success,
			&fb.OutcomeDetails,
			&fb.LessonsLearned,
			&fb.CreatedAt,
			&fb.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		fb.ImplementationSuccess = models.ImplementationSuccess(success)
		items = append(items, &fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}
	return items, nil
}
