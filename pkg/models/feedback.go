package models

import (
	"time"

	"github.com/google/uuid"
)

// ImplementationSuccess describes the reported outcome of acting on a
// recommendation.
type ImplementationSuccess string

const (
	ImplementationNotImplemented ImplementationSuccess = "not_implemented"
	ImplementationFailed         ImplementationSuccess = "failed"
	ImplementationPartial        ImplementationSuccess = "partial"
	ImplementationSuccessful     ImplementationSuccess = "successful"
	ImplementationExceeded       ImplementationSuccess = "exceeded"
)

// IsValid reports whether s is a known implementation outcome.
func (s ImplementationSuccess) IsValid() bool {
	switch s {
	case ImplementationNotImplemented, ImplementationFailed,
		ImplementationPartial, ImplementationSuccessful, ImplementationExceeded:
		return true
	}
	return false
}

// IsSuccess reports whether the outcome counts as a success for
// recalibration. Only "successful" and "exceeded" qualify.
func (s ImplementationSuccess) IsSuccess() bool {
	return s == ImplementationSuccessful || s == ImplementationExceeded
}

// Feedback is a user's post-hoc assessment of a recommendation. There is one
// logical feedback per (recommendation, user); resubmission updates the
// existing row.
type Feedback struct {
	ID                    uuid.UUID             `json:"id"`
	RecommendationID      uuid.UUID             `json:"recommendation_id"`
	UserID                uuid.UUID             `json:"user_id"`
	Rating                int                   `json:"rating"`
	FeedbackText          string                `json:"feedback_text,omitempty"`
	ImplementationSuccess ImplementationSuccess `json:"implementation_success,omitempty"`
	OutcomeDetails        string                `json:"outcome_details,omitempty"`
	LessonsLearned        string                `json:"lessons_learned,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// FeedbackSummary is the per-recommendation aggregate read model exposed to
// the feedback UI.
type FeedbackSummary struct {
	TotalFeedback             int               `json:"total_feedback"`
	AverageRating             float64           `json:"average_rating"`
	ImplementationSuccessRate float64           `json:"implementation_success_rate"`
	SuccessfulImplementations int               `json:"successful_implementations"`
	TotalImplementations      int               `json:"total_implementations"`
	RecentFeedback            []*RecentFeedback `json:"recent_feedback"`
}

// RecentFeedback is a truncated view of one feedback row in a summary.
type RecentFeedback struct {
	Rating                int                   `json:"rating"`
	ImplementationSuccess ImplementationSuccess `json:"implementation_success,omitempty"`
	OutcomeSummary        string                `json:"outcome_summary,omitempty"`
	LessonsSummary        string                `json:"lessons_summary,omitempty"`
	Date                  time.Time             `json:"date"`
}
