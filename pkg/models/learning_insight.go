package models

import (
	"time"

	"github.com/google/uuid"
)

// InsightCategory classifies a learning insight derived from feedback.
type InsightCategory string

const (
	InsightSuccessPattern    InsightCategory = "success_pattern"
	InsightFailurePattern    InsightCategory = "failure_pattern"
	InsightCulturalFactor    InsightCategory = "cultural_factor"
	InsightImplementationTip InsightCategory = "implementation_tip"
)

// IsValid reports whether c is a known insight category.
func (c InsightCategory) IsValid() bool {
	switch c {
	case InsightSuccessPattern, InsightFailurePattern,
		InsightCulturalFactor, InsightImplementationTip:
		return true
	}
	return false
}

// LearningInsight is an append-only text fact derived from implementation
// feedback, kept for future prompt construction. The source recommendation
// reference is nullable so insights survive recommendation deletion.
type LearningInsight struct {
	ID                     uuid.UUID       `json:"id"`
	Category               InsightCategory `json:"category"`
	Content                string          `json:"content"`
	ConfidenceLevel        float64         `json:"confidence_level"`
	SourceRecommendationID *uuid.UUID      `json:"source_recommendation_id,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}
