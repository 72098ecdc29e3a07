package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation status values. A recommendation starts as generated, becomes
// rated when the first feedback arrives, and recalibrated once the feedback
// loop has adjusted it. Further feedback cycles back through rated.
const (
	RecommendationStatusGenerated    = "generated"
	RecommendationStatusRated        = "rated"
	RecommendationStatusRecalibrated = "recalibrated"
)

// Analysis strategy tags recorded in recommendation metadata.
const (
	AnalysisTypeQuick    = "quick"
	AnalysisTypeEnhanced = "enhanced"
)

// Recommendation is the persisted output of a generation request. It is
// created exactly once per generation call; only the Feedback Recalibrator
// updates it afterwards (confidence score and metadata).
type Recommendation struct {
	ID                      uuid.UUID `json:"id"`
	ProjectID               uuid.UUID `json:"project_id"`
	Title                   string    `json:"title"`
	ExecutiveSummary        string    `json:"executive_summary"`
	StrategicApproach       []string  `json:"strategic_approach"`
	DetailedMethods         []string  `json:"detailed_methods"`
	RiskMitigation          []string  `json:"risk_mitigation"`
	TimelineRecommendations string    `json:"timeline_recommendations"`
	SuccessMetrics          []string  `json:"success_metrics"`
	CulturalConsiderations  []string  `json:"cultural_considerations"`
	ConfidenceScore         float64   `json:"confidence_score"`
	AnalysisMetadata        JSONBMap  `json:"analysis_metadata"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// FeedbackEvent is one entry in the rolling feedback history kept on a
// recommendation's metadata.
type FeedbackEvent struct {
	Rating  int    `json:"rating"`
	Success string `json:"success,omitempty"`
	Date    string `json:"date"`
}

// FeedbackMetrics is the running aggregate the recalibrator maintains on a
// recommendation's metadata. It is always recomputed from the full feedback
// set at commit time, never incrementally patched.
type FeedbackMetrics struct {
	TotalFeedback             int             `json:"total_feedback"`
	AverageRating             float64         `json:"average_rating"`
	SuccessCount              int             `json:"success_count"`
	ImplementationSuccessRate float64         `json:"implementation_success_rate"`
	History                   []FeedbackEvent `json:"feedback_history"`
}

// MaxFeedbackHistory caps the rolling history kept in FeedbackMetrics.
const MaxFeedbackHistory = 10
