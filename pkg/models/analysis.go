package models

import "time"

// RecommendationAnalysis is the structured output of the enhanced analysis
// path. ExecutiveSummary and StrategicApproach are required; when the model
// response was incomplete they are synthesized and FieldsDefaulted is set so
// consumers can tell a fully-derived answer from a partially-synthesized one.
type RecommendationAnalysis struct {
	ExecutiveSummary        string   `json:"executive_summary"`
	StrategicApproach       []string `json:"strategic_approach"`
	DetailedMethods         []string `json:"detailed_methods,omitempty"`
	RiskMitigation          []string `json:"risk_mitigation,omitempty"`
	TimelineRecommendations string   `json:"timeline_recommendations,omitempty"`
	SuccessMetrics          []string `json:"success_metrics,omitempty"`
	CulturalConsiderations  []string `json:"cultural_considerations,omitempty"`

	// ConfidenceScore is the model's self-reported confidence, when present.
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`

	// FieldsDefaulted is set when the fallback parser or required-field
	// synthesis had to fill in missing content.
	FieldsDefaulted bool `json:"fields_defaulted,omitempty"`

	// Degraded is set when the analysis was produced without a provider call
	// (no credential configured).
	Degraded bool `json:"degraded,omitempty"`
}

// QuickAnalysisInput carries the project features the quick scorer consumes.
type QuickAnalysisInput struct {
	ProjectType     string     `json:"project_type"`
	Description     string     `json:"description"`
	LocationDetails JSONBMap   `json:"location_details"`
	Stakeholders    []string   `json:"stakeholders"`
	RiskFactors     []string   `json:"risk_factors"`
	BudgetRange     string     `json:"budget_range,omitempty"`
	TimelineStart   *time.Time `json:"timeline_start,omitempty"`
	TimelineEnd     *time.Time `json:"timeline_end,omitempty"`
}

// QuickAnalysisResult is the output of the quick (no external call) strategy.
type QuickAnalysisResult struct {
	ConfidenceScore       float64       `json:"confidence_score"`
	RiskLevel             string        `json:"risk_level"`
	RiskScore             float64       `json:"risk_score"`
	CulturalCompatibility float64       `json:"cultural_compatibility"`
	Complexity            float64       `json:"complexity"`
	RecommendedApproaches []string      `json:"recommended_approaches"`
	KeyConsiderations     []string      `json:"key_considerations"`
	EstimatedSuccessRate  float64       `json:"estimated_success_rate"`
	ProcessingTime        time.Duration `json:"processing_time"`

	// ColdStart is set when the scorer ran on randomized weights because no
	// weight snapshot artifact was available at process start.
	ColdStart bool `json:"cold_start,omitempty"`
}

// QuickAnalysisOutcome is the observed result of a project fed back to the
// quick scorer for future training.
type QuickAnalysisOutcome struct {
	SuccessRate     float64 `json:"success_rate"`
	ActualRiskLevel string  `json:"actual_risk_level"`
	CulturalIssues  bool    `json:"cultural_issues"`
}

// CulturalAnalysis is the structured output of cultural content analysis used
// during knowledge ingestion.
type CulturalAnalysis struct {
	CulturalElements     []string `json:"cultural_elements"`
	ImportanceLevel      string   `json:"importance_level"`
	CulturalContext      string   `json:"cultural_context"`
	Recommendations      []string `json:"recommendations"`
	PotentialRisks       []string `json:"potential_risks"`
	TraditionalPractices []string `json:"traditional_practices"`
	Degraded             bool     `json:"degraded,omitempty"`
}

// FeedbackAnalysis is the structured output of the provider's feedback
// analysis mode consumed by the recalibrator.
type FeedbackAnalysis struct {
	Insights     []string `json:"insights"`
	Improvements []string `json:"improvements"`
	Lessons      []string `json:"lessons"`
}
