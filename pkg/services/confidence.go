package services

import (
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// ConfidenceScorer estimates how much to trust a generated recommendation
// from the evidence that went into it.
type ConfidenceScorer interface {
	// Score computes a confidence in [0.1, 1.0] from the amount of matched
	// wisdom, project completeness, and the model's self-reported confidence
	// when present.
	Score(wisdomCount int, project *models.Project, modelConfidence *float64) float64
}

type confidenceScorer struct{}

// NewConfidenceScorer creates the evidence-based confidence scorer.
func NewConfidenceScorer() ConfidenceScorer {
	return &confidenceScorer{}
}

var _ ConfidenceScorer = (*confidenceScorer)(nil)

func (s *confidenceScorer) Score(wisdomCount int, project *models.Project, modelConfidence *float64) float64 {
	confidence := 0.5

	// Wisdom evidence: only the highest bracket applies.
	switch {
	case wisdomCount >= 10:
		confidence += 0.2
	case wisdomCount >= 5:
		confidence += 0.1
	case wisdomCount >= 2:
		confidence += 0.05
	}

	if project != nil {
		if project.ProjectType != "" {
			confidence += 0.1
		}
		if len(project.Stakeholders) > 0 {
			confidence += 0.1
		}
		if len(project.LocationDetails) > 1 {
			confidence += 0.1
		}
	}

	// The model's own estimate averages in rather than overriding; neither
	// side dominates.
	if modelConfidence != nil {
		confidence = (confidence + *modelConfidence) / 2
	}

	return clamp(confidence, 0.1, 1.0)
}
