package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
)

// Confidence nudges applied per feedback submission.
const (
	confidenceReward  = 0.05
	confidencePenalty = 0.1
)

// Insight confidence weights by provenance within a feedback analysis.
const (
	insightWeightSuccessPattern    = 0.7
	insightWeightImplementationTip = 0.6
	insightWeightCulturalFactor    = 0.8
)

const recentFeedbackSummaryLen = 100

// Recalibrator runs the feedback loop: it records user feedback, recomputes
// the recommendation's aggregate metrics and confidence, and derives learning
// insights.
type Recalibrator interface {
	// SubmitFeedback validates and stores feedback, then recalibrates the
	// recommendation. Recalibration and insight derivation are best effort;
	// only validation and the feedback write itself can fail the call.
	SubmitFeedback(ctx context.Context, feedback *models.Feedback) error
	// Summary builds the per-recommendation feedback aggregate for its owner.
	Summary(ctx context.Context, recommendationID, ownerID uuid.UUID) (*models.FeedbackSummary, error)
	Insights(ctx context.Context, filter repositories.InsightFilter) ([]*models.LearningInsight, error)
}

type recalibrator struct {
	recommendationRepo repositories.RecommendationRepository
	feedbackRepo       repositories.FeedbackRepository
	insightRepo        repositories.InsightRepository
	orchestrator       Orchestrator
	logger             *zap.Logger
}

// NewRecalibrator creates the feedback recalibrator.
func NewRecalibrator(
	recommendationRepo repositories.RecommendationRepository,
	feedbackRepo repositories.FeedbackRepository,
	insightRepo repositories.InsightRepository,
	orchestrator Orchestrator,
	logger *zap.Logger,
) Recalibrator {
	return &recalibrator{
		recommendationRepo: recommendationRepo,
		feedbackRepo:       feedbackRepo,
		insightRepo:        insightRepo,
		orchestrator:       orchestrator,
		logger:             logger.Named("recalibrator"),
	}
}

var _ Recalibrator = (*recalibrator)(nil)

func (r *recalibrator) SubmitFeedback(ctx context.Context, feedback *models.Feedback) error {
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return apperrors.NewValidationError("rating", "must be between 1 and 5")
	}
	if feedback.ImplementationSuccess != "" && !feedback.ImplementationSuccess.IsValid() {
		return apperrors.NewValidationError("implementation_success", "unknown outcome value")
	}

	rec, err := r.recommendationRepo.GetByIDForOwner(ctx, feedback.RecommendationID, feedback.UserID)
	if err != nil {
		return err
	}

	if err := r.feedbackRepo.Upsert(ctx, feedback); err != nil {
		return fmt.Errorf("store feedback: %w", err)
	}

	if err := r.recommendationRepo.UpdateStatus(ctx, rec.ID, models.RecommendationStatusRated); err != nil {
		r.logger.Error("Failed to mark recommendation rated",
			zap.String("recommendation_id", rec.ID.String()),
			zap.Error(err))
	}

	// Recalibration failures never surface to the submitter; the feedback row
	// is already durable.
	if err := r.recalibrate(ctx, rec, feedback); err != nil {
		r.logger.Error("Recalibration failed",
			zap.String("recommendation_id", rec.ID.String()),
			zap.Error(err))
	}

	r.deriveInsights(ctx, rec, feedback)
	return nil
}

// recalibrate recomputes the aggregate metrics from the full feedback set and
// applies the confidence nudge for the submitted feedback.
func (r *recalibrator) recalibrate(ctx context.Context, rec *models.Recommendation, feedback *models.Feedback) error {
	all, err := r.feedbackRepo.ListByRecommendation(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("list feedback: %w", err)
	}

	metrics := computeFeedbackMetrics(all)

	confidence := adjustConfidence(rec.ConfidenceScore, feedback)

	metadata := rec.AnalysisMetadata
	if metadata == nil {
		metadata = models.JSONBMap{}
	}
	metadata["feedback_metrics"] = metrics
	metadata["last_recalibrated_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := r.recommendationRepo.UpdateConfidenceAndMetadata(ctx, rec.ID, confidence, metadata); err != nil {
		return fmt.Errorf("commit recalibration: %w", err)
	}
	if err := r.recommendationRepo.UpdateStatus(ctx, rec.ID, models.RecommendationStatusRecalibrated); err != nil {
		return fmt.Errorf("mark recalibrated: %w", err)
	}

	r.logger.Info("Recommendation recalibrated",
		zap.String("recommendation_id", rec.ID.String()),
		zap.Float64("confidence", confidence),
		zap.Float64("average_rating", metrics.AverageRating),
		zap.Int("total_feedback", metrics.TotalFeedback))
	return nil
}

// adjustConfidence applies the per-feedback nudge: strong positive feedback
// earns a small reward, poor ratings or a failed implementation a larger
// penalty. The result stays in [0.1, 1.0].
func adjustConfidence(current float64, feedback *models.Feedback) float64 {
	switch {
	case feedback.Rating >= 4 && feedback.ImplementationSuccess.IsSuccess():
		current += confidenceReward
	case feedback.Rating <= 2 || feedback.ImplementationSuccess == models.ImplementationFailed:
		current -= confidencePenalty
	}
	return clamp(current, 0.1, 1.0)
}

// computeFeedbackMetrics recomputes the aggregate from the full feedback set.
// rows arrive newest first; the rolling history keeps the latest
// MaxFeedbackHistory events in chronological order.
func computeFeedbackMetrics(rows []*models.Feedback) *models.FeedbackMetrics {
	metrics := &models.FeedbackMetrics{
		TotalFeedback: len(rows),
		History:       []models.FeedbackEvent{},
	}
	if len(rows) == 0 {
		return metrics
	}

	var ratingSum int
	for _, fb := range rows {
		ratingSum += fb.Rating
		if fb.ImplementationSuccess.IsSuccess() {
			metrics.SuccessCount++
		}
	}
	metrics.AverageRating = round2(float64(ratingSum) / float64(len(rows)))
	metrics.ImplementationSuccessRate = round2(float64(metrics.SuccessCount) / float64(len(rows)))

	recent := rows
	if len(recent) > models.MaxFeedbackHistory {
		recent = recent[:models.MaxFeedbackHistory]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		metrics.History = append(metrics.History, models.FeedbackEvent{
			Rating:  recent[i].Rating,
			Success: string(recent[i].ImplementationSuccess),
			Date:    recent[i].UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return metrics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// deriveInsights analyzes the feedback through the provider and appends the
// results to the insight store. A failed provider call degrades to a trivial
// analysis built from the rating alone.
func (r *recalibrator) deriveInsights(ctx context.Context, rec *models.Recommendation, feedback *models.Feedback) {
	analysis := r.analyzeFeedback(ctx, rec, feedback)

	recID := rec.ID
	appendAll := func(category models.InsightCategory, weight float64, contents []string) {
		for _, content := range contents {
			insight := &models.LearningInsight{
				Category:               category,
				Content:                content,
				ConfidenceLevel:        weight,
				SourceRecommendationID: &recID,
			}
			if err := r.insightRepo.Append(ctx, insight); err != nil {
				r.logger.Error("Failed to store learning insight",
					zap.String("category", string(category)),
					zap.Error(err))
			}
		}
	}

	appendAll(models.InsightSuccessPattern, insightWeightSuccessPattern, analysis.Insights)
	appendAll(models.InsightImplementationTip, insightWeightImplementationTip, analysis.Improvements)
	appendAll(models.InsightCulturalFactor, insightWeightCulturalFactor, analysis.Lessons)
}

func (r *recalibrator) analyzeFeedback(ctx context.Context, rec *models.Recommendation, feedback *models.Feedback) *models.FeedbackAnalysis {
	original, err := json.MarshalIndent(map[string]interface{}{
		"title":                   rec.Title,
		"strategic_approach":      rec.StrategicApproach,
		"cultural_considerations": rec.CulturalConsiderations,
		"confidence_score":        rec.ConfidenceScore,
	}, "", "  ")
	if err != nil {
		original = []byte(rec.Title)
	}

	var details []string
	for _, part := range []string{feedback.FeedbackText, feedback.OutcomeDetails, feedback.LessonsLearned} {
		if strings.TrimSpace(part) != "" {
			details = append(details, part)
		}
	}

	outcome := feedback.OutcomeDetails
	if outcome == "" {
		success := string(feedback.ImplementationSuccess)
		if success == "" {
			success = "unknown"
		}
		outcome = fmt.Sprintf("Rating: %d/5, Success: %s", feedback.Rating, success)
	}

	analysis, err := r.orchestrator.AnalyzeFeedback(ctx,
		string(original), strings.Join(details, "\n\n"), outcome, feedback.Rating)
	if err != nil {
		r.logger.Error("Feedback analysis failed, storing trivial insight",
			zap.String("recommendation_id", rec.ID.String()),
			zap.Error(err))
		return trivialFeedbackAnalysis(feedback)
	}
	return analysis
}

// trivialFeedbackAnalysis is the degraded analysis used when the provider
// call fails. Still worth recording: the rating itself is signal.
func trivialFeedbackAnalysis(feedback *models.Feedback) *models.FeedbackAnalysis {
	return &models.FeedbackAnalysis{
		Insights:     []string{fmt.Sprintf("User rated this recommendation %d/5 stars", feedback.Rating)},
		Improvements: []string{"Consider gathering more detailed feedback for future analysis"},
		Lessons:      []string{"Feedback collection is important for system improvement"},
	}
}

func (r *recalibrator) Summary(ctx context.Context, recommendationID, ownerID uuid.UUID) (*models.FeedbackSummary, error) {
	if _, err := r.recommendationRepo.GetByIDForOwner(ctx, recommendationID, ownerID); err != nil {
		return nil, err
	}

	rows, err := r.feedbackRepo.ListByRecommendation(ctx, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	summary := &models.FeedbackSummary{
		RecentFeedback: []*models.RecentFeedback{},
	}
	if len(rows) == 0 {
		return summary, nil
	}

	var ratingSum int
	for _, fb := range rows {
		ratingSum += fb.Rating
		if fb.ImplementationSuccess != "" {
			summary.TotalImplementations++
			if fb.ImplementationSuccess.IsSuccess() {
				summary.SuccessfulImplementations++
			}
		}
	}
	summary.TotalFeedback = len(rows)
	summary.AverageRating = round2(float64(ratingSum) / float64(len(rows)))
	if summary.TotalImplementations > 0 {
		summary.ImplementationSuccessRate = round2(float64(summary.SuccessfulImplementations) / float64(summary.TotalImplementations))
	}

	recent := rows
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, fb := range recent {
		summary.RecentFeedback = append(summary.RecentFeedback, &models.RecentFeedback{
			Rating:                fb.Rating,
			ImplementationSuccess: fb.ImplementationSuccess,
			OutcomeSummary:        truncateAt(fb.OutcomeDetails, recentFeedbackSummaryLen),
			LessonsSummary:        truncateAt(fb.LessonsLearned, recentFeedbackSummaryLen),
			Date:                  fb.UpdatedAt,
		})
	}
	return summary, nil
}

func (r *recalibrator) Insights(ctx context.Context, filter repositories.InsightFilter) ([]*models.LearningInsight, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, apperrors.NewValidationError("category", "unknown insight category")
	}
	return r.insightRepo.List(ctx, filter)
}

func truncateAt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
