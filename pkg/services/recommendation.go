package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/prompts"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
	"github.com/duahurufo/exeloka-engine/pkg/retry"
)

const wisdomExcerptLen = 200

// RecommendationService is the engine's generation entry point.
type RecommendationService interface {
	// Generate runs one analysis (quick or enhanced), persists exactly one
	// recommendation, and moves the project to analyzing best-effort.
	Generate(ctx context.Context, ownerID uuid.UUID, req *models.GenerationRequest) (*models.Recommendation, error)
	Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Recommendation, error)
}

type recommendationService struct {
	projectRepo        repositories.ProjectRepository
	recommendationRepo repositories.RecommendationRepository
	retrieval          RetrievalService
	quickScorer        QuickScorer
	confidence         ConfidenceScorer
	orchestrator       Orchestrator
	registry           *prompts.Registry
	retryCfg           *retry.Config
	logger             *zap.Logger
}

// NewRecommendationService wires the generation flow.
func NewRecommendationService(
	projectRepo repositories.ProjectRepository,
	recommendationRepo repositories.RecommendationRepository,
	retrieval RetrievalService,
	quickScorer QuickScorer,
	confidence ConfidenceScorer,
	orchestrator Orchestrator,
	registry *prompts.Registry,
	logger *zap.Logger,
) RecommendationService {
	return &recommendationService{
		projectRepo:        projectRepo,
		recommendationRepo: recommendationRepo,
		retrieval:          retrieval,
		quickScorer:        quickScorer,
		confidence:         confidence,
		orchestrator:       orchestrator,
		registry:           registry,
		retryCfg:           retry.ProviderConfig(),
		logger:             logger.Named("recommendation"),
	}
}

var _ RecommendationService = (*recommendationService)(nil)

func (s *recommendationService) Generate(ctx context.Context, ownerID uuid.UUID, req *models.GenerationRequest) (*models.Recommendation, error) {
	switch req.AnalysisType {
	case "", models.AnalysisTypeQuick, models.AnalysisTypeEnhanced:
	default:
		return nil, apperrors.NewValidationError("analysis_type", "must be quick or enhanced")
	}
	if err := prompts.ValidateOverrides(req.CustomSystemInstruction, req.CustomUserPrompt); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByIDForOwner(ctx, req.ProjectID, ownerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting recommendation generation",
		zap.String("project_id", project.ID.String()),
		zap.String("analysis_type", req.AnalysisType))

	var rec *models.Recommendation
	if req.AnalysisType == models.AnalysisTypeQuick {
		rec, err = s.generateQuick(project, req)
	} else {
		rec, err = s.generateEnhanced(ctx, project, req)
	}
	if err != nil {
		return nil, err
	}

	// A cancelled request persists nothing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec.ProjectID = project.ID
	rec.Title = fmt.Sprintf("Recommendations for %s", project.Title)
	rec.Status = models.RecommendationStatusGenerated
	if err := s.recommendationRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("store recommendation: %w", err)
	}

	if project.Status == models.ProjectStatusPlanning {
		if err := s.projectRepo.UpdateStatus(ctx, project.ID, models.ProjectStatusAnalyzing); err != nil {
			s.logger.Warn("Failed to move project to analyzing",
				zap.String("project_id", project.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Recommendation generated",
		zap.String("recommendation_id", rec.ID.String()),
		zap.String("project_id", project.ID.String()),
		zap.Float64("confidence", rec.ConfidenceScore))
	return rec, nil
}

func (s *recommendationService) Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Recommendation, error) {
	return s.recommendationRepo.GetByIDForOwner(ctx, id, ownerID)
}

// generateQuick runs the scorer and shapes its output into the common
// recommendation structure.
func (s *recommendationService) generateQuick(project *models.Project, req *models.GenerationRequest) (*models.Recommendation, error) {
	input := buildQuickInput(project, req)

	result, err := s.quickScorer.Score(input)
	if err != nil {
		return nil, fmt.Errorf("quick analysis: %w", err)
	}

	rec := formatQuickResult(result)
	rec.AnalysisMetadata = models.JSONBMap{
		"analysis_type":      models.AnalysisTypeQuick,
		"processing_time_ms": result.ProcessingTime.Milliseconds(),
		"network_output":     result,
		"cold_start":         result.ColdStart,
		"generated_at":       time.Now().UTC().Format(time.RFC3339),
	}
	return rec, nil
}

// buildQuickInput folds request-level context into the scorer's input: extra
// context and priority areas extend the description, specific concerns count
// as risk factors.
func buildQuickInput(project *models.Project, req *models.GenerationRequest) *models.QuickAnalysisInput {
	projectType := project.ProjectType
	if projectType == "" {
		projectType = "general"
	}
	budget := project.BudgetRange
	if budget == "" {
		budget = "medium"
	}

	description := project.Description
	if req.AdditionalContext != "" {
		description += "\n\nAdditional Context: " + req.AdditionalContext
	}
	if len(req.PriorityAreas) > 0 {
		description += "\n\nPriority Areas: " + strings.Join(req.PriorityAreas, ", ")
	}

	riskFactors := append([]string(nil), project.RiskFactors...)
	riskFactors = append(riskFactors, req.SpecificConcerns...)

	return &models.QuickAnalysisInput{
		ProjectType:     projectType,
		Description:     description,
		LocationDetails: project.LocationDetails,
		Stakeholders:    project.Stakeholders,
		RiskFactors:     riskFactors,
		BudgetRange:     budget,
		TimelineStart:   project.TimelineStart,
		TimelineEnd:     project.TimelineEnd,
	}
}

// formatQuickResult translates scorer output into the recommendation shape
// shared with the enhanced path.
func formatQuickResult(result *models.QuickAnalysisResult) *models.Recommendation {
	successPct := int(math.Round(result.EstimatedSuccessRate * 100))
	culturalPct := int(math.Round(result.CulturalCompatibility * 100))

	return &models.Recommendation{
		ExecutiveSummary: fmt.Sprintf(
			"Quick analysis indicates %s risk level with %d%% estimated success rate. Cultural compatibility score: %d%%.",
			result.RiskLevel, successPct, culturalPct),
		StrategicApproach: result.RecommendedApproaches,
		// Quick analysis has no separate tactical layer.
		DetailedMethods: result.RecommendedApproaches,
		RiskMitigation: append(
			[]string{fmt.Sprintf("Risk Level: %s", strings.ToUpper(result.RiskLevel))},
			result.KeyConsiderations...),
		TimelineRecommendations: "Timeline based on quick analysis patterns. Consider enhanced analysis for detailed timeline planning.",
		SuccessMetrics: []string{
			fmt.Sprintf("Target Success Rate: %d%%", successPct),
			"Community acceptance indicators",
			"Cultural compliance measures",
			"Stakeholder satisfaction metrics",
		},
		CulturalConsiderations: result.KeyConsiderations,
		ConfidenceScore:        result.ConfidenceScore,
	}
}

// generateEnhanced retrieves wisdom context, runs the provider with retry,
// and converges the result on the confidence scorer.
func (s *recommendationService) generateEnhanced(ctx context.Context, project *models.Project, req *models.GenerationRequest) (*models.Recommendation, error) {
	wisdom, err := s.retrieval.Retrieve(ctx, project, req)
	if err != nil {
		return nil, err
	}

	details := s.buildEnhancedDetails(project, req, wisdom)
	systemInstruction := s.registry.SystemInstruction(req.CustomSystemInstruction)
	userPrompt := s.registry.UserPrompt(details, req.CustomUserPrompt, models.AnalysisTypeEnhanced)

	analysis, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.RecommendationAnalysis, error) {
		return s.orchestrator.GenerateRecommendations(ctx, systemInstruction, userPrompt)
	})
	if err != nil {
		return nil, fmt.Errorf("enhanced analysis: %w", err)
	}

	confidence := s.confidence.Score(len(wisdom), project, analysis.ConfidenceScore)

	rec := &models.Recommendation{
		ExecutiveSummary:        analysis.ExecutiveSummary,
		StrategicApproach:       analysis.StrategicApproach,
		DetailedMethods:         analysis.DetailedMethods,
		RiskMitigation:          analysis.RiskMitigation,
		TimelineRecommendations: analysis.TimelineRecommendations,
		SuccessMetrics:          analysis.SuccessMetrics,
		CulturalConsiderations:  analysis.CulturalConsiderations,
		ConfidenceScore:         confidence,
		AnalysisMetadata: models.JSONBMap{
			"analysis_type":        models.AnalysisTypeEnhanced,
			"wisdom_sources_count": len(wisdom),
			"prompt_version":       s.registry.Version(),
			"fields_defaulted":     analysis.FieldsDefaulted,
			"degraded":             analysis.Degraded,
			"generated_at":         time.Now().UTC().Format(time.RFC3339),
		},
	}
	return rec, nil
}

// buildEnhancedDetails renders the project for the prompt template, extended
// with the request context and the retrieved wisdom excerpts.
func (s *recommendationService) buildEnhancedDetails(project *models.Project, req *models.GenerationRequest, wisdom []*models.RankedWisdomEntry) string {
	details := prompts.FormatProjectDetails(project)

	if req.AdditionalContext != "" {
		details += fmt.Sprintf("\n\n**Additional Context**: %s", req.AdditionalContext)
	}
	if len(req.PriorityAreas) > 0 {
		details += fmt.Sprintf("\n\n**Priority Areas**: %s", strings.Join(req.PriorityAreas, ", "))
	}
	if len(req.SpecificConcerns) > 0 {
		details += fmt.Sprintf("\n\n**Specific Concerns**: %s", strings.Join(req.SpecificConcerns, ", "))
	}

	if len(wisdom) > 0 {
		excerpts := wisdom
		if len(excerpts) > 10 {
			excerpts = excerpts[:10]
		}
		lines := make([]string, 0, len(excerpts))
		for _, entry := range excerpts {
			content := entry.Content
			if len(content) > wisdomExcerptLen {
				content = content[:wisdomExcerptLen]
			}
			lines = append(lines, fmt.Sprintf("%s: %s...", entry.Title, content))
		}
		details += "\n\n**Relevant Cultural Wisdom from Knowledge Base**:\n" + prompts.BuildWisdomContext(lines)
	}

	return details
}
