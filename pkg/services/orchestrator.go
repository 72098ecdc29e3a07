package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/llm"
	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/prompts"
)

// Orchestrator runs the enhanced analysis paths against a completion
// provider. Every method makes at most one provider call; retry policy
// belongs to the caller.
type Orchestrator interface {
	// Available reports whether a provider is configured. When false, methods
	// with a degraded fallback use it and the rest return an error.
	Available() bool
	GenerateRecommendations(ctx context.Context, systemInstruction, userPrompt string) (*models.RecommendationAnalysis, error)
	AnalyzeCulturalContent(ctx context.Context, content, sourceType string) (*models.CulturalAnalysis, error)
	AnalyzeFeedback(ctx context.Context, originalRecommendation, implementation, outcome string, rating int) (*models.FeedbackAnalysis, error)
	ExtractContent(ctx context.Context, rawContent, sourceType string) (string, error)
}

// orchestrator implements Orchestrator. A nil client puts every method in
// degraded mode.
type orchestrator struct {
	client llm.Client
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator. Pass a nil client when no provider
// credential is configured; degraded fallbacks then apply.
func NewOrchestrator(client llm.Client, logger *zap.Logger) Orchestrator {
	return &orchestrator{
		client: client,
		logger: logger.Named("orchestrator"),
	}
}

var _ Orchestrator = (*orchestrator)(nil)

func (o *orchestrator) Available() bool {
	return o.client != nil
}

// GenerateRecommendations runs the recommendation-generation task and
// structures the response. Without a provider it synthesizes a degraded
// analysis from the prompt alone.
func (o *orchestrator) GenerateRecommendations(ctx context.Context, systemInstruction, userPrompt string) (*models.RecommendationAnalysis, error) {
	if o.client == nil {
		o.logger.Info("Using degraded recommendation analysis (provider not available)")
		return o.degradedRecommendations(userPrompt), nil
	}

	result, err := o.client.Complete(ctx, llm.TaskRecommendationGeneration, systemInstruction, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("recommendation generation call: %w", err)
	}

	analysis := parseRecommendationAnalysis(result.Content)
	if analysis.FieldsDefaulted {
		o.logger.Warn("Model response required fallback structuring",
			zap.String("model", result.Model))
	}
	return analysis, nil
}

// degradedRecommendations builds a usable analysis without a provider call.
// Cultural considerations are narrowed by the keyword heuristic when the
// prompt matches; everything else is the synthesis defaults.
func (o *orchestrator) degradedRecommendations(userPrompt string) *models.RecommendationAnalysis {
	confidence := fallbackConfidence
	analysis := &models.RecommendationAnalysis{
		ExecutiveSummary:        truncateSummary(userPrompt),
		StrategicApproach:       append([]string(nil), defaultStrategicApproach...),
		TimelineRecommendations: defaultTimeline,
		SuccessMetrics:          append([]string(nil), defaultSuccessMetrics...),
		CulturalConsiderations:  append([]string(nil), defaultCulturalConsiderations...),
		ConfidenceScore:         &confidence,
		FieldsDefaulted:         true,
		Degraded:                true,
	}

	heuristic := analyzeCulturalContentHeuristic(userPrompt, "project description")
	if heuristic.ImportanceLevel == "high" {
		analysis.RiskMitigation = []string{
			"Engage religious and community leaders before any ground activity",
			"Map culturally significant sites and schedule around observances",
		}
	}
	return analysis
}

// AnalyzeCulturalContent extracts cultural wisdom from ingested content,
// falling back to the keyword heuristic when no provider is configured or the
// response cannot be decoded.
func (o *orchestrator) AnalyzeCulturalContent(ctx context.Context, content, sourceType string) (*models.CulturalAnalysis, error) {
	if o.client == nil {
		o.logger.Info("Using fallback cultural analysis (provider not available)")
		return analyzeCulturalContentHeuristic(content, sourceType), nil
	}

	result, err := o.client.Complete(ctx, llm.TaskCulturalAnalysis,
		prompts.CulturalAnalysisSystemPrompt,
		prompts.BuildCulturalAnalysisPrompt(content, sourceType))
	if err != nil {
		return nil, fmt.Errorf("cultural analysis call: %w", err)
	}

	analysis, err := llm.ParseJSONResponse[models.CulturalAnalysis](result.Content)
	if err != nil || len(analysis.CulturalElements) == 0 || analysis.ImportanceLevel == "" {
		o.logger.Warn("Cultural analysis response unusable, using keyword fallback",
			zap.String("model", result.Model),
			zap.Error(err))
		return analyzeCulturalContentHeuristic(content, sourceType), nil
	}
	return &analysis, nil
}

// AnalyzeFeedback runs the feedback-analysis task. There is no degraded mode;
// the recalibrator handles failure with its own trivial insight.
func (o *orchestrator) AnalyzeFeedback(ctx context.Context, originalRecommendation, implementation, outcome string, rating int) (*models.FeedbackAnalysis, error) {
	if o.client == nil {
		return nil, fmt.Errorf("feedback analysis requires a configured provider")
	}

	result, err := o.client.Complete(ctx, llm.TaskFeedbackAnalysis,
		prompts.FeedbackAnalysisSystemPrompt,
		prompts.BuildFeedbackAnalysisPrompt(originalRecommendation, implementation, outcome, rating))
	if err != nil {
		return nil, fmt.Errorf("feedback analysis call: %w", err)
	}

	analysis, err := llm.ParseJSONResponse[models.FeedbackAnalysis](result.Content)
	if err != nil {
		return nil, fmt.Errorf("decode feedback analysis: %w", err)
	}
	return &analysis, nil
}

// ExtractContent cleans raw ingested content. Without a provider, or when the
// call fails, it strips markup and collapses whitespace locally.
func (o *orchestrator) ExtractContent(ctx context.Context, rawContent, sourceType string) (string, error) {
	if o.client == nil {
		o.logger.Info("Using fallback text extraction (provider not available)")
		return simpleExtractText(rawContent), nil
	}

	systemMessage := "You are a content extraction specialist. Clean, structure, and extract meaningful text content while preserving important information, key cultural elements, and original meaning."
	prompt := fmt.Sprintf("Extract and clean the meaningful content from this %s:\n\n%s\n\nProvide clean, well-structured text that preserves all important information while removing formatting artifacts and noise.", sourceType, rawContent)

	result, err := o.client.Complete(ctx, llm.TaskContentExtraction, systemMessage, prompt)
	if err != nil {
		o.logger.Error("Content extraction call failed, using local cleanup", zap.Error(err))
		return simpleExtractText(rawContent), nil
	}
	return strings.TrimSpace(result.Content), nil
}

func simpleExtractText(rawContent string) string {
	cleaned := strings.NewReplacer("\r\n", "\n", "\t", " ").Replace(rawContent)
	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
