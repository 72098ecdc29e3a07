package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
	"github.com/duahurufo/exeloka-engine/pkg/services/workqueue"
)

const (
	// Entry titles are truncated to fit the column; practice titles leave room
	// for their prefix.
	maxEntryTitleLen    = 500
	maxPracticeTitleLen = 450

	traditionalPracticePrefix = "Traditional Practice: "
	traditionalPracticeTag    = "traditional_practice"

	// batchProviderConcurrency bounds concurrent provider calls during batch
	// ingestion.
	batchProviderConcurrency = 2
)

var validSourceTypes = map[string]bool{
	"text":     true,
	"document": true,
	"url":      true,
}

// IngestionRequest describes one piece of raw content to fold into the
// knowledge base. RawContent is expected to already be text; fetching and
// rendering of remote or binary sources happens upstream.
type IngestionRequest struct {
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
	RawContent string `json:"raw_content"`
}

// IngestionResult reports what a single ingestion produced.
type IngestionResult struct {
	SourceID        uuid.UUID `json:"source_id"`
	Title           string    `json:"title"`
	EntriesCreated  int       `json:"entries_created"`
	ImportanceLevel string    `json:"importance_level"`

	// Degraded is set when the cultural analysis ran without a provider.
	Degraded bool `json:"degraded,omitempty"`
}

// BatchIngestionResult pairs a request with its outcome. Err is set for items
// that failed; the rest of the batch still runs.
type BatchIngestionResult struct {
	Title  string
	Result *IngestionResult
	Err    error
}

// IngestionService turns raw content into a knowledge source plus wisdom
// entries derived from its cultural analysis.
type IngestionService interface {
	Ingest(ctx context.Context, req *IngestionRequest) (*IngestionResult, error)
	// IngestBatch runs several ingestions with bounded provider concurrency.
	// Results come back in request order.
	IngestBatch(ctx context.Context, reqs []*IngestionRequest) []BatchIngestionResult
}

type ingestionService struct {
	wisdomRepo   repositories.WisdomRepository
	orchestrator Orchestrator
	logger       *zap.Logger
}

var _ IngestionService = (*ingestionService)(nil)

// NewIngestionService creates the ingestion pipeline.
func NewIngestionService(
	wisdomRepo repositories.WisdomRepository,
	orchestrator Orchestrator,
	logger *zap.Logger,
) IngestionService {
	return &ingestionService{
		wisdomRepo:   wisdomRepo,
		orchestrator: orchestrator,
		logger:       logger.Named("ingestion"),
	}
}

// Ingest cleans the raw content, analyzes its cultural significance, stores
// the source and derives wisdom entries. Entry creation failures are logged
// and skipped, never fatal.
func (s *ingestionService) Ingest(ctx context.Context, req *IngestionRequest) (*IngestionResult, error) {
	if err := validateIngestionRequest(req); err != nil {
		return nil, err
	}

	s.logger.Info("Starting ingestion",
		zap.String("title", req.Title),
		zap.String("source_type", req.SourceType))

	cleaned, err := s.orchestrator.ExtractContent(ctx, req.RawContent, req.SourceType)
	if err != nil {
		return nil, fmt.Errorf("content extraction: %w", err)
	}
	if strings.TrimSpace(cleaned) == "" {
		return nil, apperrors.NewValidationError("raw_content", "no meaningful content after extraction")
	}

	analysis, err := s.orchestrator.AnalyzeCulturalContent(ctx, cleaned, req.SourceType)
	if err != nil {
		return nil, fmt.Errorf("cultural analysis: %w", err)
	}

	sourceID, err := s.wisdomRepo.CreateSource(ctx, req.Title, req.SourceType, cleaned)
	if err != nil {
		return nil, err
	}

	created := s.storeWisdomEntries(ctx, sourceID, analysis)

	s.logger.Info("Ingestion completed",
		zap.String("source_id", sourceID.String()),
		zap.String("title", req.Title),
		zap.Int("entries_created", created),
		zap.Bool("degraded", analysis.Degraded))

	return &IngestionResult{
		SourceID:        sourceID,
		Title:           req.Title,
		EntriesCreated:  created,
		ImportanceLevel: analysis.ImportanceLevel,
		Degraded:        analysis.Degraded,
	}, nil
}

// IngestBatch queues every request as a provider job; at most
// batchProviderConcurrency ingestions hold a provider slot at once.
func (s *ingestionService) IngestBatch(ctx context.Context, reqs []*IngestionRequest) []BatchIngestionResult {
	results := make([]BatchIngestionResult, len(reqs))

	queue := workqueue.New(s.logger,
		workqueue.WithStrategy(workqueue.NewThrottledProviderStrategy(batchProviderConcurrency)))

	for i, req := range reqs {
		i, req := i, req
		results[i].Title = req.Title
		queue.Add(workqueue.NewJob(req.Title, workqueue.KindProvider, func() error {
			result, err := s.Ingest(ctx, req)
			results[i].Result = result
			results[i].Err = err
			// Validation failures should not be retried by the queue.
			if err != nil && !apperrors.IsValidation(err) {
				return err
			}
			return nil
		}))
	}

	queue.Run(ctx)
	return results
}

// storeWisdomEntries derives entries from cultural elements and traditional
// practices. Practices get a dedicated tag so retrieval can tell them apart.
func (s *ingestionService) storeWisdomEntries(ctx context.Context, sourceID uuid.UUID, analysis *models.CulturalAnalysis) int {
	created := 0

	for _, element := range analysis.CulturalElements {
		entry := &models.WisdomEntry{
			SourceID:        sourceID,
			Title:           truncate(element, maxEntryTitleLen),
			Content:         element,
			CulturalContext: analysis.CulturalContext,
			ImportanceScore: importanceScore(analysis.ImportanceLevel, element),
			Tags:            append([]string{}, analysis.PotentialRisks...),
		}
		if err := s.wisdomRepo.CreateEntry(ctx, entry); err != nil {
			s.logger.Error("Failed to store wisdom entry",
				zap.String("source_id", sourceID.String()),
				zap.Error(err))
			continue
		}
		created++
	}

	for _, practice := range analysis.TraditionalPractices {
		entry := &models.WisdomEntry{
			SourceID:        sourceID,
			Title:           traditionalPracticePrefix + truncate(practice, maxPracticeTitleLen),
			Content:         practice,
			CulturalContext: analysis.CulturalContext,
			ImportanceScore: importanceScore(analysis.ImportanceLevel, practice),
			Tags:            append([]string{traditionalPracticeTag}, analysis.PotentialRisks...),
		}
		if err := s.wisdomRepo.CreateEntry(ctx, entry); err != nil {
			s.logger.Error("Failed to store wisdom entry",
				zap.String("source_id", sourceID.String()),
				zap.Error(err))
			continue
		}
		created++
	}

	return created
}

// importanceScore maps the analysis importance level to a base score and
// nudges it up for content touching cultural or regional markers.
func importanceScore(importanceLevel, content string) float64 {
	var base float64
	switch importanceLevel {
	case "high":
		base = 0.8
	case "medium":
		base = 0.6
	case "low":
		base = 0.4
	default:
		base = 0.5
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "traditional") ||
		strings.Contains(lower, "cultural") ||
		strings.Contains(lower, "sacred") {
		base += 0.1
	}
	if strings.Contains(lower, "sampang") ||
		strings.Contains(lower, "madura") ||
		strings.Contains(lower, "java") {
		base += 0.1
	}

	return clamp(base, 0.0, 1.0)
}

func validateIngestionRequest(req *IngestionRequest) error {
	if req == nil {
		return apperrors.NewValidationError("request", "request is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(req.RawContent) == "" {
		return apperrors.NewValidationError("raw_content", "raw content is required")
	}
	if !validSourceTypes[req.SourceType] {
		return apperrors.NewValidationError("source_type",
			fmt.Sprintf("unsupported source type: %q", req.SourceType))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
