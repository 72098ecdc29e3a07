package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/models"
	"github.com/duahurufo/exeloka-engine/pkg/repositories"
)

// MaxRetrievedWisdom caps the number of entries a single retrieval returns.
const MaxRetrievedWisdom = 20

const retrievalCacheTTL = 5 * time.Minute

// RetrievalService retrieves cultural wisdom entries relevant to a project.
type RetrievalService interface {
	// Retrieve returns at most MaxRetrievedWisdom deduplicated entries ordered
	// by importance then relevance. An empty result is valid; generation
	// proceeds without wisdom context.
	Retrieve(ctx context.Context, project *models.Project, req *models.GenerationRequest) ([]*models.RankedWisdomEntry, error)
}

type retrievalService struct {
	wisdomRepo repositories.WisdomRepository
	cache      *redis.Client
	logger     *zap.Logger
}

// NewRetrievalService creates a retrieval service. A nil cache client
// disables caching.
func NewRetrievalService(wisdomRepo repositories.WisdomRepository, cache *redis.Client, logger *zap.Logger) RetrievalService {
	return &retrievalService{
		wisdomRepo: wisdomRepo,
		cache:      cache,
		logger:     logger.Named("retrieval"),
	}
}

var _ RetrievalService = (*retrievalService)(nil)

func (s *retrievalService) Retrieve(ctx context.Context, project *models.Project, req *models.GenerationRequest) ([]*models.RankedWisdomEntry, error) {
	searchText := buildSearchText(project, req)

	cacheKey := retrievalCacheKey(searchText)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	ranked, err := s.wisdomRepo.Search(ctx, searchText, MaxRetrievedWisdom)
	if err != nil {
		return nil, fmt.Errorf("search wisdom entries: %w", err)
	}

	entries := dedupeEntries(ranked)
	if len(entries) > MaxRetrievedWisdom {
		entries = entries[:MaxRetrievedWisdom]
	}

	s.logger.Debug("Retrieved wisdom context",
		zap.String("project_type", project.ProjectType),
		zap.Int("entries", len(entries)))

	s.toCache(ctx, cacheKey, entries)
	return entries, nil
}

// buildSearchText concatenates the project fields that describe what the
// project touches culturally. Request-level priority areas and concerns are
// appended so callers can steer retrieval per generation.
func buildSearchText(project *models.Project, req *models.GenerationRequest) string {
	parts := []string{
		project.Description,
		project.ProjectType,
		serializeLocation(project.LocationDetails),
	}
	parts = append(parts, project.PriorityAreas...)
	if req != nil {
		parts = append(parts, req.PriorityAreas...)
		parts = append(parts, req.SpecificConcerns...)
	}

	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// dedupeEntries drops repeated entry IDs, keeping the first occurrence so the
// repository's importance-then-relevance ordering is preserved.
func dedupeEntries(entries []*models.RankedWisdomEntry) []*models.RankedWisdomEntry {
	seen := make(map[string]struct{}, len(entries))
	result := make([]*models.RankedWisdomEntry, 0, len(entries))
	for _, entry := range entries {
		key := entry.ID.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, entry)
	}
	return result
}

func retrievalCacheKey(searchText string) string {
	sum := sha256.Sum256([]byte(searchText))
	return "wisdom:search:" + hex.EncodeToString(sum[:16])
}

func (s *retrievalService) fromCache(ctx context.Context, key string) ([]*models.RankedWisdomEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []*models.RankedWisdomEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *retrievalService) toCache(ctx context.Context, key string, entries []*models.RankedWisdomEntry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	// Cache failures never fail retrieval.
	if err := s.cache.Set(ctx, key, raw, retrievalCacheTTL).Err(); err != nil {
		s.logger.Debug("Wisdom cache write failed", zap.Error(err))
	}
}
