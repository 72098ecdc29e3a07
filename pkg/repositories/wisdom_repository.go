package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duahurufo/exeloka-engine/pkg/database"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// HighImportanceThreshold marks entries that are always retrieved regardless
// of textual relevance.
const HighImportanceThreshold = 0.8

// WisdomRepository defines the interface for cultural wisdom data access.
type WisdomRepository interface {
	CreateSource(ctx context.Context, title, sourceType, rawContent string) (uuid.UUID, error)
	CreateEntry(ctx context.Context, entry *models.WisdomEntry) error
	// Search runs a full-text search and merges in high-importance entries,
	// ordered by importance then relevance.
	Search(ctx context.Context, searchText string, limit int) ([]*models.RankedWisdomEntry, error)
	// HighImportance returns entries at or above the importance threshold.
	HighImportance(ctx context.Context, limit int) ([]*models.RankedWisdomEntry, error)
}

// wisdomRepository implements WisdomRepository using PostgreSQL full-text
// search.
type wisdomRepository struct {
	db *database.DB
}

// NewWisdomRepository creates a new wisdom repository.
func NewWisdomRepository(db *database.DB) WisdomRepository {
	return &wisdomRepository{db: db}
}

// CreateSource inserts a knowledge source and returns its ID.
func (r *wisdomRepository) CreateSource(ctx context.Context, title, sourceType, rawContent string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO engine_knowledge_sources (id, title, source_type, raw_content)
		 VALUES ($1, $2, $3, $4)`,
		id, title, sourceType, rawContent)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create knowledge source: %w", err)
	}
	return id, nil
}

// CreateEntry inserts a wisdom entry.
func (r *wisdomRepository) CreateEntry(ctx context.Context, entry *models.WisdomEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO engine_wisdom_entries
			(id, source_id, title, content, cultural_context, importance_score, tags, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)`,
		entry.ID,
		entry.SourceID,
		entry.Title,
		entry.Content,
		entry.CulturalContext,
		entry.ImportanceScore,
		entry.Tags,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wisdom entry: %w", err)
	}
	return nil
}

// Search retrieves entries matching the search text by full-text rank, plus
// all high-importance entries, in one query. Importance wins over relevance
// in the ordering; relevance is zero for rows selected purely on importance.
func (r *wisdomRepository) Search(ctx context.Context, searchText string, limit int) ([]*models.RankedWisdomEntry, error) {
	query := `
		SELECT id, source_id, title, content, COALESCE(cultural_context, ''),
			importance_score, tags, created_at,
			ts_rank(
				to_tsvector('english', title || ' ' || content || ' ' || COALESCE(cultural_context, '')),
				plainto_tsquery('english', $1)
			) AS relevance
		FROM engine_wisdom_entries
		WHERE to_tsvector('english', title || ' ' || content || ' ' || COALESCE(cultural_context, ''))
			@@ plainto_tsquery('english', $1)
		   OR importance_score >= $2
		ORDER BY importance_score DESC, relevance DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, searchText, HighImportanceThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search wisdom entries: %w", err)
	}
	defer rows.Close()

	return scanRankedEntries(rows)
}

// HighImportance retrieves the top entries by importance alone.
func (r *wisdomRepository) HighImportance(ctx context.Context, limit int) ([]*models.RankedWisdomEntry, error) {
	query := `
		SELECT id, source_id, title, content, COALESCE(cultural_context, ''),
			importance_score, tags, created_at, 0::float8 AS relevance
		FROM engine_wisdom_entries
		WHERE importance_score >= $1
		ORDER BY importance_score DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, HighImportanceThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list high-importance wisdom: %w", err)
	}
	defer rows.Close()

	return scanRankedEntries(rows)
}

func scanRankedEntries(rows pgx.Rows) ([]*models.RankedWisdomEntry, error) {
	var entries []*models.RankedWisdomEntry
	for rows.Next() {
		var entry models.RankedWisdomEntry
		err := rows.Scan(
			&entry.ID,
			&entry.SourceID,
			&entry.Title,
			&entry.Content,
			&entry.CulturalContext,
			&entry.ImportanceScore,
			&entry.Tags,
			&entry.CreatedAt,
			&entry.Relevance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wisdom entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wisdom entries: %w", err)
	}
	return entries, nil
}
