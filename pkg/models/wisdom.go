package models

import (
	"time"

	"github.com/google/uuid"
)

// WisdomEntry is an atomic unit of cultural knowledge extracted from a
// knowledge source. Entries are immutable after ingestion; they are removed
// only when their parent source is deleted.
type WisdomEntry struct {
	ID              uuid.UUID `json:"id"`
	SourceID        uuid.UUID `json:"source_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CulturalContext string    `json:"cultural_context,omitempty"`
	ImportanceScore float64   `json:"importance_score"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
}

// RankedWisdomEntry pairs an entry with the full-text relevance rank it
// received for a particular retrieval query. Entries selected purely on
// importance carry a zero relevance.
type RankedWisdomEntry struct {
	WisdomEntry
	Relevance float64 `json:"relevance"`
}
