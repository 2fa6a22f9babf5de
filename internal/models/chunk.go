package models

import (
	"encoding/json"
	"time"
)

type ContentType string

const (
	ContentTypeWebpage  ContentType = "webpage"
	ContentTypeBrochure ContentType = "brochure"
	ContentTypeInfo     ContentType = "info"
)

// ContentChunk is one unit of scraped or extracted text belonging to
// exactly one University, with its embedding vector. Vectors share a
// single fixed dimension across the whole store.
type ContentChunk struct {
	ID            int64           `db:"id"`
	UniversityID  int64           `db:"university_id"`
	ContentType   ContentType     `db:"content_type"`
	ContentSource string          `db:"content_source"`
	ContentText   string          `db:"content_text"`
	Embedding     []float32       `db:"embedding"`
	Metadata      json.RawMessage `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
}

// SimilarityRequest is one retrieval request against the similarity store.
// The fee ceiling is applied as a hard predicate only when Strict is set;
// soft budget preferences stay in the ranking stage.
type SimilarityRequest struct {
	Vector        []float32
	TopK          int
	ContentTypes  []ContentType
	MaxFees       float64
	StrictMaxFees bool
}

// SearchHit is a raw nearest-neighbour result: one chunk joined with its
// university, ordered by similarity descending.
type SearchHit struct {
	University    University
	ContentType   ContentType
	ContentSource string
	ContentText   string
	Similarity    float64
}
