package model

type ChunkType string

const (
	ChunkTypeText  ChunkType = "text"
	ChunkTypeImage ChunkType = "image"
	ChunkTypeTable ChunkType = "table"
)

// Chunk is a bounded unit of extracted document content. A chunk never
// spans two pages; the chunk id is deterministic for a given
// (doc, page, type, position) so re-ingestion overwrites in place.
type Chunk struct {
	ChunkID   string                 `json:"chunk_id" db:"chunk_id"`
	DocID     string                 `json:"doc_id" db:"doc_id"`
	Page      int                    `json:"page" db:"page"`
	ChunkType ChunkType              `json:"chunk_type" db:"chunk_type"`
	Text      string                 `json:"text" db:"text"`
	CharStart int                    `json:"char_start,omitempty" db:"char_start"`
	CharEnd   int                    `json:"char_end,omitempty" db:"char_end"`
	Headings  []string               `json:"headings,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"-"`
}
