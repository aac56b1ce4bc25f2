package model

type RetrievalQuality string

const (
	QualityExcellent RetrievalQuality = "excellent"
	QualityGood      RetrievalQuality = "good"
	QualityFair      RetrievalQuality = "fair"
	QualityPoor      RetrievalQuality = "poor"
	QualityNoResults RetrievalQuality = "no_results"
)

// RetrievalResult is a scored candidate returned by hybrid search.
// The score scale depends on the stage that produced it: cosine
// similarity for vector-only results, raw term counts for lexical
// results and RRF sums after fusion.
type RetrievalResult struct {
	DocID      string                 `json:"doc_id"`
	Page       int                    `json:"page"`
	ChunkID    string                 `json:"chunk_id"`
	Text       string                 `json:"text"`
	Score      float64                `json:"score"`
	ChunkType  ChunkType              `json:"chunk_type"`
	Headings   []string               `json:"headings,omitempty"`
	PreviewURL string                 `json:"preview_url"`
	SourceURL  string                 `json:"source_url"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Citation links one answer marker back to a retrieved passage.
type Citation struct {
	DocID      string  `json:"doc_id"`
	Page       int     `json:"page"`
	ChunkID    string  `json:"chunk_id"`
	BboxID     string  `json:"bbox_id,omitempty"`
	Quote      string  `json:"quote"`
	Score      float64 `json:"score"`
	PreviewURL string  `json:"preview_url"`
	SourceURL  string  `json:"source_url"`
}

type AnswerResult struct {
	Answer           string           `json:"answer"`
	Citations        []Citation       `json:"citations"`
	GroundingScore   float64          `json:"grounding_score"`
	RetrievalQuality RetrievalQuality `json:"retrieval_quality"`
}
