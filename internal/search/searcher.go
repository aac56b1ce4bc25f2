package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/crambrain/internal/index"
	"github.com/xxxsen/crambrain/internal/model"
)

// candidateMultiplier widens both input lists before fusion so the
// fused top-k has enough distinct pages to choose from.
const candidateMultiplier = 2

// QueryEmbedder turns a query string into its embedding vector.
// *embed.Service is the production implementation.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CandidateStore is the slice of the chunk store retrieval needs:
// vector-ranked candidates and the lexical scoring pool.
type CandidateStore interface {
	Query(ctx context.Context, vec []float32, topK int, docID string) ([]index.Candidate, error)
	GetAll(ctx context.Context, docID string, limit int) ([]index.Candidate, error)
}

// Searcher runs hybrid retrieval: vector similarity plus lexical term
// scoring over the same stored corpus, merged with RRF.
type Searcher struct {
	embedder  QueryEmbedder
	store     CandidateStore
	poolLimit int
	fuseFn    func(vectorList, lexicalList []index.Candidate, topK int) []index.Candidate
}

func NewSearcher(embedder QueryEmbedder, store CandidateStore, poolLimit int) *Searcher {
	if poolLimit <= 0 || poolLimit > index.MaxLexicalPool {
		poolLimit = index.MaxLexicalPool
	}
	return &Searcher{embedder: embedder, store: store, poolLimit: poolLimit, fuseFn: FuseRRF}
}

// Search retrieves the fused topK passages for a query, optionally
// restricted to one document. The vector and lexical passes are
// independent reads and run concurrently; fusion waits on both.
func (s *Searcher) Search(ctx context.Context, query string, docID string, topK int) ([]model.RetrievalResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("query", query), zap.String("doc_id", docID))

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetch := topK * candidateMultiplier
	var (
		vectorList []index.Candidate
		vectorErr  error
		lexList    []index.Candidate
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		vectorList, vectorErr = s.store.Query(ctx, queryVec, fetch, docID)
	}()
	pool, poolErr := s.store.GetAll(ctx, docID, s.poolLimit)
	if poolErr != nil {
		// Lexical scoring is an enrichment pass; a pool fetch failure
		// degrades to vector-only retrieval.
		logger.Warn("lexical pool fetch failed", zap.Error(poolErr))
	} else {
		lexList = ScoreLexical(query, pool, fetch)
	}
	<-done
	if vectorErr != nil {
		logger.Error("vector search failed", zap.Error(vectorErr))
		return nil, fmt.Errorf("vector search: %w", vectorErr)
	}

	fused := s.fuse(ctx, vectorList, lexList, topK)
	logger.Info("hybrid search completed",
		zap.Int("vector_candidates", len(vectorList)),
		zap.Int("lexical_candidates", len(lexList)),
		zap.Int("fused", len(fused)),
	)

	results := make([]model.RetrievalResult, 0, len(fused))
	for _, cand := range fused {
		results = append(results, model.RetrievalResult{
			DocID:      cand.DocID,
			Page:       cand.Page,
			ChunkID:    cand.ChunkID,
			Text:       cand.Text,
			Score:      cand.Score,
			ChunkType:  cand.ChunkType,
			Headings:   cand.Headings,
			PreviewURL: previewURL(cand.Metadata, cand.Page),
			SourceURL:  sourceURL(cand.Metadata),
			Metadata:   cand.Metadata,
		})
	}
	return results, nil
}

// fuse never aborts a request: any structural failure inside fusion
// falls back to the raw vector ranking truncated to topK.
func (s *Searcher) fuse(ctx context.Context, vectorList, lexicalList []index.Candidate, topK int) (fused []index.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			logutil.GetLogger(ctx).Error("rank fusion failed, falling back to vector ranking", zap.Any("reason", r))
			if len(vectorList) > topK {
				vectorList = vectorList[:topK]
			}
			fused = vectorList
		}
	}()
	return s.fuseFn(vectorList, lexicalList, topK)
}

func previewURL(metadata map[string]interface{}, page int) string {
	raw, _ := metadata["preview_urls"].(string)
	if raw == "" {
		return ""
	}
	urls := strings.Split(raw, ",")
	if page >= 1 && page <= len(urls) {
		return urls[page-1]
	}
	return ""
}

func sourceURL(metadata map[string]interface{}) string {
	url, _ := metadata["file_url"].(string)
	return url
}
