package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/crambrain/internal/answer"
	"github.com/xxxsen/crambrain/internal/model"
	"github.com/xxxsen/crambrain/internal/pkg/errs"
	"github.com/xxxsen/crambrain/internal/search"
)

// QueryService orchestrates hybrid retrieval and grounded answering.
type QueryService struct {
	searcher    *search.Searcher
	generator   *answer.Generator
	defaultTopK int
	maxTopK     int
}

func NewQueryService(searcher *search.Searcher, generator *answer.Generator, defaultTopK, maxTopK int) *QueryService {
	return &QueryService{
		searcher:    searcher,
		generator:   generator,
		defaultTopK: defaultTopK,
		maxTopK:     maxTopK,
	}
}

type AskResult struct {
	Answer           string                  `json:"answer"`
	Citations        []model.Citation        `json:"citations"`
	Retrieval        []model.RetrievalResult `json:"retrieval"`
	GroundingScore   float64                 `json:"grounding_score"`
	RetrievalQuality model.RetrievalQuality  `json:"retrieval_quality"`
}

// Ask retrieves evidence for the query and generates a page-cited
// answer over it. topK outside [1, maxTopK] is clamped, zero means
// the configured default.
func (s *QueryService) Ask(ctx context.Context, query, docID string, topK int) (*AskResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", errs.ErrInvalid)
	}
	topK = s.clampTopK(topK)
	results, err := s.searcher.Search(ctx, query, docID, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	ans, err := s.generator.Answer(ctx, query, results)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.RetrievalResult{}
	}
	return &AskResult{
		Answer:           ans.Answer,
		Citations:        ans.Citations,
		Retrieval:        results,
		GroundingScore:   ans.GroundingScore,
		RetrievalQuality: ans.RetrievalQuality,
	}, nil
}

// Retrieve exposes the raw hybrid search pass without answering.
func (s *QueryService) Retrieve(ctx context.Context, query, docID string, topK int) ([]model.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", errs.ErrInvalid)
	}
	return s.searcher.Search(ctx, query, docID, s.clampTopK(topK))
}

func (s *QueryService) clampTopK(topK int) int {
	if topK <= 0 {
		return s.defaultTopK
	}
	if topK > s.maxTopK {
		return s.maxTopK
	}
	return topK
}
