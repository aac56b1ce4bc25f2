package embed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/crambrain/internal/ai"
)

const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// Init retry schedule. The model endpoint is probed before the server
// starts taking traffic; a provider that never comes up is fatal.
const (
	initMaxAttempts       = 3
	initBackoffBase       = 1 * time.Second
	initBackoffMultiplier = 2
)

// Service wraps an ai.IEmbedder with startup probing and a bounded
// worker pool for batch calls, so bulk ingestion embedding never
// monopolizes a single upstream connection.
type Service struct {
	embedder ai.IEmbedder
	workers  int
	dim      int

	sleep func(time.Duration)
}

func NewService(embedder ai.IEmbedder, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		embedder: embedder,
		workers:  workers,
		sleep:    time.Sleep,
	}
}

// Init probes the embedding model and records its dimensionality.
// Transient failures are retried with exponential backoff; exhausting
// the attempts returns an error the caller must treat as fatal.
func (s *Service) Init(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(zap.String("model", s.embedder.ModelName()))
	delay := initBackoffBase
	var lastErr error
	for attempt := 1; attempt <= initMaxAttempts; attempt++ {
		vec, err := s.embedder.Embed(ctx, "ping", TaskTypeQuery)
		if err == nil {
			if len(vec) == 0 {
				return fmt.Errorf("embedding model returned empty vector")
			}
			s.dim = len(vec)
			logger.Info("embedding model ready", zap.Int("dim", s.dim), zap.Int("attempt", attempt))
			return nil
		}
		lastErr = err
		logger.Warn("embedding model probe failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", initMaxAttempts),
			zap.Error(err),
		)
		if attempt < initMaxAttempts {
			s.sleep(delay)
			delay *= initBackoffMultiplier
		}
	}
	return fmt.Errorf("embedding model unavailable after %d attempts: %w", initMaxAttempts, lastErr)
}

func (s *Service) Dim() int {
	return s.dim
}

func (s *Service) ModelName() string {
	return s.embedder.ModelName()
}

// EmbedQuery embeds a single search query.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.Embed(ctx, text, TaskTypeQuery)
}

// EmbedTexts embeds every input, empty strings included, preserving
// input order. Calls fan out over the worker pool; the first error
// aborts the batch.
func (s *Service) EmbedTexts(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			vec, err := s.embedder.Embed(ctx, text, taskType)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = vec
		}(i, text)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
	}
	return results, nil
}
