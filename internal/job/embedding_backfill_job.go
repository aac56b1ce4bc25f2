package job

import (
	"context"

	"github.com/xxxsen/crambrain/internal/service"
)

// EmbeddingBackfillJob re-embeds chunks left without vectors by a
// failed or interrupted ingestion.
type EmbeddingBackfillJob struct {
	ingest *service.IngestService
	batch  int
}

func NewEmbeddingBackfillJob(ingest *service.IngestService, batch int) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{ingest: ingest, batch: batch}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	if j.ingest == nil {
		return nil
	}
	_, err := j.ingest.BackfillEmbeddings(ctx, j.batch)
	return err
}
