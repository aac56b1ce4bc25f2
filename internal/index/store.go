package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/crambrain/internal/model"
)

// MaxLexicalPool bounds how many stored chunks the lexical scorer may
// pull per query. Known scale limitation: the pool is scored in-process.
const MaxLexicalPool = 1000

// Candidate is one stored chunk projected out of the index, optionally
// carrying a similarity score from a vector query.
type Candidate struct {
	ChunkID   string
	DocID     string
	Page      int
	ChunkType model.ChunkType
	Text      string
	Headings  []string
	Score     float64
	Metadata  map[string]interface{}
}

// Store persists chunks and their embeddings in Postgres and answers
// cosine nearest-neighbor queries via pgvector.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// UpsertChunks writes chunk rows keyed by chunk id. Re-ingesting a
// document overwrites the same rows, which is what makes crash repair a
// plain re-run.
func (s *Store) UpsertChunks(ctx context.Context, chunks []model.Chunk) error {
	const query = `
		INSERT INTO chunks (chunk_id, doc_id, page, chunk_type, text, char_start, char_end, headings, metadata, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (chunk_id) DO UPDATE SET
			text = EXCLUDED.text,
			char_start = EXCLUDED.char_start,
			char_end = EXCLUDED.char_end,
			headings = EXCLUDED.headings,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			ctime = EXCLUDED.ctime
	`
	now := time.Now().UnixMilli()
	for _, chunk := range chunks {
		meta, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("encode chunk metadata: %w", err)
		}
		var embedding interface{}
		if len(chunk.Embedding) > 0 {
			embedding = pgvector.NewVector(chunk.Embedding)
		}
		if _, err := s.db.ExecContext(ctx, query,
			chunk.ChunkID,
			chunk.DocID,
			chunk.Page,
			string(chunk.ChunkType),
			chunk.Text,
			chunk.CharStart,
			chunk.CharEnd,
			strings.Join(chunk.Headings, "\n"),
			meta,
			embedding,
			now,
		); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", chunk.ChunkID, err)
		}
	}
	return nil
}

// Query returns the topK most similar chunks to the given vector,
// scored as cosine similarity (1 - distance), optionally restricted to
// one document.
func (s *Store) Query(ctx context.Context, vec []float32, topK int, docID string) ([]Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}
	args := []interface{}{pgvector.NewVector(vec), topK}
	filter := ""
	if docID != "" {
		filter = " AND doc_id = $3"
		args = append(args, docID)
	}
	query := `
		SELECT chunk_id, doc_id, page, chunk_type, text, headings, metadata,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE embedding IS NOT NULL` + filter + `
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows)
}

// GetAll returns up to limit stored chunks (capped at MaxLexicalPool)
// with zero scores, for in-process lexical scoring.
func (s *Store) GetAll(ctx context.Context, docID string, limit int) ([]Candidate, error) {
	if limit <= 0 || limit > MaxLexicalPool {
		limit = MaxLexicalPool
	}
	args := []interface{}{limit}
	filter := ""
	if docID != "" {
		filter = " WHERE doc_id = $2"
		args = append(args, docID)
	}
	query := `
		SELECT chunk_id, doc_id, page, chunk_type, text, headings, metadata, 0 AS score
		FROM chunks` + filter + `
		ORDER BY chunk_id
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()
	return scanCandidates(rows)
}

// ListUnembedded returns chunks still waiting for an embedding, the
// leftovers of an ingestion that died between chunk-store and
// index-store.
func (s *Store) ListUnembedded(ctx context.Context, limit int) ([]model.Chunk, error) {
	const query = `
		SELECT chunk_id, text
		FROM chunks
		WHERE embedding IS NULL
		ORDER BY ctime
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unembedded chunks: %w", err)
	}
	defer rows.Close()
	var chunks []model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		if err := rows.Scan(&chunk.ChunkID, &chunk.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *Store) UpdateEmbedding(ctx context.Context, chunkID string, vec []float32) error {
	const query = `UPDATE chunks SET embedding = $1 WHERE chunk_id = $2`
	_, err := s.db.ExecContext(ctx, query, pgvector.NewVector(vec), chunkID)
	return err
}

func (s *Store) DeleteByDoc(ctx context.Context, docID string) error {
	const query = `DELETE FROM chunks WHERE doc_id = $1`
	_, err := s.db.ExecContext(ctx, query, docID)
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanCandidates(rows rowScanner) ([]Candidate, error) {
	var results []Candidate
	for rows.Next() {
		var c Candidate
		var chunkType string
		var headings string
		var meta []byte
		if err := rows.Scan(&c.ChunkID, &c.DocID, &c.Page, &chunkType, &c.Text, &headings, &meta, &c.Score); err != nil {
			return nil, err
		}
		c.ChunkType = model.ChunkType(chunkType)
		if headings != "" {
			c.Headings = strings.Split(headings, "\n")
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &c.Metadata); err != nil {
				return nil, fmt.Errorf("decode chunk metadata: %w", err)
			}
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
