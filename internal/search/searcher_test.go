package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/index"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.vec, s.err
}

type stubStore struct {
	queryResult  []index.Candidate
	queryErr     error
	getAllResult []index.Candidate
	getAllErr    error
}

func (s *stubStore) Query(ctx context.Context, vec []float32, topK int, docID string) ([]index.Candidate, error) {
	return s.queryResult, s.queryErr
}

func (s *stubStore) GetAll(ctx context.Context, docID string, limit int) ([]index.Candidate, error) {
	return s.getAllResult, s.getAllErr
}

func TestSearch_JoinsVectorAndLexicalPasses(t *testing.T) {
	store := &stubStore{
		queryResult: []index.Candidate{
			cand("d1", 1, "d1:1:text:0", "mitosis has four phases"),
			cand("d1", 2, "d1:2:text:0", "meiosis produces gametes"),
		},
		getAllResult: []index.Candidate{
			cand("d1", 2, "d1:2:text:0", "meiosis produces gametes"),
			cand("d1", 3, "d1:3:text:0", "unrelated page"),
		},
	}
	s := NewSearcher(&stubEmbedder{vec: []float32{0.1, 0.2}}, store, 100)

	results, err := s.Search(context.Background(), "meiosis", "d1", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// page 2 scores in both passes (0.5 vector + 1.0 lexical) and
	// outranks the vector-only page 1
	require.Equal(t, 2, results[0].Page)
	require.InDelta(t, 1.5, results[0].Score, 1e-9)
	require.Equal(t, 1, results[1].Page)
	require.InDelta(t, 1.0, results[1].Score, 1e-9)
}

func TestSearch_LexicalPoolFailureDegradesToVectorOnly(t *testing.T) {
	store := &stubStore{
		queryResult: []index.Candidate{cand("d1", 1, "c1", "alpha")},
		getAllErr:   fmt.Errorf("pool fetch broke"),
	}
	s := NewSearcher(&stubEmbedder{vec: []float32{0.1}}, store, 100)

	results, err := s.Search(context.Background(), "alpha", "", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "c1", results[0].ChunkID)
}

func TestSearch_VectorFailureAborts(t *testing.T) {
	store := &stubStore{queryErr: fmt.Errorf("index offline")}
	s := NewSearcher(&stubEmbedder{vec: []float32{0.1}}, store, 100)

	_, err := s.Search(context.Background(), "anything", "", 5)
	require.ErrorContains(t, err, "vector search")
}

func TestSearch_EmbedFailureAborts(t *testing.T) {
	s := NewSearcher(&stubEmbedder{err: fmt.Errorf("provider down")}, &stubStore{}, 100)

	_, err := s.Search(context.Background(), "anything", "", 5)
	require.ErrorContains(t, err, "embed query")
}

func TestFuse_RecoversToTruncatedVectorRanking(t *testing.T) {
	vector := []index.Candidate{
		cand("d1", 1, "c1", "a"),
		cand("d1", 2, "c2", "b"),
		cand("d1", 3, "c3", "c"),
	}
	s := NewSearcher(&stubEmbedder{vec: []float32{0.1}}, &stubStore{}, 100)
	s.fuseFn = func(_, _ []index.Candidate, _ int) []index.Candidate {
		panic("fusion blew up")
	}

	fused := s.fuse(context.Background(), vector, nil, 2)
	require.Len(t, fused, 2)
	require.Equal(t, "c1", fused[0].ChunkID)
	require.Equal(t, "c2", fused[1].ChunkID)
}

func TestPreviewURL_IndexesByPage(t *testing.T) {
	meta := map[string]interface{}{
		"preview_urls": "https://f/x.pdf#page=1,https://f/x.pdf#page=2,https://f/x.pdf#page=3",
	}
	require.Equal(t, "https://f/x.pdf#page=2", previewURL(meta, 2))
	require.Equal(t, "", previewURL(meta, 9))
	require.Equal(t, "", previewURL(meta, 0))
	require.Equal(t, "", previewURL(nil, 1))
}

func TestSourceURL(t *testing.T) {
	require.Equal(t, "https://f/x.pdf", sourceURL(map[string]interface{}{"file_url": "https://f/x.pdf"}))
	require.Equal(t, "", sourceURL(nil))
}
