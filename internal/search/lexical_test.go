package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/index"
)

func TestScoreLexical_SumsTermOccurrences(t *testing.T) {
	pool := []index.Candidate{
		cand("d1", 1, "c1", "neural networks use neural layers"),
		cand("d1", 2, "c2", "decision trees split on features"),
		cand("d1", 3, "c3", "a neural network"),
	}
	got := ScoreLexical("neural networks", pool, 10)
	require.Len(t, got, 2)
	// "neural" twice + "networks" once
	require.Equal(t, "c1", got[0].ChunkID)
	require.Equal(t, 3.0, got[0].Score)
	require.Equal(t, "c3", got[1].ChunkID)
	require.Equal(t, 1.0, got[1].Score)
}

func TestScoreLexical_CaseInsensitive(t *testing.T) {
	pool := []index.Candidate{cand("d1", 1, "c1", "Gradient Descent converges")}
	got := ScoreLexical("GRADIENT descent", pool, 10)
	require.Len(t, got, 1)
	require.Equal(t, 2.0, got[0].Score)
}

func TestScoreLexical_ExcludesZeroScores(t *testing.T) {
	pool := []index.Candidate{
		cand("d1", 1, "c1", "completely unrelated text"),
	}
	require.Empty(t, ScoreLexical("quantum entanglement", pool, 10))
}

func TestScoreLexical_TruncatesToTopK(t *testing.T) {
	pool := []index.Candidate{
		cand("d1", 1, "c1", "match"),
		cand("d1", 2, "c2", "match match"),
		cand("d1", 3, "c3", "match match match"),
	}
	got := ScoreLexical("match", pool, 2)
	require.Len(t, got, 2)
	require.Equal(t, "c3", got[0].ChunkID)
	require.Equal(t, "c2", got[1].ChunkID)
}

func TestScoreLexical_EmptyQuery(t *testing.T) {
	pool := []index.Candidate{cand("d1", 1, "c1", "text")}
	require.Nil(t, ScoreLexical("   ", pool, 10))
}
