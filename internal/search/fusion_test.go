package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/index"
)

func cand(docID string, page int, chunkID, text string) index.Candidate {
	return index.Candidate{ChunkID: chunkID, DocID: docID, Page: page, Text: text}
}

func TestFuseRRF_SumsReciprocalRanks(t *testing.T) {
	vector := []index.Candidate{
		cand("d1", 1, "d1:1:text:0", "alpha"),
		cand("d1", 2, "d1:2:text:0", "beta"),
	}
	lexical := []index.Candidate{
		cand("d1", 3, "d1:3:text:0", "gamma"),
		cand("d1", 4, "d1:4:text:0", "delta"),
		cand("d1", 1, "d1:1:text:1", "alpha again"),
	}

	fused := FuseRRF(vector, lexical, 10)
	require.Len(t, fused, 4)

	// rank 0 in vector plus rank 2 in lexical
	require.Equal(t, 1, fused[0].Page)
	require.InDelta(t, 1.0+1.0/3.0, fused[0].Score, 1e-9)
	// the vector list's record survives for the shared page
	require.Equal(t, "d1:1:text:0", fused[0].ChunkID)
}

func TestFuseRRF_SingleListScoresAreReciprocalRanks(t *testing.T) {
	vector := []index.Candidate{
		cand("d1", 1, "c1", "a"),
		cand("d1", 2, "c2", "b"),
		cand("d1", 3, "c3", "c"),
	}
	fused := FuseRRF(vector, nil, 10)
	require.Len(t, fused, 3)
	require.InDelta(t, 1.0, fused[0].Score, 1e-9)
	require.InDelta(t, 0.5, fused[1].Score, 1e-9)
	require.InDelta(t, 1.0/3.0, fused[2].Score, 1e-9)
}

func TestFuseRRF_CollapsesSamePage(t *testing.T) {
	vector := []index.Candidate{
		cand("d1", 7, "d1:7:text:0", "first chunk"),
		cand("d1", 7, "d1:7:text:1", "second chunk same page"),
	}
	fused := FuseRRF(vector, nil, 10)
	require.Len(t, fused, 1)
	require.Equal(t, "d1:7:text:0", fused[0].ChunkID)
	// one partial per list and key: the later rank overwrites (0.5),
	// same-page chunks never stack within a list
	require.InDelta(t, 0.5, fused[0].Score, 1e-9)
}

func TestFuseRRF_SamePageRepeatsAcrossListsStillSum(t *testing.T) {
	vector := []index.Candidate{
		cand("d1", 7, "d1:7:text:0", "first chunk"),
		cand("d1", 7, "d1:7:text:1", "second chunk same page"),
	}
	lexical := []index.Candidate{
		cand("d1", 7, "d1:7:text:1", "second chunk same page"),
	}
	fused := FuseRRF(vector, lexical, 10)
	require.Len(t, fused, 1)
	// 0.5 from the vector list (last occurrence) + 1.0 from lexical
	require.InDelta(t, 1.5, fused[0].Score, 1e-9)
	require.Equal(t, "d1:7:text:0", fused[0].ChunkID)
}

func TestFuseRRF_TiesKeepFirstSeenOrder(t *testing.T) {
	vector := []index.Candidate{cand("d1", 1, "c1", "a")}
	lexical := []index.Candidate{cand("d1", 2, "c2", "b")}
	fused := FuseRRF(vector, lexical, 10)
	require.Len(t, fused, 2)
	// equal 1.0 scores, vector item was accumulated first
	require.Equal(t, "c1", fused[0].ChunkID)
	require.Equal(t, "c2", fused[1].ChunkID)
}

func TestFuseRRF_TruncatesToTopK(t *testing.T) {
	var vector []index.Candidate
	for i := 0; i < 8; i++ {
		vector = append(vector, cand("d1", i+1, "c", "x"))
	}
	fused := FuseRRF(vector, nil, 3)
	require.Len(t, fused, 3)
	require.Equal(t, 1, fused[0].Page)
}

func TestFuseRRF_Deterministic(t *testing.T) {
	vector := []index.Candidate{
		cand("d1", 1, "a", "x"), cand("d2", 1, "b", "y"), cand("d1", 2, "c", "z"),
	}
	lexical := []index.Candidate{
		cand("d1", 2, "c", "z"), cand("d2", 1, "b", "y"),
	}
	first := FuseRRF(vector, lexical, 10)
	for i := 0; i < 10; i++ {
		again := FuseRRF(vector, lexical, 10)
		require.Equal(t, first, again)
	}
}

func TestFuseRRF_ZeroTopK(t *testing.T) {
	require.Nil(t, FuseRRF([]index.Candidate{cand("d1", 1, "a", "x")}, nil, 0))
}
