package search

import (
	"sort"

	"github.com/xxxsen/crambrain/internal/index"
)

// Items are fused per page, not per chunk: multiple chunks from the
// same page collapse into one entry and page-level citation is the
// contract downstream.
type fuseKey struct {
	docID string
	page  int
}

// FuseRRF merges a vector-ranked and a lexical-ranked candidate list
// with Reciprocal Rank Fusion. Each list contributes 1/(rank+1) per
// key (0-based ranks); when a key appears at several ranks within one
// list, the later occurrence overwrites, so a list contributes at most
// one partial per key. A key's fused score is the sum of its partials
// across both lists. The first occurrence of a key supplies the
// surviving record; ties keep first-seen order. RRF is rank-based, so
// the two lists' incomparable score scales (cosine similarity vs raw
// term counts) don't matter.
func FuseRRF(vectorList, lexicalList []index.Candidate, topK int) []index.Candidate {
	if topK <= 0 {
		return nil
	}
	vectorScores := reciprocalRanks(vectorList)
	lexicalScores := reciprocalRanks(lexicalList)

	order := make([]fuseKey, 0, len(vectorScores)+len(lexicalScores))
	records := make(map[fuseKey]index.Candidate, len(vectorScores)+len(lexicalScores))
	collect := func(list []index.Candidate) {
		for _, cand := range list {
			key := fuseKey{docID: cand.DocID, page: cand.Page}
			if _, seen := records[key]; seen {
				continue
			}
			records[key] = cand
			order = append(order, key)
		}
	}
	collect(vectorList)
	collect(lexicalList)

	fused := make([]index.Candidate, 0, len(order))
	for _, key := range order {
		cand := records[key]
		cand.Score = vectorScores[key] + lexicalScores[key]
		fused = append(fused, cand)
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}

func reciprocalRanks(list []index.Candidate) map[fuseKey]float64 {
	scores := make(map[fuseKey]float64, len(list))
	for i, cand := range list {
		scores[fuseKey{docID: cand.DocID, page: cand.Page}] = 1.0 / float64(i+1)
	}
	return scores
}
