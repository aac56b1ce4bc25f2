package search

import (
	"sort"
	"strings"

	"github.com/xxxsen/crambrain/internal/index"
)

// ScoreLexical ranks pool candidates by summed raw term frequency: for
// each lowercased query term, the number of its occurrences in the
// lowercased candidate text, summed over terms. Candidates matching no
// term are excluded entirely rather than ranked low.
func ScoreLexical(query string, pool []index.Candidate, topK int) []index.Candidate {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || topK <= 0 {
		return nil
	}
	scored := make([]index.Candidate, 0, len(pool))
	for _, cand := range pool {
		text := strings.ToLower(cand.Text)
		score := 0
		for _, term := range terms {
			score += strings.Count(text, term)
		}
		if score == 0 {
			continue
		}
		cand.Score = float64(score)
		scored = append(scored, cand)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
