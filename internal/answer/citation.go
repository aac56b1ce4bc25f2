package answer

import (
	"regexp"
	"strconv"

	"github.com/xxxsen/crambrain/internal/model"
)

var pageMarkerPattern = regexp.MustCompile(`\[p\.(\d+)\]`)

const maxQuoteChars = 200

// ExtractCitations resolves every [p.N] marker in the answer against
// the retrieved passages. Each marker binds to the first passage on
// that page; markers naming a page absent from the passages are
// dropped. Repeated markers produce repeated citations, preserving
// answer order.
func ExtractCitations(answer string, passages []model.RetrievalResult) []model.Citation {
	citations := make([]model.Citation, 0)
	for _, m := range pageMarkerPattern.FindAllStringSubmatch(answer, -1) {
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		for _, passage := range passages {
			if passage.Page != page {
				continue
			}
			citation := model.Citation{
				DocID:      passage.DocID,
				Page:       passage.Page,
				ChunkID:    passage.ChunkID,
				Quote:      truncateQuote(passage.Text),
				Score:      passage.Score,
				PreviewURL: passage.PreviewURL,
				SourceURL:  passage.SourceURL,
			}
			if bbox, ok := passage.Metadata["bbox_id"].(string); ok {
				citation.BboxID = bbox
			}
			citations = append(citations, citation)
			break
		}
	}
	return citations
}

func truncateQuote(text string) string {
	runes := []rune(text)
	if len(runes) <= maxQuoteChars {
		return text
	}
	return string(runes[:maxQuoteChars]) + "..."
}

// GroundingScore estimates how well the answer is anchored in its
// sources. Any non-empty retrieval starts at the 0.2 floor; coverage
// of up to five passages scales the remaining 0.8.
func GroundingScore(citationCount, passageCount int) float64 {
	if passageCount == 0 {
		return 0.0
	}
	expected := passageCount
	if expected > 5 {
		expected = 5
	}
	score := float64(citationCount)/float64(expected)*0.8 + 0.2
	if score > 1.0 {
		return 1.0
	}
	return score
}

// QualityFromScores grades the retrieval pass by mean passage score.
func QualityFromScores(passages []model.RetrievalResult) model.RetrievalQuality {
	if len(passages) == 0 {
		return model.QualityNoResults
	}
	var sum float64
	for _, p := range passages {
		sum += p.Score
	}
	mean := sum / float64(len(passages))
	switch {
	case mean >= 0.8:
		return model.QualityExcellent
	case mean >= 0.6:
		return model.QualityGood
	case mean >= 0.4:
		return model.QualityFair
	default:
		return model.QualityPoor
	}
}
