package answer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/model"
)

func passage(page int, text string) model.RetrievalResult {
	return model.RetrievalResult{
		DocID:   "doc1",
		Page:    page,
		ChunkID: "doc1:chunk",
		Text:    text,
	}
}

func TestExtractCitations_EndToEnd(t *testing.T) {
	passages := []model.RetrievalResult{
		passage(1, "Mitosis has four phases."),
		passage(3, "Meiosis produces gametes."),
	}
	answer := "Mitosis has four phases [p.1]. Meiosis produces gametes [p.3]."

	citations := ExtractCitations(answer, passages)
	require.Len(t, citations, 2)
	require.Equal(t, 1, citations[0].Page)
	require.Equal(t, "Mitosis has four phases.", citations[0].Quote)
	require.Equal(t, 3, citations[1].Page)
	require.Equal(t, "Meiosis produces gametes.", citations[1].Quote)

	score := GroundingScore(len(citations), len(passages))
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestExtractCitations_UnmatchedMarkerDropped(t *testing.T) {
	passages := []model.RetrievalResult{
		passage(1, "Mitosis has four phases."),
		passage(3, "Meiosis produces gametes."),
	}
	citations := ExtractCitations("There are many phases [p.9].", passages)
	require.Empty(t, citations)
}

func TestExtractCitations_DuplicateMarkersKeptInOrder(t *testing.T) {
	passages := []model.RetrievalResult{passage(2, "Photosynthesis happens in chloroplasts.")}
	citations := ExtractCitations("It happens there [p.2]. Again [p.2].", passages)
	require.Len(t, citations, 2)
	require.Equal(t, citations[0], citations[1])
}

func TestExtractCitations_FirstPassageOnPageWins(t *testing.T) {
	first := passage(5, "First chunk on page five.")
	first.ChunkID = "doc1:5:text:0"
	second := passage(5, "Second chunk on page five.")
	second.ChunkID = "doc1:5:text:1"

	citations := ExtractCitations("Fact [p.5].", []model.RetrievalResult{first, second})
	require.Len(t, citations, 1)
	require.Equal(t, "doc1:5:text:0", citations[0].ChunkID)
}

func TestExtractCitations_QuoteTruncation(t *testing.T) {
	long := passage(1, strings.Repeat("a", 250))
	citations := ExtractCitations("Long [p.1].", []model.RetrievalResult{long})
	require.Len(t, citations, 1)
	require.Len(t, citations[0].Quote, 203)
	require.True(t, strings.HasSuffix(citations[0].Quote, "..."))

	short := passage(2, strings.Repeat("b", 150))
	citations = ExtractCitations("Short [p.2].", []model.RetrievalResult{short})
	require.Len(t, citations, 1)
	require.Len(t, citations[0].Quote, 150)
}

func TestExtractCitations_QuoteTruncationKeepsValidUTF8(t *testing.T) {
	// 199 ASCII bytes followed by multibyte runes puts a rune across
	// the byte boundary; truncation must count runes, not bytes
	p := passage(1, strings.Repeat("a", 199)+strings.Repeat("é", 10))
	citations := ExtractCitations("Accented [p.1].", []model.RetrievalResult{p})
	require.Len(t, citations, 1)
	require.True(t, utf8.ValidString(citations[0].Quote))
	require.Equal(t, strings.Repeat("a", 199)+"é...", citations[0].Quote)
}

func TestExtractCitations_CarriesBboxID(t *testing.T) {
	p := passage(1, "[IMAGE] diagram of a cell")
	p.Metadata = map[string]interface{}{"bbox_id": "b42"}
	citations := ExtractCitations("See the diagram [p.1].", []model.RetrievalResult{p})
	require.Len(t, citations, 1)
	require.Equal(t, "b42", citations[0].BboxID)
}

func TestGroundingScore_Bounds(t *testing.T) {
	for citations := 0; citations <= 30; citations++ {
		for passages := 0; passages <= 30; passages++ {
			score := GroundingScore(citations, passages)
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestGroundingScore_Values(t *testing.T) {
	require.Equal(t, 0.0, GroundingScore(0, 0))
	// zero citations with passages present keep the 0.2 floor
	require.InDelta(t, 0.2, GroundingScore(0, 5), 1e-9)
	// one citation over five expected passages
	require.InDelta(t, 1.0/5.0*0.8+0.2, GroundingScore(1, 5), 1e-9)
	// expected passage count is capped at five
	require.InDelta(t, 1.0/5.0*0.8+0.2, GroundingScore(1, 12), 1e-9)
	require.InDelta(t, 1.0, GroundingScore(8, 5), 1e-9)
}

func TestQualityFromScores_Buckets(t *testing.T) {
	mk := func(scores ...float64) []model.RetrievalResult {
		out := make([]model.RetrievalResult, 0, len(scores))
		for _, s := range scores {
			p := passage(1, "x")
			p.Score = s
			out = append(out, p)
		}
		return out
	}
	require.Equal(t, model.QualityNoResults, QualityFromScores(nil))
	require.Equal(t, model.QualityExcellent, QualityFromScores(mk(0.9, 0.8)))
	require.Equal(t, model.QualityGood, QualityFromScores(mk(0.7, 0.6)))
	require.Equal(t, model.QualityFair, QualityFromScores(mk(0.5, 0.4)))
	require.Equal(t, model.QualityPoor, QualityFromScores(mk(0.1, 0.2)))
}
