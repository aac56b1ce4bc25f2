package quiz

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/model"
)

func passage(page int, text string, headings ...string) model.RetrievalResult {
	return model.RetrievalResult{DocID: "d1", Page: page, Text: text, Headings: headings}
}

func TestQuestions_OneItemPerPassage(t *testing.T) {
	gen := NewGenerator()
	passages := []model.RetrievalResult{
		passage(1, "Mitosis has four phases."),
		passage(2, "Meiosis produces gametes."),
	}

	items := gen.Questions(passages, 10)
	require.Len(t, items, 2)
	require.Equal(t, QuestionTypeShortAnswer, items[0].Type)
	require.Equal(t, "Based on the notes on page 1, what is the key idea?", items[0].Prompt)
	require.Equal(t, "Mitosis has four phases.", items[0].Answer)
	require.Equal(t, 1, items[0].Page)
	require.Equal(t, 2, items[1].Page)
}

func TestQuestions_TruncatesQuotes(t *testing.T) {
	gen := NewGenerator()
	items := gen.Questions([]model.RetrievalResult{passage(1, strings.Repeat("a", 500))}, 1)
	require.Len(t, items, 1)
	require.Len(t, items[0].Quote, maxQuoteChars)
}

func TestQuestions_TruncatesQuotesOnRuneBoundary(t *testing.T) {
	gen := NewGenerator()
	items := gen.Questions([]model.RetrievalResult{passage(1, strings.Repeat("ü", 300))}, 1)
	require.Len(t, items, 1)
	require.True(t, utf8.ValidString(items[0].Quote))
	require.Equal(t, strings.Repeat("ü", maxQuoteChars), items[0].Quote)
}

func TestQuestions_RespectsLimit(t *testing.T) {
	gen := NewGenerator()
	passages := []model.RetrievalResult{
		passage(1, "a"), passage(2, "b"), passage(3, "c"),
	}
	require.Len(t, gen.Questions(passages, 2), 2)
	// at least one question even for a non-positive limit
	require.Len(t, gen.Questions(passages, 0), 1)
}

func TestQuestions_EmptyPassages(t *testing.T) {
	gen := NewGenerator()
	require.Empty(t, gen.Questions(nil, 5))
}

func TestCramPlan_StepsFromHeadings(t *testing.T) {
	gen := NewGenerator()
	passages := []model.RetrievalResult{
		passage(4, "Cell structure overview.", "Chapter 1: Cells"),
		passage(9, "No heading on this one."),
	}

	plan := gen.CramPlan(passages, 10)
	require.Len(t, plan, 2)
	require.Equal(t, 1, plan[0].Step)
	require.Equal(t, "Review: Chapter 1: Cells", plan[0].Title)
	require.Equal(t, 4, plan[0].Page)
	require.Equal(t, 2, plan[1].Step)
	require.Equal(t, "Review: Topic", plan[1].Title)
	require.Equal(t, 9, plan[1].Page)
}
