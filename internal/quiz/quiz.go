package quiz

import (
	"fmt"

	"github.com/xxxsen/crambrain/internal/model"
)

const (
	maxQuoteChars = 240

	QuestionTypeShortAnswer = "short-answer"
)

// Generator builds deterministic study material from retrieved
// passages. It never calls the LLM, so the endpoints stay stable even
// when the provider degrades.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Questions builds up to n short-answer items from the top passages,
// one per passage, each anchored to its source page.
func (g *Generator) Questions(passages []model.RetrievalResult, n int) []model.QuizQuestion {
	items := make([]model.QuizQuestion, 0)
	if len(passages) == 0 {
		return items
	}
	for _, passage := range passages[:clampCount(n, len(passages))] {
		quote := passage.Text
		if runes := []rune(quote); len(runes) > maxQuoteChars {
			quote = string(runes[:maxQuoteChars])
		}
		answer := quote
		if answer == "" {
			answer = "Refer to the cited page."
		}
		items = append(items, model.QuizQuestion{
			Type:   QuestionTypeShortAnswer,
			Prompt: fmt.Sprintf("Based on the notes on page %d, what is the key idea?", passage.Page),
			Answer: answer,
			Page:   passage.Page,
			Quote:  quote,
		})
	}
	return items
}

// CramPlan lays out one review step per passage, titled by the
// passage's leading heading when it carries one.
func (g *Generator) CramPlan(passages []model.RetrievalResult, n int) []model.CramPlanStep {
	plan := make([]model.CramPlanStep, 0)
	if len(passages) == 0 {
		return plan
	}
	for i, passage := range passages[:clampCount(n, len(passages))] {
		title := "Topic"
		if len(passage.Headings) > 0 && passage.Headings[0] != "" {
			title = passage.Headings[0]
		}
		plan = append(plan, model.CramPlanStep{
			Step:   i + 1,
			Title:  "Review: " + title,
			Action: "Read the highlighted snippet and summarize in 2 bullets.",
			Page:   passage.Page,
		})
	}
	return plan
}

func clampCount(n, total int) int {
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	return n
}
