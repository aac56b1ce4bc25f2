package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/crambrain/internal/ai"
	"github.com/xxxsen/crambrain/internal/model"
)

// RefusalAnswer is the fixed response for queries with no retrieved
// evidence. The generator is never called in that case.
const RefusalAnswer = "I don't have enough context to answer this question. Please upload some documents first."

const systemPrompt = "You are a precise study assistant. Use ONLY the provided CONTEXT from course notes/slides to answer. " +
	"If the answer isn't in CONTEXT, say you don't know. Every sentence that states a fact must include a source tag " +
	"like [p.<page>]. Keep answers concise and stepwise when helpful. Never invent citations."

// Low temperature keeps hallucination variance down.
const (
	answerTemperature = 0.1
	answerMaxTokens   = 1000
)

// Generator produces a grounded answer from retrieved passages and
// scores it.
type Generator struct {
	gen     ai.IGenerator
	timeout time.Duration
}

func NewGenerator(gen ai.IGenerator, timeout time.Duration) *Generator {
	return &Generator{gen: gen, timeout: timeout}
}

// Answer generates a page-cited answer constrained to the supplied
// passages. An empty passage list short-circuits to the refusal
// result; neither the LLM nor the citation extractor runs.
func (g *Generator) Answer(ctx context.Context, query string, passages []model.RetrievalResult) (*model.AnswerResult, error) {
	if len(passages) == 0 {
		return &model.AnswerResult{
			Answer:           RefusalAnswer,
			Citations:        []model.Citation{},
			GroundingScore:   0.0,
			RetrievalQuality: model.QualityNoResults,
		}, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	raw, err := g.gen.Generate(ctx, ai.GenerateRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(query, passages),
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		logutil.GetLogger(ctx).Error("answer generation failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	citations := ExtractCitations(raw, passages)
	return &model.AnswerResult{
		Answer:           raw,
		Citations:        citations,
		GroundingScore:   GroundingScore(len(citations), len(passages)),
		RetrievalQuality: QualityFromScores(passages),
	}, nil
}

// BuildPrompt frames each passage as "[i] Page P: text", 1-based in
// fused ranking order, followed by the citation instructions.
func BuildPrompt(query string, passages []model.RetrievalResult) string {
	var sb strings.Builder
	for i, passage := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] Page %d: %s", i+1, passage.Page, passage.Text)
	}

	return fmt.Sprintf(`QUESTION: %s

CONTEXT:
%s

Instructions:
1. Provide a comprehensive answer based on the excerpts
2. Use [p.N] format for page citations (e.g., [p.1], [p.5])
3. Be precise and factual
4. If the answer cannot be found in the excerpts, say so clearly

Answer:`, query, sb.String())
}
