package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/crambrain/internal/ai"
	"github.com/xxxsen/crambrain/internal/model"
)

type stubGenerator struct {
	lastReq ai.GenerateRequest
	reply   string
	err     error
	calls   int
}

func (s *stubGenerator) Generate(ctx context.Context, req ai.GenerateRequest) (string, error) {
	s.calls++
	s.lastReq = req
	return s.reply, s.err
}

func TestAnswer_EmptyPassagesRefusesWithoutLLM(t *testing.T) {
	stub := &stubGenerator{}
	gen := NewGenerator(stub, 0)

	result, err := gen.Answer(context.Background(), "what is mitosis?", nil)
	require.NoError(t, err)
	require.Equal(t, RefusalAnswer, result.Answer)
	require.Empty(t, result.Citations)
	require.Equal(t, 0.0, result.GroundingScore)
	require.Equal(t, model.QualityNoResults, result.RetrievalQuality)
	require.Zero(t, stub.calls)
}

func TestAnswer_CitesRetrievedPassages(t *testing.T) {
	stub := &stubGenerator{reply: "Mitosis has four phases [p.1]."}
	gen := NewGenerator(stub, 0)
	passages := []model.RetrievalResult{
		{DocID: "d1", Page: 1, ChunkID: "c1", Text: "Mitosis has four phases.", Score: 0.9},
	}

	result, err := gen.Answer(context.Background(), "how many phases?", passages)
	require.NoError(t, err)
	require.Equal(t, stub.reply, result.Answer)
	require.Len(t, result.Citations, 1)
	require.Equal(t, 1, result.Citations[0].Page)
	require.Equal(t, model.QualityExcellent, result.RetrievalQuality)

	require.Equal(t, float32(0.1), stub.lastReq.Temperature)
	require.Equal(t, 1000, stub.lastReq.MaxTokens)
	require.Contains(t, stub.lastReq.System, "Never invent citations")
}

func TestAnswer_GenerateErrorPropagates(t *testing.T) {
	stub := &stubGenerator{err: errors.New("provider down")}
	gen := NewGenerator(stub, 0)
	passages := []model.RetrievalResult{{DocID: "d1", Page: 1, Text: "x"}}

	_, err := gen.Answer(context.Background(), "q", passages)
	require.Error(t, err)
}

func TestBuildPrompt_FramesPassagesByPage(t *testing.T) {
	passages := []model.RetrievalResult{
		{Page: 2, Text: "Cells divide."},
		{Page: 7, Text: "DNA replicates."},
	}
	prompt := BuildPrompt("how do cells divide?", passages)
	require.Contains(t, prompt, "QUESTION: how do cells divide?")
	require.Contains(t, prompt, "[1] Page 2: Cells divide.")
	require.Contains(t, prompt, "[2] Page 7: DNA replicates.")
	require.Contains(t, prompt, "[p.N]")
}
