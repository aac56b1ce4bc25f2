package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/crambrain/internal/model"
	"github.com/xxxsen/crambrain/internal/pkg/errs"
	"github.com/xxxsen/crambrain/internal/quiz"
	"github.com/xxxsen/crambrain/internal/search"
)

const (
	// Quiz generation pulls deeper than question answering so the
	// item pool covers more of the document.
	quizSearchTopK = 20

	defaultQuizQuestions = 5
	maxQuizQuestions     = 20
	defaultTopicQuery    = "general content"
	defaultCramSteps     = 10
)

// QuizService builds study material from the same retrieval pass the
// question answering path uses.
type QuizService struct {
	searcher *search.Searcher
	gen      *quiz.Generator
}

func NewQuizService(searcher *search.Searcher, gen *quiz.Generator) *QuizService {
	return &QuizService{searcher: searcher, gen: gen}
}

func (s *QuizService) GenerateQuiz(ctx context.Context, docID, topic string, n int) ([]model.QuizQuestion, error) {
	if n <= 0 {
		n = defaultQuizQuestions
	}
	if n > maxQuizQuestions {
		n = maxQuizQuestions
	}
	results, err := s.retrieve(ctx, docID, topic)
	if err != nil {
		return nil, err
	}
	return s.gen.Questions(results, n), nil
}

// CramPlan spreads review steps over the requested minutes, roughly
// two minutes per step.
func (s *QuizService) CramPlan(ctx context.Context, docID, topic string, timeMinutes int) ([]model.CramPlanStep, error) {
	steps := defaultCramSteps
	if timeMinutes > 0 {
		steps = timeMinutes / 2
		if steps < 1 {
			steps = 1
		}
		if steps > defaultCramSteps {
			steps = defaultCramSteps
		}
	}
	results, err := s.retrieve(ctx, docID, topic)
	if err != nil {
		return nil, err
	}
	return s.gen.CramPlan(results, steps), nil
}

func (s *QuizService) retrieve(ctx context.Context, docID, topic string) ([]model.RetrievalResult, error) {
	if topic == "" {
		topic = defaultTopicQuery
	}
	results, err := s.searcher.Search(ctx, topic, docID, quizSearchTopK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no content found for quiz generation", errs.ErrNotFound)
	}
	return results, nil
}
