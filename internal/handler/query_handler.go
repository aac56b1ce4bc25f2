package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/crambrain/internal/pkg/errcode"
	"github.com/xxxsen/crambrain/internal/pkg/response"
	"github.com/xxxsen/crambrain/internal/service"
)

// Two minutes per quiz question, used for the estimate field only.
const minutesPerQuestion = 2

type QueryHandler struct {
	query *service.QueryService
	quiz  *service.QuizService
}

func NewQueryHandler(query *service.QueryService, quiz *service.QuizService) *QueryHandler {
	return &QueryHandler{query: query, quiz: quiz}
}

type askRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	DocID string `json:"doc_id"`
}

func (h *QueryHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.query.Ask(c.Request.Context(), req.Query, req.DocID, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *QueryHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "q is required")
		return
	}
	topK := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid limit")
			return
		}
		topK = parsed
	}
	results, err := h.query.Retrieve(c.Request.Context(), query, c.Query("doc_id"), topK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

type quizRequest struct {
	DocID string `json:"doc_id"`
	Topic string `json:"topic"`
	// Some clients send n, others num_questions.
	N            int `json:"n"`
	NumQuestions int `json:"num_questions"`
}

func (h *QueryHandler) Quiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.NumQuestions == 0 {
		req.NumQuestions = req.N
	}
	questions, err := h.quiz.GenerateQuiz(c.Request.Context(), req.DocID, req.Topic, req.NumQuestions)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"questions":      questions,
		"doc_id":         req.DocID,
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
		"estimated_time": len(questions) * minutesPerQuestion,
	})
}

type cramPlanRequest struct {
	DocID       string `json:"doc_id"`
	Topic       string `json:"topic"`
	TimeMinutes int    `json:"time_minutes"`
}

func (h *QueryHandler) CramPlan(c *gin.Context) {
	var req cramPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	plan, err := h.quiz.CramPlan(c.Request.Context(), req.DocID, req.Topic, req.TimeMinutes)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"plan":         plan,
		"doc_id":       req.DocID,
		"time_minutes": req.TimeMinutes,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}
