package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/crambrain/internal/index"
	"github.com/xxxsen/crambrain/internal/pkg/errcode"
	"github.com/xxxsen/crambrain/internal/pkg/response"
)

type DocumentHandler struct {
	docs *index.DocumentRepo
}

func NewDocumentHandler(docs *index.DocumentRepo) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

func (h *DocumentHandler) List(c *gin.Context) {
	documents, err := h.docs.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"documents": documents})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	docID := c.Param("id")
	if docID == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "document id is required")
		return
	}
	doc, err := h.docs.Get(c.Request.Context(), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}
