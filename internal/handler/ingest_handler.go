package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/crambrain/internal/pkg/errcode"
	"github.com/xxxsen/crambrain/internal/pkg/response"
	"github.com/xxxsen/crambrain/internal/service"
)

// Direct uploads are read fully into memory before processing.
const maxUploadBytes = 50 << 20

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

func (h *IngestHandler) PresignGet(c *gin.Context) {
	h.presign(c, c.Query("filename"))
}

type presignRequest struct {
	Filename string `json:"filename"`
}

func (h *IngestHandler) PresignPost(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	h.presign(c, req.Filename)
}

func (h *IngestHandler) presign(c *gin.Context, filename string) {
	result, err := h.ingest.PresignUpload(c.Request.Context(), filename)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Upload accepts the PDF as multipart form data and runs the full
// pipeline in one request, for clients that cannot use presigned PUTs.
func (h *IngestHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "file is required")
		return
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrUploadFailed, "read upload failed")
		return
	}
	if len(data) > maxUploadBytes {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file too large")
		return
	}
	result, err := h.ingest.UploadAndIngest(c.Request.Context(), header.Filename, data)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

type ingestRequest struct {
	FileURL      string `json:"file_url"`
	OriginalName string `json:"original_name"`
}

func (h *IngestHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.FileURL == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "file_url is required")
		return
	}
	result, err := h.ingest.Ingest(c.Request.Context(), req.FileURL, req.OriginalName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
