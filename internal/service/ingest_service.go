package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/crambrain/internal/embed"
	"github.com/xxxsen/crambrain/internal/filestore"
	"github.com/xxxsen/crambrain/internal/index"
	"github.com/xxxsen/crambrain/internal/model"
	"github.com/xxxsen/crambrain/internal/pdf"
	"github.com/xxxsen/crambrain/internal/pkg/errs"
)

const (
	presignExpiry  = 15 * time.Minute
	pdfContentType = "application/pdf"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._ -]`)

// IngestService runs the upload-to-index pipeline: store the raw PDF,
// extract page text, chunk within page boundaries, embed, and index.
type IngestService struct {
	files    filestore.Store
	chunker  *pdf.Chunker
	embedder *embed.Service
	chunks   *index.Store
	docs     *index.DocumentRepo
}

func NewIngestService(files filestore.Store, chunker *pdf.Chunker, embedder *embed.Service, chunks *index.Store, docs *index.DocumentRepo) *IngestService {
	return &IngestService{
		files:    files,
		chunker:  chunker,
		embedder: embedder,
		chunks:   chunks,
		docs:     docs,
	}
}

type PresignResult struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	FileID    string `json:"file_id"`
}

type IngestResult struct {
	DocID  string `json:"doc_id"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
	Status string `json:"status"`
}

// PresignUpload mints a fresh file id and returns a direct-upload URL
// for it, plus the public URL the client should later pass to Ingest.
func (s *IngestService) PresignUpload(ctx context.Context, filename string) (*PresignResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", errs.ErrInvalid)
	}
	fileID := newDocID()
	key := fileKey(fileID)
	uploadURL, err := s.files.PresignPut(ctx, key, pdfContentType, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &PresignResult{
		UploadURL: uploadURL,
		FileURL:   s.files.PublicURL(key, ""),
		FileID:    fileID,
	}, nil
}

// UploadAndIngest stores the uploaded bytes then runs the full
// pipeline. This path exists for clients that cannot PUT to the
// presigned URL directly.
func (s *IngestService) UploadAndIngest(ctx context.Context, filename string, data []byte) (*IngestResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are supported", errs.ErrInvalidFile)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", errs.ErrInvalidFile)
	}
	fileID := newDocID()
	key := fileKey(fileID)
	if err := s.files.Save(ctx, key, bytes.NewReader(data), int64(len(data)), pdfContentType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	fileURL := s.files.PublicURL(key, "")
	logutil.GetLogger(ctx).Info("stored uploaded file",
		zap.String("file_id", fileID), zap.String("file_url", fileURL), zap.Int("size", len(data)))
	return s.ingest(ctx, data, sanitizeFilename(filename), fileURL)
}

// Ingest pulls an already-uploaded PDF back out of the file store and
// runs the pipeline on it.
func (s *IngestService) Ingest(ctx context.Context, fileURL, originalName string) (*IngestResult, error) {
	key, err := objectKeyFromURL(fileURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalid, err)
	}
	rc, err := s.files.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileURL, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileURL, err)
	}
	if originalName == "" {
		originalName = key
	}
	return s.ingest(ctx, data, sanitizeFilename(originalName), fileURL)
}

func (s *IngestService) ingest(ctx context.Context, data []byte, originalName, fileURL string) (*IngestResult, error) {
	logger := logutil.GetLogger(ctx)
	pages, err := pdf.ExtractPages(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidFile, err)
	}

	docID := newDocID()
	previewURLs := make([]string, 0, len(pages))
	for _, page := range pages {
		previewURLs = append(previewURLs, fmt.Sprintf("%s#page=%d", fileURL, page.Number))
	}

	var chunks []model.Chunk
	for _, page := range pages {
		for _, chunk := range s.chunker.ChunkPage(docID, page) {
			if chunk.Metadata == nil {
				chunk.Metadata = map[string]interface{}{}
			}
			chunk.Metadata["file_url"] = fileURL
			chunk.Metadata["preview_urls"] = strings.Join(previewURLs, ",")
			chunk.Metadata["original_name"] = originalName
			chunks = append(chunks, chunk)
		}
	}

	hash := sha256.Sum256(data)
	now := time.Now().UnixMilli()
	doc := &model.Document{
		DocID:        docID,
		OriginalName: originalName,
		FileURL:      fileURL,
		PreviewURLs:  previewURLs,
		Pages:        len(pages),
		Chunks:       len(chunks),
		Status:       model.DocStatusIndexing,
		FileHash:     hex.EncodeToString(hash[:]),
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	// An embedding outage must not lose the document: chunks are
	// stored without vectors and the backfill job finishes the work.
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}
	vecs, err := s.embedder.EmbedTexts(ctx, texts, embed.TaskTypeDocument)
	if err != nil {
		logger.Warn("embedding failed, storing chunks for backfill",
			zap.String("doc_id", docID), zap.Error(err))
	} else {
		for i := range chunks {
			chunks[i].Embedding = vecs[i]
		}
	}

	if err := s.chunks.UpsertChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	if err := s.docs.UpdateStatus(ctx, docID, model.DocStatusReady, len(chunks)); err != nil {
		return nil, fmt.Errorf("mark document ready: %w", err)
	}

	logger.Info("ingested document",
		zap.String("doc_id", docID),
		zap.String("original_name", originalName),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
	)
	return &IngestResult{
		DocID:  docID,
		Pages:  len(pages),
		Chunks: len(chunks),
		Status: model.DocStatusReady,
	}, nil
}

// BackfillEmbeddings embeds up to batch chunks that were stored
// without vectors, returning how many it repaired.
func (s *IngestService) BackfillEmbeddings(ctx context.Context, batch int) (int, error) {
	chunks, err := s.chunks.ListUnembedded(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("list unembedded chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}
	vecs, err := s.embedder.EmbedTexts(ctx, texts, embed.TaskTypeDocument)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	done := 0
	for i, chunk := range chunks {
		if err := s.chunks.UpdateEmbedding(ctx, chunk.ChunkID, vecs[i]); err != nil {
			return done, fmt.Errorf("update embedding %s: %w", chunk.ChunkID, err)
		}
		done++
	}
	logutil.GetLogger(ctx).Info("backfilled embeddings", zap.Int("chunks", done))
	return done, nil
}

func fileKey(fileID string) string {
	return fileID + ".pdf"
}

func objectKeyFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %v", err)
	}
	key := path.Base(u.Path)
	if key == "" || key == "." || key == "/" {
		return "", fmt.Errorf("file url carries no object key")
	}
	return key, nil
}

// sanitizeFilename strips directories and anything outside a safe
// charset so stored names are inert in headers and URLs.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if strings.Trim(name, "._ -") == "" {
		name = "uploaded.pdf"
	}
	return name
}
