package index

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/crambrain/internal/model"
	"github.com/xxxsen/crambrain/internal/pkg/errs"
)

// DocumentRepo stores per-document ingestion metadata.
type DocumentRepo struct {
	db *sqlx.DB
}

func NewDocumentRepo(db *sqlx.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Save(ctx context.Context, doc *model.Document) error {
	now := time.Now().UnixMilli()
	data := map[string]interface{}{
		"doc_id":        doc.DocID,
		"original_name": doc.OriginalName,
		"file_url":      doc.FileURL,
		"preview_urls":  strings.Join(doc.PreviewURLs, ","),
		"pages":         doc.Pages,
		"chunks":        doc.Chunks,
		"status":        doc.Status,
		"file_hash":     doc.FileHash,
		"ctime":         now,
		"mtime":         now,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, docID, status string, chunks int) error {
	where := map[string]interface{}{"doc_id": docID}
	update := map[string]interface{}{
		"status": status,
		"chunks": chunks,
		"mtime":  time.Now().UnixMilli(),
	}
	sqlStr, args, err := builder.BuildUpdate("documents", where, update)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(sqlStr), args...)
	return err
}

func (r *DocumentRepo) Get(ctx context.Context, docID string) (*model.Document, error) {
	where := map[string]interface{}{"doc_id": docID}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns())
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, r.db.Rebind(sqlStr), args...)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	return doc, err
}

func (r *DocumentRepo) List(ctx context.Context) ([]model.Document, error) {
	where := map[string]interface{}{"_orderby": "ctime desc"}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns())
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(sqlStr), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func documentColumns() []string {
	return []string{"doc_id", "original_name", "file_url", "preview_urls", "pages", "chunks", "status", "file_hash", "ctime", "mtime"}
}

type docScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row docScanner) (*model.Document, error) {
	var doc model.Document
	var previewURLs string
	if err := row.Scan(
		&doc.DocID,
		&doc.OriginalName,
		&doc.FileURL,
		&previewURLs,
		&doc.Pages,
		&doc.Chunks,
		&doc.Status,
		&doc.FileHash,
		&doc.Ctime,
		&doc.Mtime,
	); err != nil {
		return nil, err
	}
	if previewURLs != "" {
		doc.PreviewURLs = strings.Split(previewURLs, ",")
	}
	return &doc, nil
}
