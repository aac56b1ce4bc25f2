package model

const (
	DocStatusReady    = "ready"
	DocStatusIndexing = "indexing"
)

type Document struct {
	DocID        string   `json:"doc_id" db:"doc_id"`
	OriginalName string   `json:"original_name" db:"original_name"`
	FileURL      string   `json:"file_url" db:"file_url"`
	PreviewURLs  []string `json:"preview_urls,omitempty"`
	Pages        int      `json:"pages" db:"pages"`
	Chunks       int      `json:"chunks" db:"chunks"`
	Status       string   `json:"status" db:"status"`
	FileHash     string   `json:"file_hash,omitempty" db:"file_hash"`
	Ctime        int64    `json:"created_at" db:"ctime"`
	Mtime        int64    `json:"updated_at" db:"mtime"`
}
