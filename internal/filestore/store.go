package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xxxsen/crambrain/internal/config"
)

// Store abstracts where raw PDFs and page previews live. Keys are flat
// names scoped by the caller; stores must reject path traversal.
type Store interface {
	Save(ctx context.Context, key string, r io.ReadSeeker, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// PresignPut returns a URL the client can PUT the object to
	// directly, valid for expiry. Stores without presign support
	// return an error.
	PresignPut(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error)
	// PresignGet returns a time-limited download URL for the object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PublicURL builds the stable URL for an object, falling back to
	// baseURL-relative serving when the store has no public host.
	PublicURL(key, baseURL string) string
}

type Factory func(args interface{}) (Store, error)

// backends is only written from init functions, so reads at New time
// need no locking.
var backends = map[string]Factory{}

func Register(name string, factory Factory) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || factory == nil {
		return
	}
	if _, dup := backends[name]; dup {
		panic(fmt.Sprintf("filestore: duplicate backend %q", name))
	}
	backends[name] = factory
}

func New(cfg config.FileStoreConfig) (Store, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Type))
	factory, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown file store backend: %q", cfg.Type)
	}
	return factory(cfg.Data)
}

// decodeConfig remarshals the untyped config.Data blob into a
// backend-specific struct.
func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("file store config block missing")
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode file store config: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode file store config: %w", err)
	}
	return nil
}
