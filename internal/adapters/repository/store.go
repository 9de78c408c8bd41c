// Package repository persists the metrics document. Every backend stores the
// whole document and replaces it wholesale; there is no partial update API.
package repository

import (
	"context"
	"time"

	"github.com/okian/hypetorch/internal/domain/document"
)

// Backend names accepted by configuration.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Store provides whole-document access to the metrics document.
type Store interface {
	// Load returns the current document, or document.Unpopulated() when nothing
	// has been stored yet. It returns ErrStorageRead if stored data cannot be parsed.
	Load(ctx context.Context) (*document.Document, error)

	// Replace overwrites the stored document in full. On failure it returns
	// ErrStorageWrite and the previously stored document stays intact.
	Replace(ctx context.Context, doc *document.Document) error

	// LastModified returns when the document was last replaced. ok is false
	// when nothing has been stored yet.
	LastModified(ctx context.Context) (t time.Time, ok bool, err error)

	// Backend names the implementation, used in logs and metrics labels.
	Backend() string
}
