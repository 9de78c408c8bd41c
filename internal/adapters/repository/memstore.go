package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/hypetorch/internal/domain/document"
	"github.com/okian/hypetorch/pkg/metrics"
)

// MemoryStore keeps the serialized document in memory. It honours the same
// contract as FileStore and is used for tests and throwaway deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	data     []byte
	modified time.Time
	now      func() time.Time
	failNext error
}

// NewMemoryStore creates an empty (unpopulated) in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := applyOptions(opts)
	return &MemoryStore{now: s.now}
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return BackendMemory }

// Load implements Store. Each call re-parses the stored bytes so callers never
// share a Document.
func (s *MemoryStore) Load(_ context.Context) (doc *document.Document, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(BackendMemory, "load", err, time.Since(start)) }()

	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	if data == nil {
		return document.Unpopulated(), nil
	}
	doc, err = document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	return doc, nil
}

// Replace implements Store.
func (s *MemoryStore) Replace(_ context.Context, doc *document.Document) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(BackendMemory, "replace", err, time.Since(start)) }()

	if doc == nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, ErrNilDocument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		injected := s.failNext
		s.failNext = nil
		return fmt.Errorf("%w: %v", ErrStorageWrite, injected)
	}
	s.data = append([]byte(nil), doc.Bytes()...)
	s.modified = s.now()
	return nil
}

// LastModified implements Store.
func (s *MemoryStore) LastModified(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return time.Time{}, false, nil
	}
	return s.modified, true, nil
}

// SetRaw stores bytes as-is, bypassing parsing. Tests use it to simulate a
// corrupt document already on storage.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.modified = s.now()
}

// FailNextReplace makes the next Replace fail with err, leaving data untouched.
func (s *MemoryStore) FailNextReplace(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}
