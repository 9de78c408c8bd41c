package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/hypetorch/internal/domain/document"
	"github.com/okian/hypetorch/pkg/metrics"
)

// FileStore keeps the document in a single JSON file. Load reads the file on
// every call. Replace writes a sibling temp file and renames it over the live
// one, so readers see either the old or the new document in full.
type FileStore struct {
	path     string
	fileMode fs.FileMode
	dirMode  fs.FileMode
}

// NewFileStore creates a file-backed store. A leading "~/" in path is expanded
// to the user's home directory.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("data file path must not be empty")
	}
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	s := applyOptions(opts)
	return &FileStore{
		path:     expanded,
		fileMode: fs.FileMode(s.fileMode),
		dirMode:  fs.FileMode(s.dirMode),
	}, nil
}

// Path returns the resolved document path.
func (s *FileStore) Path() string { return s.path }

// Backend implements Store.
func (s *FileStore) Backend() string { return BackendFile }

// Load implements Store.
func (s *FileStore) Load(_ context.Context) (doc *document.Document, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(BackendFile, "load", err, time.Since(start)) }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document.Unpopulated(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageRead, s.path, err)
	}
	doc, err = document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStorageRead, s.path, err)
	}
	return doc, nil
}

// Replace implements Store.
func (s *FileStore) Replace(_ context.Context, doc *document.Document) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(BackendFile, "replace", err, time.Since(start)) }()

	if doc == nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, ErrNilDocument)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("%w: create dir %s: %v", ErrStorageWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorageWrite, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(doc.Bytes()); err != nil {
		return fmt.Errorf("%w: write temp file: %v", ErrStorageWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync temp file: %v", ErrStorageWrite, err)
	}
	if err := tmp.Chmod(s.fileMode); err != nil {
		return fmt.Errorf("%w: chmod temp file: %v", ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrStorageWrite, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		committed = true
		return fmt.Errorf("%w: rename into place: %v", ErrStorageWrite, err)
	}
	committed = true
	syncDir(dir)
	return nil
}

// LastModified implements Store.
func (s *FileStore) LastModified(_ context.Context) (time.Time, bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: stat %s: %v", ErrStorageRead, s.path, err)
	}
	return info.ModTime(), true, nil
}

// syncDir flushes the directory entry after a rename. Best effort: not every
// platform supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
