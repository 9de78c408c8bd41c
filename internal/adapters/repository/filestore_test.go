package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/okian/hypetorch/internal/domain/document"
)

func TestFileStore_Contract(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "dir", "hype.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	runStoreContract(t, store)
}

func TestFileStore_CreatesDirectoryAndWritesIndented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "hype.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	doc := mustParse(t, `{"mention_counts":{"Nike":3}}`)
	if err := store.Replace(context.Background(), doc); err != nil {
		t.Fatalf("replace: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "\n    \"mention_counts\": {") {
		t.Errorf("file not indented with four spaces:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hype.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, err = store.Load(context.Background())
	if !errors.Is(err, ErrStorageRead) {
		t.Fatalf("load corrupt file error = %v, want ErrStorageRead", err)
	}

	// Stat still works on a corrupt file.
	if _, ok, err := store.LastModified(context.Background()); err != nil || !ok {
		t.Fatalf("LastModified = ok %v err %v", ok, err)
	}
}

func TestFileStore_FailedReplaceLeavesFileIntact(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "hype.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	original := mustParse(t, `{"hype_scores":{"Lionel Messi":87.5}}`)
	if err := store.Replace(ctx, original); err != nil {
		t.Fatalf("replace: %v", err)
	}
	before, _ := os.ReadFile(path)

	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer func() { _ = os.Chmod(dir, 0o755) }()

	err = store.Replace(ctx, mustParse(t, `{"hype_scores":{}}`))
	if !errors.Is(err, ErrStorageWrite) {
		t.Fatalf("replace in read-only dir error = %v, want ErrStorageWrite", err)
	}

	after, _ := os.ReadFile(path)
	if string(after) != string(before) {
		t.Fatalf("file changed after failed replace:\n%s\n---\n%s", before, after)
	}
}

func TestFileStore_ConcurrentReadersSeeWholeDocuments(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "hype.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	docs := []*document.Document{
		mustParse(t, `{"hype_scores":{"A":1}}`),
		mustParse(t, `{"hype_scores":{"B":2}}`),
	}
	if err := store.Replace(ctx, docs[0]); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				doc, err := store.Load(ctx)
				if err != nil {
					errs <- err
					return
				}
				if n := len(doc.Keys(document.HypeScores)); n != 1 {
					errs <- errors.New("observed a partial document")
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if err := store.Replace(ctx, docs[j%2]); err != nil {
			t.Fatalf("replace: %v", err)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestFileStore_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	store, err := NewFileStore("~/Downloads/hypetorch_latest_output.json")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	want := filepath.Join(home, "Downloads", "hypetorch_latest_output.json")
	if store.Path() != want {
		t.Errorf("path = %s, want %s", store.Path(), want)
	}
}

func TestFileStore_EmptyPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
