package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/hypetorch/internal/domain/document"
)

func mustParse(t *testing.T, raw string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return doc
}

// runStoreContract checks the behaviour every backend must share. store must
// start empty.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	doc, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	if doc.Populated() {
		t.Fatal("empty store should return the unpopulated sentinel")
	}
	if _, ok, err := store.LastModified(ctx); err != nil || ok {
		t.Fatalf("LastModified on empty store = ok %v err %v, want unavailable", ok, err)
	}

	first := mustParse(t, `{"hype_scores": {"Lionel Messi": 87.5}}`)
	if err := store.Replace(ctx, first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load after replace: %v", err)
	}
	if !got.Populated() {
		t.Fatal("store should be populated after replace")
	}
	if v, ok := got.Lookup(document.HypeScores, "Lionel Messi"); !ok || string(v) != "87.5" {
		t.Fatalf("lookup = %s, %v", v, ok)
	}
	if string(got.Bytes()) != string(first.Bytes()) {
		t.Fatalf("stored bytes differ:\n%s\n%s", got.Bytes(), first.Bytes())
	}
	if _, ok, err := store.LastModified(ctx); err != nil || !ok {
		t.Fatalf("LastModified after replace = ok %v err %v", ok, err)
	}

	second := mustParse(t, `{"hype_scores": {"Nike": 12}}`)
	if err := store.Replace(ctx, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load after second replace: %v", err)
	}
	if _, ok := got.Lookup(document.HypeScores, "Lionel Messi"); ok {
		t.Fatal("replace must not merge with the previous document")
	}
	if keys := got.Keys(document.HypeScores); len(keys) != 1 || keys[0] != "Nike" {
		t.Fatalf("keys = %v", keys)
	}

	if err := store.Replace(ctx, nil); !errors.Is(err, ErrStorageWrite) || !errors.Is(err, ErrNilDocument) {
		t.Fatalf("replace(nil) error = %v", err)
	}
}
