package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/predictimed/internal/models"
)

func sampleDocs() []models.Document {
	return []models.Document{
		{ID: "cond-0-anemia", Position: 0, Text: "Disease Name: Anemia", Metadata: map[string]string{models.MetadataSource: "Medical Database - Anemia"}},
		{ID: "cond-1-asthma", Position: 1, Text: "Disease Name: Asthma", Metadata: map[string]string{models.MetadataSource: "Medical Database - Asthma"}},
		{ID: "cond-2-gout", Position: 2, Text: "Disease Name: Gout"},
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "documents.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_InsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertDocuments(ctx, sampleDocs()); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetDocument(ctx, "cond-1-asthma")
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != 1 || got.Text != "Disease Name: Asthma" {
		t.Errorf("got %+v", got)
	}
	if got.Source() != "Medical Database - Asthma" {
		t.Errorf("Source() = %q", got.Source())
	}

	gout, err := store.GetDocument(ctx, "cond-2-gout")
	if err != nil {
		t.Fatal(err)
	}
	if gout.Source() != models.DefaultSource {
		t.Errorf("Source() without metadata = %q, want %q", gout.Source(), models.DefaultSource)
	}

	_, err = store.GetDocument(ctx, "missing")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSQLiteStore_GetDocumentsKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.InsertDocuments(ctx, sampleDocs()); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetDocuments(ctx, []string{"cond-2-gout", "cond-0-anemia"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "cond-2-gout" || got[1].ID != "cond-0-anemia" {
		t.Errorf("order not preserved: %+v", got)
	}

	if _, err := store.GetDocuments(ctx, []string{"cond-0-anemia", "nope"}); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}

	empty, err := store.GetDocuments(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty ids: got %v, %v", empty, err)
	}
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := sampleDocs()
	// Insert out of order; listing follows position.
	docs[0], docs[2] = docs[2], docs[0]
	if err := store.InsertDocuments(ctx, docs); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	list, err := store.ListDocuments(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Position != 1 || list[1].Position != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestSQLiteStore_InsertDuplicateRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := sampleDocs()
	docs[2].ID = docs[0].ID
	if err := store.InsertDocuments(ctx, docs); err == nil {
		t.Fatal("expected duplicate id error")
	}
	n, err := store.CountDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count after failed insert = %d, want 0", n)
	}
}

func TestOpenSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")
	if _, err := OpenSQLiteStore(path); err == nil {
		t.Fatal("expected error for missing database")
	}

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.InsertDocuments(context.Background(), sampleDocs()); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	ro, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	n, err := ro.CountDocuments(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
