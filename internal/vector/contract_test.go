package vector

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

// runIndexContract exercises behaviour every VectorIndex implementation shares.
func runIndexContract(t *testing.T, newIndex func(dim int) (VectorIndex, error)) {
	t.Helper()
	ctx := context.Background()

	t.Run("search ranks by inner product", func(t *testing.T) {
		idx, err := newIndex(3)
		if err != nil {
			t.Fatal(err)
		}
		defer idx.Close()
		ids := []string{"anemia", "asthma", "diabetes"}
		vecs := [][]float32{{1, 0, 0}, {0.8, 0.6, 0}, {0, 0, 1}}
		if err := idx.Add(ctx, ids, vecs); err != nil {
			t.Fatal(err)
		}
		results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].ID != "anemia" || results[1].ID != "asthma" {
			t.Errorf("order = %s, %s", results[0].ID, results[1].ID)
		}
		if results[0].Score < results[1].Score {
			t.Error("scores should be descending")
		}
	})

	t.Run("k larger than size", func(t *testing.T) {
		idx, _ := newIndex(2)
		defer idx.Close()
		_ = idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}})
		results, err := idx.Search(ctx, []float32{1, 0}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})

	t.Run("empty index", func(t *testing.T) {
		idx, _ := newIndex(2)
		defer idx.Close()
		results, err := idx.Search(ctx, []float32{1, 0}, 3)
		if err != nil || len(results) != 0 {
			t.Errorf("got %v, %v", results, err)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		idx, _ := newIndex(3)
		defer idx.Close()
		if err := idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}}); err == nil {
			t.Error("expected error for dimension mismatch on Add")
		}
		if err := idx.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0, 0}}); err == nil {
			t.Error("expected error for ids/vectors length mismatch")
		}
		if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
			t.Error("expected error for dimension mismatch on Search")
		}
	})

	t.Run("save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vectors.idx")
		idx, _ := newIndex(3)
		defer idx.Close()
		_ = idx.Add(ctx, []string{"a", "b", "c"}, [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
		if err := idx.Save(path); err != nil {
			t.Fatalf("Save: %v", err)
		}

		loaded, _ := newIndex(3)
		defer loaded.Close()
		if err := loaded.Load(path); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if loaded.Size() != 3 {
			t.Errorf("after Load size=%d, want 3", loaded.Size())
		}
		results, err := loaded.Search(ctx, []float32{0, 0, 1}, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 || results[0].ID != "c" {
			t.Errorf("Search after Load: got %v", results)
		}

		wrongDim, _ := newIndex(2)
		defer wrongDim.Close()
		if err := wrongDim.Load(path); !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt for dimension mismatch, got %v", err)
		}
	})

	t.Run("load missing file", func(t *testing.T) {
		idx, _ := newIndex(2)
		defer idx.Close()
		err := idx.Load(filepath.Join(t.TempDir(), "missing.idx"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist, got %v", err)
		}
	})
}
