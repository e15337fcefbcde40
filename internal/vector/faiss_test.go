//go:build faiss && cgo
// +build faiss,cgo

package vector

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFAISSIndex_Contract(t *testing.T) {
	runIndexContract(t, func(dim int) (VectorIndex, error) {
		return NewVectorIndex("faiss", dim)
	})
}

func TestFAISSIndex_SaveWritesIDFile(t *testing.T) {
	idx, err := NewFAISSIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	path := filepath.Join(t.TempDir(), "vectors.idx")
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".ids"); err != nil {
		t.Errorf("id file not created: %v", err)
	}
}

func TestFAISSIndex_Type(t *testing.T) {
	idx, err := NewFAISSIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if got := idx.Type(); got != "faiss" {
		t.Errorf("Type() = %q, want %q", got, "faiss")
	}
}
