package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func waitWatching(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !w.Watching() {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNew_NoFiles(t *testing.T) {
	if _, err := New(nil, func(string) {}); err == nil {
		t.Fatal("expected error for empty file list")
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "dataset.json")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(dataset, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var changed []string
	w, err := New([]string{dataset}, func(p string) {
		mu.Lock()
		changed = append(changed, p)
		mu.Unlock()
	}, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	waitWatching(t, w)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(dataset, []byte(`[{"title":"x"}]`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changed) != 1 {
		t.Fatalf("expected one debounced change, got %v", changed)
	}
	if filepath.Base(changed[0]) != "dataset.json" {
		t.Errorf("changed = %q", changed[0])
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "absent", "dataset.json")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}
