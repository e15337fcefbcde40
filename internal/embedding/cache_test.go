package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hyperjump/predictimed/internal/storage"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	// touching a makes b the eviction candidate
	c.Get("a")
	c.Set("c", []float32{6})
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to remain")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestEmbeddingCache_ZeroCapacity(t *testing.T) {
	c := NewEmbeddingCache(0)
	c.Set("a", []float32{1})
	if _, ok := c.Get("a"); ok {
		t.Error("zero-capacity cache should not store")
	}
}

type countingEmbedder struct {
	*MockEmbedder
	calls      int
	batchCalls int
	batchSizes []int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.MockEmbedder.Embed(ctx, text)
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	e.batchSizes = append(e.batchSizes, len(texts))
	return e.MockEmbedder.EmbedBatch(ctx, texts)
}

type mapStore struct {
	data map[string][]byte
	err  error
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func TestCachedEmbedder_LocalHit(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	c := NewCachedEmbedder(inner, "mock", 10, WithCacheMetrics(counter))
	ctx := context.Background()

	first, err := c.Embed(ctx, "fever")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Embed(ctx, "fever")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if first[0] != second[0] {
		t.Error("cached vector differs")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v", got)
	}
}

func TestCachedEmbedder_SharedStore(t *testing.T) {
	store := &mapStore{data: map[string][]byte{}}
	ctx := context.Background()

	inner1 := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	if _, err := NewCachedEmbedder(inner1, "mock", 10, WithStore(store)).Embed(ctx, "cough"); err != nil {
		t.Fatal(err)
	}
	if len(store.data) != 1 {
		t.Fatalf("store has %d entries", len(store.data))
	}

	// A second process with an empty LRU reads from the store.
	inner2 := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	if _, err := NewCachedEmbedder(inner2, "mock", 10, WithStore(store)).Embed(ctx, "cough"); err != nil {
		t.Fatal(err)
	}
	if inner2.calls != 0 {
		t.Errorf("inner called %d times, want 0", inner2.calls)
	}
}

func TestCachedEmbedder_StoreErrorsIgnored(t *testing.T) {
	store := &mapStore{data: map[string][]byte{}, err: errors.New("connection refused")}
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(4)}
	vec, err := NewCachedEmbedder(inner, "mock", 0, WithStore(store)).Embed(context.Background(), "rash")
	if err != nil {
		t.Fatalf("store failure should not fail Embed: %v", err)
	}
	if len(vec) != 4 {
		t.Errorf("len = %d", len(vec))
	}
}

func TestCachedEmbedder_BatchOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	c := NewCachedEmbedder(inner, "mock", 10)
	ctx := context.Background()
	if _, err := c.Embed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	out, err := c.EmbedBatch(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[0] == nil || out[2] == nil {
		t.Fatalf("out = %v", out)
	}
	if inner.batchCalls != 1 || inner.batchSizes[0] != 2 {
		t.Errorf("batch calls %d sizes %v", inner.batchCalls, inner.batchSizes)
	}
}

func TestVectorBytesRoundTrip(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	got, err := bytesToVector(vectorToBytes(v))
	if err != nil {
		t.Fatal(err)
	}
	for i := range v {
		if got[i] != v[i] {
			t.Fatalf("got %v", got)
		}
	}
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd length")
	}
}
