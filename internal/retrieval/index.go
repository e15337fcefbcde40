// Package retrieval builds, loads and queries the persisted similarity index:
// a directory holding a manifest, a flat vector index and the document store.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/embedding"
	"github.com/hyperjump/predictimed/internal/models"
	"github.com/hyperjump/predictimed/internal/storage"
	"github.com/hyperjump/predictimed/internal/vector"
)

var (
	// ErrIndexNotFound is returned by Open when the directory or its manifest
	// does not exist.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexCorrupt is returned by Open when the directory contents are
	// unreadable or disagree with the manifest.
	ErrIndexCorrupt = errors.New("index corrupt")
	// ErrIndexExists is returned by Build for a non-empty directory without Force.
	ErrIndexExists = errors.New("index directory is not empty")
)

const defaultBatchSize = 32

// BuildOptions controls Build.
type BuildOptions struct {
	Force     bool
	BatchSize int
	IndexType string
	// Model is recorded in the manifest.
	Model  string
	Logger *zap.Logger
}

// Index is a loaded, read-only similarity index.
type Index struct {
	manifest Manifest
	vectors  vector.VectorIndex
	docs     storage.DocumentStore
}

// Build embeds docs and writes a new index directory at dir.
func Build(ctx context.Context, dir string, docs []models.Document, embedder embedding.Embedder, opts BuildOptions) (*Manifest, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to index")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if err := prepareDir(dir, opts.Force); err != nil {
		return nil, err
	}

	dims := embedder.Dimensions()
	vecs, err := vector.NewVectorIndex(opts.IndexType, dims)
	if err != nil {
		return nil, err
	}
	defer vecs.Close()

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		batch := docs[start:end]
		texts := make([]string, len(batch))
		ids := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
			ids[i] = batch[i].ID
		}
		embeddings, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed documents %d-%d: %w", start, end-1, err)
		}
		if err := vecs.Add(ctx, ids, embeddings); err != nil {
			return nil, fmt.Errorf("index vectors: %w", err)
		}
		logger.Debug("embedded batch", zap.Int("from", start), zap.Int("to", end), zap.Int("total", len(docs)))
	}
	if err := vecs.Save(filepath.Join(dir, vectorsFile)); err != nil {
		return nil, fmt.Errorf("save vectors: %w", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(dir, documentsFile))
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if err := store.InsertDocuments(ctx, docs); err != nil {
		return nil, fmt.Errorf("store documents: %w", err)
	}

	m := &Manifest{
		BuildID:    uuid.New().String(),
		Model:      opts.Model,
		Dimensions: dims,
		Count:      len(docs),
		IndexType:  vecs.Type(),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := writeManifest(dir, m); err != nil {
		return nil, err
	}
	logger.Info("index built",
		zap.String("dir", dir),
		zap.String("build_id", m.BuildID),
		zap.Int("documents", m.Count),
		zap.Int("dimensions", m.Dimensions),
	)
	return m, nil
}

func prepareDir(dir string, force bool) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return os.MkdirAll(dir, 0755)
	case err != nil:
		return fmt.Errorf("read index dir: %w", err)
	case len(entries) == 0:
		return nil
	case !force:
		return fmt.Errorf("%w: %s", ErrIndexExists, dir)
	}
	for _, name := range []string{manifestFile, vectorsFile, vectorsFile + ".ids", documentsFile, documentsFile + "-wal", documentsFile + "-shm"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// Open loads the index in dir for read-only use.
func Open(dir string) (*Index, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat index dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIndexCorrupt, dir)
	}

	m, err := readManifest(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no manifest in %s", ErrIndexNotFound, dir)
	}
	if err != nil {
		return nil, err
	}

	vecs, err := vector.NewVectorIndex(m.IndexType, m.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	if err := vecs.Load(filepath.Join(dir, vectorsFile)); err != nil {
		_ = vecs.Close()
		return nil, fmt.Errorf("%w: load vectors: %v", ErrIndexCorrupt, err)
	}
	if vecs.Size() != m.Count || vecs.Dimensions() != m.Dimensions {
		_ = vecs.Close()
		return nil, fmt.Errorf("%w: vectors hold %d x %d, manifest says %d x %d",
			ErrIndexCorrupt, vecs.Size(), vecs.Dimensions(), m.Count, m.Dimensions)
	}

	store, err := storage.OpenSQLiteStore(filepath.Join(dir, documentsFile))
	if err != nil {
		_ = vecs.Close()
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	n, err := store.CountDocuments(context.Background())
	if err != nil || n != int64(m.Count) {
		_ = vecs.Close()
		_ = store.Close()
		if err == nil {
			err = fmt.Errorf("document store holds %d, manifest says %d", n, m.Count)
		}
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}

	return &Index{manifest: *m, vectors: vecs, docs: store}, nil
}

// Manifest returns the manifest the index was opened with.
func (ix *Index) Manifest() Manifest {
	return ix.manifest
}

// Dimensions returns the vector dimension of the index.
func (ix *Index) Dimensions() int {
	return ix.manifest.Dimensions
}

// Search returns up to k documents most similar to vec, best first.
func (ix *Index) Search(ctx context.Context, vec []float32, k int) ([]models.Hit, error) {
	results, err := ix.vectors.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	docs, err := ix.docs.GetDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	hits := make([]models.Hit, len(results))
	for i, r := range results {
		hits[i] = models.Hit{Document: docs[i], Score: r.Score}
	}
	return hits, nil
}

// Document returns the indexed document with id.
func (ix *Index) Document(ctx context.Context, id string) (*models.Document, error) {
	return ix.docs.GetDocument(ctx, id)
}

// Documents returns up to limit documents in build order, starting at offset.
func (ix *Index) Documents(ctx context.Context, offset, limit int) ([]models.Document, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return nil, nil
	}
	return ix.docs.ListDocuments(ctx, offset, limit)
}

// Close releases the vector index and the document store.
func (ix *Index) Close() error {
	return errors.Join(ix.vectors.Close(), ix.docs.Close())
}
