// Package indexer runs the offline build: condition dataset in, persisted
// similarity index out.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/config"
	"github.com/hyperjump/predictimed/internal/corpus"
	"github.com/hyperjump/predictimed/internal/embedding"
	"github.com/hyperjump/predictimed/internal/retrieval"
)

// Indexer builds the similarity index from a condition dataset.
type Indexer struct {
	embedder embedding.Embedder
	config   *config.IndexConfig
	model    string
	logger   *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for progress output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithModel records the embedding model name in the index manifest.
func WithModel(model string) IndexerOption {
	return func(idx *Indexer) { idx.model = model }
}

// NewIndexer creates an indexer that embeds with embedder and writes to
// cfg.Path.
func NewIndexer(embedder embedding.Embedder, cfg *config.IndexConfig, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		embedder: embedder,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Result summarizes a completed build.
type Result struct {
	Manifest *retrieval.Manifest
	Elapsed  time.Duration
}

// IndexDataset loads the dataset at path, flattens every record and builds
// the index. An existing index is replaced only when force is set.
func (idx *Indexer) IndexDataset(ctx context.Context, path string, force bool) (*Result, error) {
	start := time.Now()
	idx.logger.Info("indexer loading dataset", zap.String("path", path))
	records, err := corpus.LoadDatasetFile(path)
	if err != nil {
		return nil, err
	}

	docs := corpus.BuildDocuments(records)
	if len(docs) == 0 {
		return nil, fmt.Errorf("dataset %s has no condition records", path)
	}
	idx.logger.Info("indexer built documents",
		zap.Int("records", len(records)),
		zap.Int("documents", len(docs)),
	)

	m, err := retrieval.Build(ctx, idx.config.Path, docs, idx.embedder, retrieval.BuildOptions{
		Force:     force,
		BatchSize: idx.config.BatchSize,
		IndexType: idx.config.Type,
		Model:     idx.model,
		Logger:    idx.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return &Result{Manifest: m, Elapsed: time.Since(start)}, nil
}
