package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/config"
	"github.com/hyperjump/predictimed/internal/embedding"
	"github.com/hyperjump/predictimed/internal/lexicon"
	"github.com/hyperjump/predictimed/internal/llm"
	"github.com/hyperjump/predictimed/internal/metrics"
	"github.com/hyperjump/predictimed/internal/rag"
	"github.com/hyperjump/predictimed/internal/retrieval"
	"github.com/hyperjump/predictimed/internal/simplify"
	"github.com/hyperjump/predictimed/internal/storage"
)

// localCacheSize is the per-process LRU in front of the shared cache.
const localCacheSize = 1024

// components owns everything opened for one command.
type components struct {
	logger  *zap.Logger
	cache   *storage.RedisStore
	closers []io.Closer
}

func newComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	c := &components{logger: logger}
	if cfg.Cache.Redis.Enabled {
		store, err := storage.NewRedisStore(storage.RedisConfig{
			Addrs:    []string{cfg.Cache.Redis.Address},
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.Redis.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		if err := store.Ping(context.Background()); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		c.cache = store
		c.closers = append(c.closers, store)
		logger.Info("embedding cache connected", zap.String("address", cfg.Cache.Redis.Address))
	}
	return c, nil
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			c.logger.Warn("close failed", zap.Error(err))
		}
	}
	c.closers = nil
}

// embedder builds the provider selected by cfg behind the local LRU and, when
// configured, the shared Redis cache.
func (c *components) embedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	inner, err := embedding.New(cfg, c.logger)
	if err != nil {
		return nil, err
	}
	opts := []embedding.CacheOption{
		embedding.WithCacheMetrics(metrics.EmbeddingCacheTotal),
		embedding.WithCacheLogger(c.logger),
	}
	if c.cache != nil {
		opts = append(opts, embedding.WithStore(c.cache))
	}
	e := embedding.NewCachedEmbedder(inner, cfg.Provider+":"+cfg.Model, localCacheSize, opts...)
	c.closers = append(c.closers, e)
	return e, nil
}

// answerService opens the index and generator. Any failure yields a degraded
// service that reports the cause on every request instead of failing startup.
func (c *components) answerService(ctx context.Context, cfg *config.Config) *rag.Service {
	svc, err := c.openAnswerService(ctx, cfg)
	if err != nil {
		c.logger.Error("RAG system initialization failed; answers are disabled", zap.Error(err))
		if errors.Is(err, retrieval.ErrIndexNotFound) {
			c.logger.Warn("build the index first with: predictimed index", zap.String("path", cfg.Index.Path))
		}
		return rag.Unavailable(err, rag.WithLogger(c.logger))
	}
	c.logger.Info("RAG system initialized",
		zap.String("index", cfg.Index.Path),
		zap.String("generator", cfg.Generator.Provider+"/"+cfg.Generator.Model),
	)
	return svc
}

func (c *components) openAnswerService(ctx context.Context, cfg *config.Config) (*rag.Service, error) {
	idx, err := retrieval.Open(cfg.Index.Path)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, idx)
	if m := idx.Manifest(); m.Model != "" && m.Model != cfg.Embedding.Model {
		c.logger.Warn("index was built with a different embedding model",
			zap.String("index_model", m.Model), zap.String("configured_model", cfg.Embedding.Model))
	}

	emb, err := c.embedder(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	retriever, err := retrieval.NewRetriever(idx, emb)
	if err != nil {
		return nil, err
	}
	gen, err := llm.New(ctx, &cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("answer generator: %w", err)
	}
	return rag.NewService(retriever, gen, rag.WithTopK(cfg.Index.TopK), rag.WithLogger(c.logger)), nil
}

// simplifier opens the lexicon and, when its embedder can be built, the
// context classifier. Without a classifier explanations are definitions only.
func (c *components) simplifier(cfg *config.Config) (*simplify.Simplifier, error) {
	lex, err := lexicon.Open(cfg.Simplifier.LexiconPath)
	if err != nil {
		if errors.Is(err, lexicon.ErrNotFound) {
			return nil, fmt.Errorf("%w (import WordNet first with: predictimed lexicon import <dict-dir>)", err)
		}
		return nil, err
	}
	c.closers = append(c.closers, lex)

	opts := []simplify.Option{simplify.WithLogger(c.logger)}
	emb, err := c.embedder(&cfg.Simplifier.Embedding)
	if err != nil {
		c.logger.Warn("context classifier disabled", zap.Error(err))
	} else {
		opts = append(opts, simplify.WithClassifier(simplify.NewContextClassifier(emb)))
	}
	return simplify.New(simplify.ProseTagger{}, lex, opts...), nil
}
