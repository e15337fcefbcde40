package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/config"
)

// New builds the embedder selected by cfg.Provider.
func New(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "huggingface":
		e, err := NewHuggingFaceEmbedder(&HuggingFaceConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			Timeout:    cfg.Timeout,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case "openai":
		return NewOpenAIEmbedder(&OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
			Logger:     logger,
		}), nil
	case "onnx":
		e, err := NewONNXEmbedder(&ONNXConfig{
			ModelPath:     cfg.ModelPath,
			TokenizerPath: cfg.TokenizerPath,
			LibraryPath:   cfg.LibraryPath,
			OutputName:    cfg.OutputName,
			Dimensions:    cfg.Dimensions,
			MaxTokens:     cfg.MaxTokens,
			CacheSize:     cfg.CacheSize,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
