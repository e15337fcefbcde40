package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/predictimed/internal/config"
)

// New builds the generator selected by cfg.Provider.
func New(ctx context.Context, cfg *config.GeneratorConfig) (Generator, error) {
	opts := Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}
	switch cfg.Provider {
	case "groq", "openai":
		g, err := NewOpenAIGenerator(cfg.Provider, opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "anthropic":
		g, err := NewClaudeGenerator(opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "gemini":
		g, err := NewGeminiGenerator(ctx, opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
