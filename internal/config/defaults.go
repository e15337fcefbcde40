package config

import (
	"os"
	"time"
)

// DefaultConfigPath is consulted when no config.yaml exists in the working directory.
const DefaultConfigPath = "/usr/local/etc/predictimed/config.yaml"

// Defaults returns a fully defaulted config, used when no config file exists.
// API keys are read from the environment.
func Defaults() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.AnswerPort == 0 {
		cfg.Server.AnswerPort = 5010
	}
	if cfg.Server.SimplifyPort == 0 {
		cfg.Server.SimplifyPort = 5008
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Index.Path == "" {
		cfg.Index.Path = "./medical_faiss_db"
	}
	if cfg.Index.Dataset == "" {
		cfg.Index.Dataset = "./diseases_dataset.json"
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "memory"
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 3
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 32
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "huggingface"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "BAAI/bge-large-en-v1.5"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1024
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("HF_API_KEY")
	}
	applyEmbeddingDefaults(&cfg.Embedding)

	if cfg.Generator.Provider == "" {
		cfg.Generator.Provider = "groq"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = defaultGeneratorModel(cfg.Generator.Provider)
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.7
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 2048
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 90 * time.Second
	}
	if cfg.Generator.APIKey == "" {
		cfg.Generator.APIKey = os.Getenv(generatorKeyEnv(cfg.Generator.Provider))
	}

	if cfg.Simplifier.LexiconPath == "" {
		cfg.Simplifier.LexiconPath = "./data/lexicon"
	}
	se := &cfg.Simplifier.Embedding
	if se.Provider == "" {
		se.Provider = "onnx"
	}
	if se.Model == "" {
		se.Model = "michiyasunaga/BioLinkBERT-base"
	}
	if se.Dimensions == 0 {
		se.Dimensions = 768
	}
	if se.MaxTokens == 0 {
		se.MaxTokens = 512
	}
	if se.ModelPath == "" {
		se.ModelPath = "./data/models/biolinkbert-base/model.onnx"
	}
	if se.TokenizerPath == "" {
		se.TokenizerPath = "./data/models/biolinkbert-base/tokenizer.json"
	}
	applyEmbeddingDefaults(se)

	if cfg.Cache.Redis.TTL == 0 {
		cfg.Cache.Redis.TTL = 7 * 24 * time.Hour
	}
}

func applyEmbeddingDefaults(e *EmbeddingConfig) {
	if e.BatchSize == 0 {
		e.BatchSize = 32
	}
	if e.Timeout == 0 {
		e.Timeout = 60 * time.Second
	}
	if e.OutputName == "" {
		e.OutputName = "last_hidden_state"
	}
	if e.MaxTokens == 0 {
		e.MaxTokens = 512
	}
	if e.CacheSize == 0 {
		e.CacheSize = 10000
	}
}

func defaultGeneratorModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "gemini":
		return "gemini-2.0-flash"
	default:
		return "llama3-70b-8192"
	}
}

func generatorKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}
