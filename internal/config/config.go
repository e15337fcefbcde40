// Package config provides configuration loading and structs for the
// PredictiMed answer and simplify services.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	LogLevel   string           `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Server     ServerConfig     `yaml:"server"`
	Index      IndexConfig      `yaml:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Simplifier SimplifierConfig `yaml:"simplifier"`
	Cache      CacheConfig      `yaml:"cache"`
}

// ServerConfig holds HTTP listener settings for both services.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	AnswerPort      int           `yaml:"answer_port" validate:"min=1,max=65535"`
	SimplifyPort    int           `yaml:"simplify_port" validate:"min=1,max=65535"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// IndexConfig locates the offline-built similarity index and its source dataset.
type IndexConfig struct {
	Path      string `yaml:"path" validate:"required"`
	Dataset   string `yaml:"dataset"`
	Type      string `yaml:"type" validate:"oneof=memory faiss"`
	TopK      int    `yaml:"top_k" validate:"min=1"`
	BatchSize int    `yaml:"batch_size" validate:"min=1"`
}

// EmbeddingConfig selects and configures an embedding provider.
type EmbeddingConfig struct {
	Provider      string        `yaml:"provider" validate:"oneof=huggingface openai onnx mock"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Dimensions    int           `yaml:"dimensions" validate:"min=1"`
	BatchSize     int           `yaml:"batch_size"`
	Timeout       time.Duration `yaml:"timeout"`
	ModelPath     string        `yaml:"model_path"`
	TokenizerPath string        `yaml:"tokenizer_path"`
	LibraryPath   string        `yaml:"library_path"`
	OutputName    string        `yaml:"output_name"`
	MaxTokens     int           `yaml:"max_tokens"`
	CacheSize     int           `yaml:"cache_size"`
}

// GeneratorConfig selects and configures the chat-completion provider.
type GeneratorConfig struct {
	Provider    string        `yaml:"provider" validate:"oneof=groq openai anthropic gemini"`
	Model       string        `yaml:"model" validate:"required"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature" validate:"min=0,max=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"min=1"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SimplifierConfig configures the term-annotation pipeline.
type SimplifierConfig struct {
	LexiconPath string          `yaml:"lexicon_path" validate:"required"`
	WordNetDir  string          `yaml:"wordnet_dir"`
	Embedding   EmbeddingConfig `yaml:"embedding"`
}

// CacheConfig configures the optional shared embedding cache.
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address" validate:"required_if=Enabled true"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0"`
	TTL      time.Duration `yaml:"ttl"`
}

// Load reads and parses the config file at path, expands ${VAR} references
// and paths, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Index.Path = expandPath(cfg.Index.Path, configDir)
	cfg.Index.Dataset = expandPath(cfg.Index.Dataset, configDir)
	cfg.Simplifier.LexiconPath = expandPath(cfg.Simplifier.LexiconPath, configDir)
	cfg.Simplifier.WordNetDir = expandPath(cfg.Simplifier.WordNetDir, configDir)
	for _, e := range []*EmbeddingConfig{&cfg.Embedding, &cfg.Simplifier.Embedding} {
		e.ModelPath = expandPath(e.ModelPath, configDir)
		e.TokenizerPath = expandPath(e.TokenizerPath, configDir)
		e.LibraryPath = expandPath(e.LibraryPath, configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FindConfigFile returns the first existing config file among the candidates:
// explicit, ./config.yaml, then DefaultConfigPath.
func FindConfigFile(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, fileExists(explicit)
	}
	for _, p := range []string{"config.yaml", DefaultConfigPath} {
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory. Empty
// paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
