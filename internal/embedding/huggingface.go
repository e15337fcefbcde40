package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/metrics"
	"github.com/hyperjump/predictimed/pkg/utils"
)

// DefaultHuggingFaceURL is the Inference API feature-extraction pipeline root.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"

const providerHuggingFace = "huggingface"

// HuggingFaceConfig holds the Inference API settings.
type HuggingFaceConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	BatchSize  int
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// HuggingFaceEmbedder calls the Hugging Face Inference API feature-extraction
// pipeline for sentence-embedding models such as BAAI/bge-large-en-v1.5.
type HuggingFaceEmbedder struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	model      string
	dimensions int
	batchSize  int
	logger     *zap.Logger
}

type featureExtractionRequest struct {
	Inputs  []string                 `json:"inputs"`
	Options featureExtractionOptions `json:"options"`
}

type featureExtractionOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

// NewHuggingFaceEmbedder creates an Inference API embedder.
func NewHuggingFaceEmbedder(cfg *HuggingFaceConfig) (*HuggingFaceEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("huggingface embedder: model is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("huggingface embedder: dimensions must be positive")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultHuggingFaceURL
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 32
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HuggingFaceEmbedder{
		client:     client,
		endpoint:   strings.TrimRight(base, "/") + "/" + cfg.Model,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  batch,
		logger:     logger,
	}, nil
}

// Embed returns the normalized embedding of text.
func (e *HuggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in requests of at most BatchSize inputs.
func (e *HuggingFaceEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.request(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *HuggingFaceEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases idle connections.
func (e *HuggingFaceEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *HuggingFaceEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(featureExtractionRequest{
		Inputs:  texts,
		Options: featureExtractionOptions{WaitForModel: true, UseCache: true},
	})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.recordError("transport")
		return nil, fmt.Errorf("embedding request failed: %v: %w", err, ErrProviderError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		e.recordError("transport")
		return nil, fmt.Errorf("read embedding response: %v: %w", err, ErrProviderError)
	}
	if resp.StatusCode != http.StatusOK {
		e.recordError("api_error")
		return nil, fmt.Errorf("embedding API error %d: %s: %w", resp.StatusCode, apiErrorMessage(data), ErrProviderError)
	}

	vecs, err := decodeFeatures(data)
	if err != nil {
		e.recordError("bad_response")
		return nil, fmt.Errorf("%v: %w", err, ErrProviderError)
	}
	if len(vecs) != len(texts) {
		e.recordError("bad_response")
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs: %w", len(vecs), len(texts), ErrProviderError)
	}
	for _, v := range vecs {
		if len(v) != e.dimensions {
			e.recordError("dimension_mismatch")
			return nil, fmt.Errorf("embedding has %d dimensions, want %d: %w", len(v), e.dimensions, ErrProviderError)
		}
		utils.NormalizeL2(v)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerHuggingFace, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerHuggingFace, e.model).Observe(time.Since(start).Seconds())
	e.logger.Debug("Embedded texts", zap.String("model", e.model), zap.Int("count", len(texts)), zap.Duration("took", time.Since(start)))
	return vecs, nil
}

func (e *HuggingFaceEmbedder) recordError(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerHuggingFace, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerHuggingFace, e.model, kind).Inc()
}

// decodeFeatures accepts pooled output ([][]float32) and token-level output
// ([][][]float32), mean-pooling the latter.
func decodeFeatures(data []byte) ([][]float32, error) {
	var pooled [][]float32
	if err := json.Unmarshal(data, &pooled); err == nil {
		return pooled, nil
	}
	var tokens [][][]float32
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode embedding response: unexpected shape")
	}
	out := make([][]float32, len(tokens))
	for i, seq := range tokens {
		if len(seq) == 0 {
			return nil, fmt.Errorf("decode embedding response: empty token sequence")
		}
		mean := make([]float32, len(seq[0]))
		for _, tok := range seq {
			for j := range mean {
				if j < len(tok) {
					mean[j] += tok[j]
				}
			}
		}
		for j := range mean {
			mean[j] /= float32(len(seq))
		}
		out[i] = mean
	}
	return out, nil
}

// apiErrorMessage extracts the "error" field from an Inference API error body.
func apiErrorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return utils.Truncate(strings.TrimSpace(string(body)), 200)
}
