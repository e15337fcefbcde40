package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestHuggingFaceEmbedder_Batch(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/BAAI/bge-large-en-v1.5" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req featureExtractionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if !req.Options.WaitForModel {
			t.Error("wait_for_model should be set")
		}
		out := make([][]float32, len(req.Inputs))
		for i := range out {
			out[i] = []float32{3, 4, float32(i)}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer server.Close()

	emb, err := NewHuggingFaceEmbedder(&HuggingFaceConfig{
		APIKey:     "hf-key",
		BaseURL:    server.URL,
		Model:      "BAAI/bge-large-en-v1.5",
		Dimensions: 3,
		BatchSize:  2,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	vecs, err := emb.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors", len(vecs))
	}
	if requests != 2 {
		t.Errorf("expected 2 requests, got %d", requests)
	}
	for i, v := range vecs {
		if math.Abs(norm(v)-1) > 1e-5 {
			t.Errorf("vector %d not normalized: %v", i, v)
		}
	}
}

func TestHuggingFaceEmbedder_TokenLevelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[[1,0],[0,1]]]`))
	}))
	defer server.Close()

	emb, err := NewHuggingFaceEmbedder(&HuggingFaceConfig{BaseURL: server.URL, Model: "m", Dimensions: 2})
	if err != nil {
		t.Fatal(err)
	}
	v, err := emb.Embed(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(v[0]-v[1])) > 1e-6 {
		t.Errorf("expected mean-pooled vector, got %v", v)
	}
}

func TestHuggingFaceEmbedder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`},
		{"bad shape", http.StatusOK, `{"vectors":[]}`},
		{"wrong dims", http.StatusOK, `[[1,2,3,4]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			emb, err := NewHuggingFaceEmbedder(&HuggingFaceConfig{BaseURL: server.URL, Model: "m", Dimensions: 2})
			if err != nil {
				t.Fatal(err)
			}
			_, err = emb.Embed(context.Background(), "x")
			if !errors.Is(err, ErrProviderError) {
				t.Errorf("expected ErrProviderError, got %v", err)
			}
		})
	}
}

func TestNewHuggingFaceEmbedder_Validation(t *testing.T) {
	if _, err := NewHuggingFaceEmbedder(&HuggingFaceConfig{Dimensions: 3}); err == nil {
		t.Error("expected error without model")
	}
	if _, err := NewHuggingFaceEmbedder(&HuggingFaceConfig{Model: "m"}); err == nil {
		t.Error("expected error without dimensions")
	}
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		resp := struct {
			Object string `json:"object"`
			Data   []item `json:"data"`
			Model  string `json:"model"`
		}{Object: "list", Model: "test-model"}
		// reverse order to check index placement
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, item{Object: "embedding", Embedding: []float32{float32(i + 1), 0}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Dimensions: 2,
	})
	vecs, err := emb.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	if len(vecs) != 2 || vecs[0][0] != 1 || vecs[1][0] != 1 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
}

func TestOpenAIEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: server.URL, Model: "m", Dimensions: 2})
	_, err := emb.Embed(context.Background(), "x")
	if !errors.Is(err, ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestMockEmbedder(t *testing.T) {
	e := NewMockEmbedder(16)
	a, _ := e.Embed(context.Background(), "fever")
	b, _ := e.Embed(context.Background(), "fever")
	c, _ := e.Embed(context.Background(), "rash")
	if len(a) != 16 {
		t.Fatalf("len = %d", len(a))
	}
	if a[3] != b[3] {
		t.Error("mock embeddings should be deterministic")
	}
	if a[3] == c[3] && a[5] == c[5] {
		t.Error("different texts should differ")
	}
	if math.Abs(norm(a)-1) > 1e-5 {
		t.Errorf("norm = %v", norm(a))
	}
}
