package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIGenerator talks to any OpenAI-compatible chat completion API.
type OpenAIGenerator struct {
	client   *openai.Client
	provider string
	opts     Options
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a generator for provider ("openai" or "groq").
// An empty BaseURL selects the provider's public endpoint.
func NewOpenAIGenerator(provider string, opts Options) (*OpenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s generator: api key is required", provider)
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	switch {
	case opts.BaseURL != "":
		cfg.BaseURL = opts.BaseURL
	case provider == "groq":
		cfg.BaseURL = GroqBaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(cfg),
		provider: provider,
		opts:     opts,
	}, nil
}

// Generate sends messages as a single chat completion request.
func (g *OpenAIGenerator) Generate(ctx context.Context, messages []Message) (out string, err error) {
	start := time.Now()
	defer func() { observe(g.provider, g.opts.Model, start, err) }()

	req := openai.ChatCompletionRequest{
		Model:       g.opts.Model,
		Temperature: float32(g.opts.Temperature),
		MaxTokens:   g.opts.MaxTokens,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", g.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion returned no choices: %w", g.provider, ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", g.provider, apiErr.HTTPStatusCode, apiErr.Message, ErrGeneration)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s API error %d: %s: %w", g.provider, reqErr.HTTPStatusCode, string(reqErr.Body), ErrGeneration)
	}
	return fmt.Errorf("%s chat completion: %v: %w", g.provider, err, ErrGeneration)
}
