package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiGenerator uses the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	client *genai.Client
	opts   Options
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, opts Options) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini generator: api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cc.HTTPOptions.Timeout = &opts.Timeout
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &GeminiGenerator{client: client, opts: opts}, nil
}

// Generate sends messages to Gemini. System turns become the system instruction.
func (g *GeminiGenerator) Generate(ctx context.Context, messages []Message) (out string, err error) {
	start := time.Now()
	defer func() { observe("gemini", g.opts.Model, start, err) }()

	system, turns := splitSystem(messages)
	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(m.Content)},
		})
	}
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.opts.Temperature)),
	}
	if g.opts.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(g.opts.MaxTokens)
	}
	if system != "" {
		gc.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %v: %w", err, ErrGeneration)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text: %w", ErrGeneration)
	}
	return text, nil
}
