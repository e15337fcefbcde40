package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeMaxTokens = 2048

// ClaudeGenerator uses the Anthropic Messages API.
type ClaudeGenerator struct {
	client anthropic.Client
	opts   Options
}

var _ Generator = (*ClaudeGenerator)(nil)

// NewClaudeGenerator creates an Anthropic-backed generator.
func NewClaudeGenerator(opts Options) (*ClaudeGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic generator: api key is required")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultClaudeMaxTokens
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return &ClaudeGenerator{client: anthropic.NewClient(reqOpts...), opts: opts}, nil
}

// Generate sends messages to Claude. System turns become the system prompt.
func (g *ClaudeGenerator) Generate(ctx context.Context, messages []Message) (out string, err error) {
	start := time.Now()
	defer func() { observe("anthropic", g.opts.Model, start, err) }()

	system, turns := splitSystem(messages)
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.opts.Model),
		MaxTokens:   int64(g.opts.MaxTokens),
		Temperature: anthropic.Float(g.opts.Temperature),
	}
	for _, m := range turns {
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %v: %w", err, ErrGeneration)
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text: %w", ErrGeneration)
	}
	return b.String(), nil
}
