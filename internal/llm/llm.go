// Package llm provides chat-completion clients for the hosted answer
// generators (Groq, OpenAI, Anthropic and Gemini).
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/predictimed/internal/metrics"
)

// Roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrGeneration wraps every provider-side failure.
var ErrGeneration = errors.New("generation failed")

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Generator turns a conversation into a completion.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// Options are the generation settings shared by all providers.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// splitSystem pulls system turns out of messages for providers that take the
// system prompt as a separate parameter.
func splitSystem(messages []Message) (system string, rest []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

func observe(provider, model string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.GenerationRequestsTotal.WithLabelValues(provider, model, status).Inc()
	metrics.GenerationRequestDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
}
