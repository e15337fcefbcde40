// Package rag answers medical questions by retrieving condition documents and
// handing them, with the question, to a chat generator.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/llm"
	"github.com/hyperjump/predictimed/internal/logger"
	"github.com/hyperjump/predictimed/internal/metrics"
	"github.com/hyperjump/predictimed/internal/models"
	"github.com/hyperjump/predictimed/pkg/utils"
)

// DefaultTopK is the number of documents retrieved per question.
const DefaultTopK = 3

// Status classifies the outcome of Answer.
type Status string

const (
	// StatusAnswered means the generator produced an answer.
	StatusAnswered Status = "answered"
	// StatusTooShort means the question was rejected before retrieval.
	StatusTooShort Status = "too_short"
	// StatusUnavailable means the service started without an index or generator.
	StatusUnavailable Status = "unavailable"
	// StatusFailed means retrieval or generation returned an error.
	StatusFailed Status = "failed"
)

// ErrUnavailable is the cause reported by a degraded service that was given none.
var ErrUnavailable = errors.New("rag system is not initialized")

// Answer is the result of one question. Text is always a displayable message;
// Err is set for StatusUnavailable and StatusFailed.
type Answer struct {
	Text    string
	Sources []string
	Status  Status
	Err     error
}

// Retriever returns the k documents most similar to question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]models.Hit, error)
}

// Service is the answer orchestrator. It is safe for concurrent use as long as
// its retriever and generator are.
type Service struct {
	retriever Retriever
	generator llm.Generator
	topK      int
	cause     error
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTopK overrides DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithLogger sets the fallback logger used when the request context has none.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a ready service.
func NewService(r Retriever, g llm.Generator, opts ...Option) *Service {
	s := &Service{retriever: r, generator: g, topK: DefaultTopK, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Unavailable creates a degraded service that rejects every question with
// StatusUnavailable. cause is what prevented initialization.
func Unavailable(cause error, opts ...Option) *Service {
	if cause == nil {
		cause = ErrUnavailable
	}
	s := NewService(nil, nil, opts...)
	s.cause = cause
	return s
}

// Ready reports whether the service can answer questions.
func (s *Service) Ready() bool {
	return s.cause == nil
}

// Cause returns the initialization error of a degraded service.
func (s *Service) Cause() error {
	return s.cause
}

// Answer retrieves context for question, generates a response and appends
// the disclaimer.
func (s *Service) Answer(ctx context.Context, question string) Answer {
	ans := s.answer(ctx, question)
	metrics.AnswersTotal.WithLabelValues(string(ans.Status)).Inc()
	return ans
}

func (s *Service) answer(ctx context.Context, question string) Answer {
	log := logger.FromContext(ctx, s.logger)
	if s.cause != nil {
		return Answer{Text: MsgUnavailable, Sources: []string{}, Status: StatusUnavailable, Err: s.cause}
	}
	if utf8.RuneCountInString(strings.TrimSpace(question)) < MinQuestionLength {
		return Answer{Text: MsgTooShort, Sources: []string{}, Status: StatusTooShort}
	}

	log.Debug("answering question", zap.String("question", utils.Truncate(question, 80)))
	hits, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return s.failed(log, fmt.Errorf("retrieve: %w", err))
	}
	if len(hits) > s.topK {
		hits = hits[:s.topK]
	}

	contexts := make([]string, len(hits))
	sources := make([]string, len(hits))
	for i := range hits {
		contexts[i] = hits[i].Text
		sources[i] = hits[i].Source()
	}

	text, err := s.generator.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: BuildPrompt(question, contexts)},
	})
	if err != nil {
		return s.failed(log, err)
	}
	log.Debug("question answered", zap.Int("sources", len(sources)), zap.Int("answer_len", len(text)))
	return Answer{Text: text + Disclaimer, Sources: sources, Status: StatusAnswered}
}

func (s *Service) failed(log *zap.Logger, err error) Answer {
	log.Warn("answer failed", zap.Error(err))
	return Answer{
		Text:    fmt.Sprintf(msgFailed, err.Error()),
		Sources: []string{},
		Status:  StatusFailed,
		Err:     err,
	}
}
