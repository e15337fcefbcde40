// Package server provides the HTTP surface of the answer and simplify
// services.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/config"
	"github.com/hyperjump/predictimed/internal/metrics"
	"github.com/hyperjump/predictimed/internal/rag"
	"github.com/hyperjump/predictimed/internal/simplify"
)

// Service names, used as the metrics label and in log lines.
const (
	ServiceAnswer   = "answer"
	ServiceSimplify = "simplify"
)

// Answerer is the orchestrator the answer service calls.
type Answerer interface {
	Answer(ctx context.Context, question string) rag.Answer
	Ready() bool
	Cause() error
}

// Annotator is the pipeline the simplify service calls.
type Annotator interface {
	Annotate(ctx context.Context, text string) (*simplify.Result, error)
}

// Server runs one listener per configured service.
type Server struct {
	config    *config.ServerConfig
	logger    *zap.Logger
	answerer  Answerer
	annotator Annotator

	mu      sync.Mutex
	servers []*http.Server
	stopped bool
}

// Option configures a Server.
type Option func(*Server)

// WithAnswerer enables the answer service.
func WithAnswerer(a Answerer) Option {
	return func(s *Server) { s.answerer = a }
}

// WithAnnotator enables the simplify service.
func WithAnnotator(a Annotator) Option {
	return func(s *Server) { s.annotator = a }
}

// NewServer creates a server. At least one of WithAnswerer or WithAnnotator
// must be given before Start.
func NewServer(cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{config: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on every enabled service and blocks until all of them stop.
// It returns the first listener error other than http.ErrServerClosed. Start
// after Stop returns nil without listening.
func (s *Server) Start() error {
	type endpoint struct {
		name    string
		port    int
		handler http.Handler
	}
	var endpoints []endpoint
	if s.answerer != nil {
		endpoints = append(endpoints, endpoint{ServiceAnswer, s.config.AnswerPort, s.AnswerRouter()})
	}
	if s.annotator != nil {
		endpoints = append(endpoints, endpoint{ServiceSimplify, s.config.SimplifyPort, s.SimplifyRouter()})
	}
	if len(endpoints) == 0 {
		return errors.New("no service enabled")
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	for _, ep := range endpoints {
		s.servers = append(s.servers, &http.Server{
			Addr:              net.JoinHostPort(s.config.Host, strconv.Itoa(ep.port)),
			Handler:           ep.handler,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}
	servers := append([]*http.Server(nil), s.servers...)
	s.mu.Unlock()

	errCh := make(chan error, len(servers))
	var wg sync.WaitGroup
	for i, srv := range servers {
		wg.Add(1)
		go func(name string, srv *http.Server) {
			defer wg.Done()
			s.logger.Info("Starting server", zap.String("service", name), zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s server: %w", name, err)
				// One failed listener takes the others down with it.
				_ = s.Stop(context.Background())
			}
		}(endpoints[i].name, srv)
	}
	wg.Wait()
	close(errCh)
	return <-errCh
}

// Stop gracefully shuts down every listener. It may be called before Start
// has created them; Start then does not listen at all.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	servers := s.servers
	s.servers = nil
	s.mu.Unlock()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AnswerRouter returns the answer service routes.
func (s *Server) AnswerRouter() http.Handler {
	r := s.baseRouter(ServiceAnswer)
	h := &answerHandlers{answerer: s.answerer, logger: s.logger}
	r.Post("/api/healthcare/answer", h.handleAnswer)
	r.Post("/ask", h.handleAsk)
	r.Get("/", h.handleTest)
	r.Get("/test", h.handleTest)
	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// SimplifyRouter returns the simplify service routes.
func (s *Server) SimplifyRouter() http.Handler {
	r := s.baseRouter(ServiceSimplify)
	h := &simplifyHandlers{annotator: s.annotator, logger: s.logger}
	r.Post("/api/medical/simplify", h.handleSimplify)
	r.Options("/api/medical/simplify", h.handlePreflight)
	r.Post("/simplify", h.handleSimplify)
	r.Get("/", h.handleTest)
	r.Get("/test", h.handleTest)
	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) baseRouter(service string) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger.With(zap.String("service", service))))
	r.Use(metrics.Middleware(service))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}
	r.Use(middleware.Compress(5))
	return r
}
