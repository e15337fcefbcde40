package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/config"
	"github.com/hyperjump/predictimed/internal/llm"
	"github.com/hyperjump/predictimed/internal/models"
	"github.com/hyperjump/predictimed/internal/rag"
	"github.com/hyperjump/predictimed/internal/simplify"
)

type stubRetriever struct {
	hits []models.Hit
	err  error
}

func (s *stubRetriever) Retrieve(context.Context, string, int) ([]models.Hit, error) {
	return s.hits, s.err
}

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, []llm.Message) (string, error) {
	s.calls++
	return s.text, s.err
}

var _ rag.Retriever = (*stubRetriever)(nil)
var _ llm.Generator = (*stubGenerator)(nil)

type stubAnnotator struct {
	res *simplify.Result
	err error
}

func (s *stubAnnotator) Annotate(_ context.Context, text string) (*simplify.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, simplify.ErrEmptyText
	}
	return s.res, s.err
}

var _ Annotator = (*stubAnnotator)(nil)
var _ Answerer = (*rag.Service)(nil)

func diabetesService(gen *stubGenerator) *rag.Service {
	ret := &stubRetriever{hits: []models.Hit{{
		Document: models.Document{Text: "Disease Name: Diabetes", Metadata: map[string]string{"source": "Medical Database - Diabetes"}},
		Score:    0.9,
	}}}
	return rag.NewService(ret, gen)
}

func newTestServer(opts ...Option) *Server {
	return NewServer(&config.ServerConfig{Host: "127.0.0.1", RequestTimeout: 5 * time.Second}, zap.NewNop(), opts...)
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeAnswer(t *testing.T, w *httptest.ResponseRecorder) answerResponse {
	t.Helper()
	var out answerResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v (body %q)", err, w.Body.String())
	}
	return out
}

func TestHandleAnswer(t *testing.T) {
	gen := &stubGenerator{text: "Diabetes is a chronic condition."}
	h := newTestServer(WithAnswerer(diabetesService(gen))).AnswerRouter()

	w := do(t, h, http.MethodPost, "/api/healthcare/answer", "application/json", `{"question":"What is diabetes?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	out := decodeAnswer(t, w)
	if out.Answer != "Diabetes is a chronic condition."+rag.Disclaimer {
		t.Errorf("answer: got %q", out.Answer)
	}
	if len(out.Sources) != 1 || out.Sources[0] != "Medical Database - Diabetes" {
		t.Errorf("sources: got %v", out.Sources)
	}
}

func TestHandleAnswer_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantAnswer  string
	}{
		{"form body", "application/x-www-form-urlencoded", "question=hello+there", http.StatusBadRequest, msgNotJSON},
		{"no content type", "", `{"question":"What is diabetes?"}`, http.StatusBadRequest, msgNotJSON},
		{"malformed json", "application/json", `{"question":`, http.StatusBadRequest, msgNotJSON},
		{"empty body", "application/json", ``, http.StatusBadRequest, msgNotJSON},
		{"missing question", "application/json", `{"text":"What is diabetes?"}`, http.StatusBadRequest, msgQuestionRequired},
		{"null question", "application/json", `{"question":null}`, http.StatusBadRequest, msgQuestionRequired},
		{"numeric question", "application/json", `{"question":42}`, http.StatusBadRequest, msgQuestionRequired},
		{"too short", "application/json", `{"question":"  flu  "}`, http.StatusOK, rag.MsgTooShort},
		{"charset param", "application/json; charset=utf-8", `{"question":"hey"}`, http.StatusOK, rag.MsgTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{text: "unused"}
			h := newTestServer(WithAnswerer(diabetesService(gen))).AnswerRouter()
			w := do(t, h, http.MethodPost, "/api/healthcare/answer", tt.contentType, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			out := decodeAnswer(t, w)
			if out.Answer != tt.wantAnswer {
				t.Errorf("answer: got %q, want %q", out.Answer, tt.wantAnswer)
			}
			if out.Sources == nil || len(out.Sources) != 0 {
				t.Errorf("sources: got %#v, want empty list", out.Sources)
			}
			if gen.calls != 0 {
				t.Errorf("generator called %d times", gen.calls)
			}
		})
	}
}

func TestHandleAnswer_Degraded(t *testing.T) {
	svc := rag.Unavailable(errors.New("index not found"))
	h := newTestServer(WithAnswerer(svc)).AnswerRouter()

	// The degraded check runs before the body is looked at.
	w := do(t, h, http.MethodPost, "/api/healthcare/answer", "text/plain", "anything")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", w.Code)
	}
	if out := decodeAnswer(t, w); out.Answer != rag.MsgUnavailable {
		t.Errorf("answer: got %q", out.Answer)
	}

	w = do(t, h, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "index not found") {
		t.Errorf("health body: %s", w.Body.String())
	}
}

func TestHandleAnswer_GeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	h := newTestServer(WithAnswerer(diabetesService(gen))).AnswerRouter()

	w := do(t, h, http.MethodPost, "/api/healthcare/answer", "application/json", `{"question":"What is diabetes?"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", w.Code)
	}
	out := decodeAnswer(t, w)
	if !strings.HasPrefix(out.Answer, "❌ Error: ") || !strings.Contains(out.Answer, "rate limited") {
		t.Errorf("answer: got %q", out.Answer)
	}
	if len(out.Sources) != 0 {
		t.Errorf("sources: got %v", out.Sources)
	}
}

func TestHandleAsk(t *testing.T) {
	gen := &stubGenerator{text: "Diabetes is a chronic condition."}
	h := newTestServer(WithAnswerer(diabetesService(gen))).AnswerRouter()

	w := do(t, h, http.MethodPost, "/ask", "application/json", `{"message":"What is diabetes?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if out := decodeAnswer(t, w); !strings.HasSuffix(out.Answer, rag.Disclaimer) {
		t.Errorf("answer: got %q", out.Answer)
	}

	w = do(t, h, http.MethodPost, "/ask", "application/json", `{"question":"What is diabetes?"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", w.Code)
	}
	if out := decodeAnswer(t, w); out.Answer != msgMessageRequired {
		t.Errorf("answer: got %q", out.Answer)
	}
}

func TestAnswerRouter_HealthAndMetrics(t *testing.T) {
	h := newTestServer(WithAnswerer(diabetesService(&stubGenerator{}))).AnswerRouter()
	for _, path := range []string{"/", "/test"} {
		w := do(t, h, http.MethodGet, path, "", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"healthy"`) {
			t.Errorf("%s: got %d %s", path, w.Code, w.Body.String())
		}
	}
	w := do(t, h, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("health: got %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "predictimed_http_requests_total") {
		t.Errorf("metrics: got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestHandleSimplify(t *testing.T) {
	ann := &stubAnnotator{res: &simplify.Result{
		Text: "High fever (a rise in body temperature)",
		Explanations: []models.Explanation{
			{Term: "fever", Explanation: "a rise in body temperature"},
		},
	}}
	h := newTestServer(WithAnnotator(ann)).SimplifyRouter()

	for _, path := range []string{"/api/medical/simplify", "/simplify"} {
		w := do(t, h, http.MethodPost, path, "application/json", `{"text":"High fever"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status: got %d", path, w.Code)
		}
		var out simplifyResponse
		if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		if out.Answer != ann.res.Text || out.SimplifiedText != ann.res.Text {
			t.Errorf("%s text: got %+v", path, out)
		}
		if len(out.Explanations) != 1 || out.Explanations[0].Term != "fever" {
			t.Errorf("%s explanations: got %+v", path, out.Explanations)
		}
	}
}

func TestHandleSimplify_Errors(t *testing.T) {
	tests := []struct {
		name       string
		ann        *stubAnnotator
		body       string
		wantStatus int
		wantBody   string
	}{
		{"blank text", &stubAnnotator{}, `{"text":"   "}`, http.StatusBadRequest, `{"error":"Please enter some text"}`},
		{"missing text", &stubAnnotator{}, `{}`, http.StatusBadRequest, `{"error":"Please enter some text"}`},
		{"annotator failure", &stubAnnotator{err: errors.New("lexicon closed")}, `{"text":"fever"}`, http.StatusInternalServerError, `{"error":"lexicon closed"}`},
		{"bad json", &stubAnnotator{}, `{"text"`, http.StatusBadRequest, `{"error":"Request must be JSON"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(WithAnnotator(tt.ann)).SimplifyRouter()
			w := do(t, h, http.MethodPost, "/api/medical/simplify", "application/json", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("body: got %s, want %s", got, tt.wantBody)
			}
		})
	}
}

func TestHandleSimplify_NoTermsReturnsEmptyList(t *testing.T) {
	ann := &stubAnnotator{res: &simplify.Result{Text: "nothing here"}}
	h := newTestServer(WithAnnotator(ann)).SimplifyRouter()
	w := do(t, h, http.MethodPost, "/api/medical/simplify", "application/json", `{"text":"nothing here"}`)
	if !strings.Contains(w.Body.String(), `"explanations":[]`) {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestSimplifyRouter_Preflight(t *testing.T) {
	h := newTestServer(WithAnnotator(&stubAnnotator{})).SimplifyRouter()

	// Bare OPTIONS.
	w := do(t, h, http.MethodOptions, "/api/medical/simplify", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin: got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST" {
		t.Errorf("allow methods: got %q", got)
	}
	if strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("body: %s", w.Body.String())
	}

	// Browser preflight.
	r := httptest.NewRequest(http.MethodOptions, "/api/medical/simplify", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", "POST")
	r.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("preflight status: got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("preflight allow origin: got %q", got)
	}

	// Simple CORS request.
	r = httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("get allow origin: got %q", got)
	}
	if !strings.Contains(w.Body.String(), "medical_text_simplifier") {
		t.Errorf("test body: %s", w.Body.String())
	}
}

type panicAnnotator struct{}

func (panicAnnotator) Annotate(context.Context, string) (*simplify.Result, error) {
	panic("boom")
}

func TestJSONRecoverer(t *testing.T) {
	h := newTestServer(WithAnnotator(panicAnnotator{})).SimplifyRouter()
	w := do(t, h, http.MethodPost, "/simplify", "application/json", `{"text":"fever"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"error":"internal error"}` {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer(&config.ServerConfig{Host: "127.0.0.1", AnswerPort: freePort(t), SimplifyPort: freePort(t)},
		zap.NewNop(),
		WithAnswerer(diabetesService(&stubGenerator{text: "ok"})),
		WithAnnotator(&stubAnnotator{}),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		var err error
		if addrs := srv.addrs(); len(addrs) == 2 {
			var resp *http.Response
			if resp, err = http.Get("http://" + addrs[1] + "/test"); err == nil {
				resp.Body.Close()
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("start returned %v", err)
	}
}

func TestServer_StopBeforeStart(t *testing.T) {
	port := freePort(t)
	srv := NewServer(&config.ServerConfig{Host: "127.0.0.1", AnswerPort: port},
		zap.NewNop(),
		WithAnswerer(diabetesService(&stubGenerator{text: "ok"})),
	)
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start after stop returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("start after stop did not return")
	}

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		t.Fatalf("port still bound after stopped start: %v", err)
	}
	l.Close()
}

func TestServer_StartWithoutServices(t *testing.T) {
	if err := newTestServer().Start(); err == nil {
		t.Fatal("expected error")
	}
}

func (s *Server) addrs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.servers))
	for i, srv := range s.servers {
		out[i] = srv.Addr
	}
	return out
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
