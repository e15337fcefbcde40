// Package simplify finds medical terms in free text and annotates each one
// inline with a plain-language explanation.
package simplify

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/predictimed/internal/lexicon"
	"github.com/hyperjump/predictimed/internal/logger"
	"github.com/hyperjump/predictimed/internal/metrics"
	"github.com/hyperjump/predictimed/internal/models"
)

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("text is empty")

// MedicalCategories are the WordNet lexicographer files whose senses make a
// term medical.
var MedicalCategories = []string{
	"noun.medicine", "noun.body", "noun.phenomenon",
	"noun.process", "noun.state", "noun.artifact",
}

// SenseLookup returns the dictionary senses of a term.
type SenseLookup interface {
	Senses(ctx context.Context, term string) ([]lexicon.Sense, error)
}

// Classifier picks an explanation type for a term in context.
type Classifier interface {
	Classify(ctx context.Context, term, text string) (string, error)
}

// Result is an annotated text.
type Result struct {
	Text         string
	Explanations []models.Explanation
}

// Simplifier annotates medical terms. It holds no per-call state.
type Simplifier struct {
	tagger     Tagger
	senses     SenseLookup
	classifier Classifier
	logger     *zap.Logger
}

// Option configures a Simplifier.
type Option func(*Simplifier)

// WithClassifier enables context-aware explanation types. Without one every
// explanation is the dictionary definition.
func WithClassifier(c Classifier) Option {
	return func(s *Simplifier) { s.classifier = c }
}

// WithLogger sets the fallback logger used when the request context has none.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simplifier) { s.logger = l }
}

// New creates a Simplifier.
func New(tagger Tagger, senses SenseLookup, opts ...Option) *Simplifier {
	s := &Simplifier{tagger: tagger, senses: senses, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Annotate rewrites text so every occurrence of each medical term reads
// "term (explanation)". Explanations are listed once per distinct term in the
// order the terms first appear.
func (s *Simplifier) Annotate(ctx context.Context, text string) (res *Result, err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.AnnotationsTotal.WithLabelValues(status).Inc()
	}()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	log := logger.FromContext(ctx, s.logger)

	terms, err := s.MedicalTerms(ctx, text)
	if err != nil {
		return nil, err
	}

	var explanations []models.Explanation
	seen := make(map[string]struct{}, len(terms))
	for _, c := range terms {
		if _, dup := seen[c.Term]; dup {
			continue
		}
		seen[c.Term] = struct{}{}
		explanations = append(explanations, models.Explanation{
			Term:        c.Term,
			Explanation: s.explain(ctx, log, c.Term, text),
		})
	}
	metrics.AnnotatedTermsTotal.Add(float64(len(explanations)))
	log.Debug("annotated text", zap.Int("candidates", len(terms)), zap.Int("terms", len(explanations)))

	return &Result{Text: rewrite(text, explanations), Explanations: explanations}, nil
}

// MedicalTerms returns the candidate runs of text that the dictionary places
// in a medical category.
func (s *Simplifier) MedicalTerms(ctx context.Context, text string) ([]models.Candidate, error) {
	tokens, err := s.tagger.Tag(text)
	if err != nil {
		return nil, err
	}
	var out []models.Candidate
	for _, c := range Segment(tokens) {
		senses, err := s.senses.Senses(ctx, strings.ToLower(c.Term))
		if err != nil {
			return nil, fmt.Errorf("look up %q: %w", c.Term, err)
		}
		if isMedical(senses) {
			out = append(out, c)
		}
	}
	return out, nil
}

func isMedical(senses []lexicon.Sense) bool {
	for _, sense := range senses {
		for _, cat := range MedicalCategories {
			if strings.Contains(sense.Lexname, cat) {
				return true
			}
		}
	}
	return false
}

// explain never fails: classifier errors fall back to the first definition,
// and a missing definition falls back to a generic phrase.
func (s *Simplifier) explain(ctx context.Context, log *zap.Logger, term, text string) string {
	var definition string
	senses, err := s.senses.Senses(ctx, term)
	if err != nil {
		log.Warn("sense lookup failed", zap.String("term", term), zap.Error(err))
	} else if len(senses) > 0 {
		definition = senses[0].Definition
	}

	if s.classifier != nil {
		kind, err := s.classifier.Classify(ctx, term, text)
		if err == nil && kind != "" {
			if definition != "" {
				return kind + " that " + definition
			}
			return kind
		}
		if err != nil {
			log.Warn("context classification failed", zap.String("term", term), zap.Error(err))
		}
	}
	if definition != "" {
		return definition
	}
	return "a medical term related to " + term
}

// rewrite substitutes every whole-word, case-sensitive occurrence of each
// term in one pass over text, so explanations are never re-annotated.
// Longer terms win where terms overlap. Word characters are Unicode letters,
// numbers and underscore.
func rewrite(text string, explanations []models.Explanation) string {
	if len(explanations) == 0 {
		return text
	}
	byTerm := make(map[string]string, len(explanations))
	terms := make([]string, 0, len(explanations))
	for _, e := range explanations {
		if e.Term == "" {
			continue
		}
		if _, dup := byTerm[e.Term]; !dup {
			terms = append(terms, e.Term)
		}
		byTerm[e.Term] = e.Term + " (" + e.Explanation + ")"
	}
	if len(terms) == 0 {
		return text
	}
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	re := regexp.MustCompile(strings.Join(quoted, "|"))

	var b strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		end := -1
		if wordBoundary(text, start) {
			for _, t := range terms {
				if strings.HasPrefix(text[start:], t) && wordBoundary(text, start+len(t)) {
					end = start + len(t)
					break
				}
			}
		}
		if end < 0 {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(byTerm[text[start:end]])
		last, pos = end, end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// wordBoundary reports whether exactly one side of byte offset i in s is a
// word character.
func wordBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
