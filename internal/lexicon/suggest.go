package lexicon

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Suggestion is a lemma close to an unknown term.
type Suggestion struct {
	Lemma    string
	Distance int
	Senses   int
	Score    float64
}

// Suggester proposes known lemmas for misspelled terms.
type Suggester struct {
	lemmas         map[string]int
	maxDistance    int
	maxSuggestions int
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions returned.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSuggester creates a suggester over lemma sense counts, as returned by
// BleveLexicon.LemmaCounts.
func NewSuggester(lemmas map[string]int, opts ...SuggesterOption) *Suggester {
	s := &Suggester{lemmas: lemmas, maxDistance: 2, maxSuggestions: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns lemmas within the edit distance of term, closest and most
// polysemous first. A known term yields no suggestions.
func (s *Suggester) Suggest(term string) []Suggestion {
	word := normalize(term)
	if _, known := s.lemmas[word]; known || word == "" {
		return nil
	}
	n := utf8.RuneCountInString(word)

	var out []Suggestion
	for lemma, senses := range s.lemmas {
		diff := utf8.RuneCountInString(lemma) - n
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		d := damerauLevenshtein(word, lemma)
		if d > s.maxDistance {
			continue
		}
		out = append(out, Suggestion{
			Lemma:    lemma,
			Distance: d,
			Senses:   senses,
			Score:    float64(senses) / float64(d+1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Lemma < out[j].Lemma
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	for i := range out {
		out[i].Lemma = strings.ReplaceAll(out[i].Lemma, "_", " ")
	}
	return out
}

// damerauLevenshtein is the optimal string alignment distance: insertions,
// deletions, substitutions and adjacent transpositions each cost one.
func damerauLevenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}
	return d[len(ra)][len(rb)]
}
