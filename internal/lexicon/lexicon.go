// Package lexicon stores WordNet word senses in a bleve index and looks them
// up the way WordNet does, with exception lists and morphological base-form
// detection.
package lexicon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ErrNotFound is returned when a lexicon directory does not exist.
var ErrNotFound = errors.New("lexicon not found")

// Parts of speech, in WordNet lookup order.
const (
	Noun      = "n"
	Verb      = "v"
	Adjective = "a"
	Adverb    = "r"
)

var lookupOrder = []string{Noun, Verb, Adjective, Adverb}

// maxSensesPerForm bounds a single lemma lookup; the most polysemous WordNet
// lemma has well under this many senses.
const maxSensesPerForm = 200

// Sense is one meaning of a lemma.
type Sense struct {
	Lemma      string `json:"lemma"`
	POS        string `json:"pos"`
	Rank       int    `json:"rank"`
	Offset     string `json:"offset"`
	Lexname    string `json:"lexname"`
	Definition string `json:"definition"`
}

func (s *Sense) docID() string {
	return s.POS + ":" + s.Lemma + ":" + s.Offset
}

// BleveLexicon is a sense dictionary backed by a bleve index.
type BleveLexicon struct {
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	keyword := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt("lemma", keyword)
	doc.AddFieldMappingsAt("pos", keyword)
	doc.AddFieldMappingsAt("offset", keyword)
	doc.AddFieldMappingsAt("lexname", keyword)
	doc.AddFieldMappingsAt("rank", bleve.NewNumericFieldMapping())
	definition := bleve.NewTextFieldMapping()
	definition.Analyzer = standard.Name
	doc.AddFieldMappingsAt("definition", definition)

	im.AddDocumentMapping("sense", doc)
	im.DefaultType = "sense"
	im.DefaultMapping = doc
	return im
}

// Create creates an empty lexicon at path. path must not exist.
func Create(path string) (*BleveLexicon, error) {
	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create lexicon index: %w", err)
	}
	return &BleveLexicon{index: index}, nil
}

// Open opens an existing lexicon.
func Open(path string) (*BleveLexicon, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon index: %w", err)
	}
	return &BleveLexicon{index: index}, nil
}

// AddSenses indexes senses in one batch.
func (l *BleveLexicon) AddSenses(ctx context.Context, senses []Sense) error {
	batch := l.index.NewBatch()
	for i := range senses {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(senses[i].docID(), senses[i]); err != nil {
			return fmt.Errorf("index sense %s: %w", senses[i].docID(), err)
		}
	}
	return l.index.Batch(batch)
}

// Senses returns the senses of term across all parts of speech, nouns first,
// each part of speech in sense-rank order. Inflected forms resolve to their
// base forms. Unknown terms return no senses and no error.
func (l *BleveLexicon) Senses(ctx context.Context, term string) ([]Sense, error) {
	word := normalize(term)
	if word == "" {
		return nil, nil
	}
	var out []Sense
	seen := make(map[string]struct{})
	for _, pos := range lookupOrder {
		exc, err := l.exceptions(word, pos)
		if err != nil {
			return nil, err
		}
		for _, form := range candidateForms(word, pos, exc) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			senses, err := l.lookup(form, pos)
			if err != nil {
				return nil, err
			}
			for _, s := range senses {
				key := s.POS + s.Offset
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, s)
			}
		}
	}
	return out, nil
}

// AddExceptions stores irregular inflections for pos, mapping an inflected
// form to its base forms. They live in the index's internal key space, so they
// are not counted as senses.
func (l *BleveLexicon) AddExceptions(ctx context.Context, pos string, exceptions map[string][]string) error {
	batch := l.index.NewBatch()
	for form, bases := range exceptions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(bases) == 0 {
			continue
		}
		batch.SetInternal(exceptionKey(form, pos), []byte(strings.Join(bases, " ")))
	}
	return l.index.Batch(batch)
}

func (l *BleveLexicon) exceptions(word, pos string) ([]string, error) {
	val, err := l.index.GetInternal(exceptionKey(word, pos))
	if err != nil {
		return nil, fmt.Errorf("lexicon exception lookup failed: %w", err)
	}
	return strings.Fields(string(val)), nil
}

func exceptionKey(form, pos string) []byte {
	return []byte("exc:" + pos + ":" + form)
}

func (l *BleveLexicon) lookup(lemma, pos string) ([]Sense, error) {
	lq := bleve.NewTermQuery(lemma)
	lq.SetField("lemma")
	pq := bleve.NewTermQuery(pos)
	pq.SetField("pos")
	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(lq, pq), maxSensesPerForm, 0, false)
	req.Fields = []string{"lemma", "pos", "rank", "offset", "lexname", "definition"}
	req.SortBy([]string{"rank"})

	res, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexicon search failed: %w", err)
	}
	senses := make([]Sense, 0, len(res.Hits))
	for _, hit := range res.Hits {
		senses = append(senses, Sense{
			Lemma:      stringField(hit.Fields, "lemma"),
			POS:        stringField(hit.Fields, "pos"),
			Rank:       int(numberField(hit.Fields, "rank")),
			Offset:     stringField(hit.Fields, "offset"),
			Lexname:    stringField(hit.Fields, "lexname"),
			Definition: stringField(hit.Fields, "definition"),
		})
	}
	return senses, nil
}

// LemmaCounts returns every lemma with its number of senses.
func (l *BleveLexicon) LemmaCounts() (map[string]int, error) {
	dict, err := l.index.FieldDict("lemma")
	if err != nil {
		return nil, fmt.Errorf("read lemma dictionary: %w", err)
	}
	defer dict.Close()
	counts := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("read lemma dictionary: %w", err)
		}
		if entry == nil {
			break
		}
		counts[entry.Term] = int(entry.Count)
	}
	return counts, nil
}

// Count returns the number of stored senses.
func (l *BleveLexicon) Count() (uint64, error) {
	return l.index.DocCount()
}

// Close closes the underlying index.
func (l *BleveLexicon) Close() error {
	return l.index.Close()
}

// normalize lowercases term and joins its words with underscores, the way
// WordNet spells collocations.
func normalize(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), "_")
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}

func numberField(fields map[string]interface{}, name string) float64 {
	f, _ := fields[name].(float64)
	return f
}
