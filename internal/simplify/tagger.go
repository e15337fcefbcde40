package simplify

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Class is the coarse part of speech the segmenter works on.
type Class int

const (
	ClassOther Class = iota
	ClassNoun
	ClassAdjective
)

// Token is one tagged word.
type Token struct {
	Text  string
	Tag   string
	Class Class
}

// Tagger splits text into part-of-speech tagged tokens.
type Tagger interface {
	Tag(text string) ([]Token, error)
}

// ClassOf maps a Penn Treebank tag to its coarse class.
func ClassOf(tag string) Class {
	switch {
	case strings.HasPrefix(tag, "NN"):
		return ClassNoun
	case strings.HasPrefix(tag, "JJ"):
		return ClassAdjective
	default:
		return ClassOther
	}
}

// ProseTagger tags with prose's averaged perceptron model.
type ProseTagger struct{}

var _ Tagger = ProseTagger{}

// Tag tokenizes and tags text.
func (ProseTagger) Tag(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tag text: %w", err)
	}
	ptoks := doc.Tokens()
	tokens := make([]Token, len(ptoks))
	for i, t := range ptoks {
		tokens[i] = Token{Text: t.Text, Tag: t.Tag, Class: ClassOf(t.Tag)}
	}
	return tokens, nil
}
