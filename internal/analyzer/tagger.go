package analyzer

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/rotisserie/eris"
)

// TaggedWord is a single token with its Penn Treebank part-of-speech tag.
type TaggedWord struct {
	Text string
	Tag  string
}

// Tagger provides part-of-speech tagging. The analyzer only cares about
// noun/adjective classification, so any tagger emitting Penn Treebank tags
// can be substituted.
type Tagger interface {
	Tag(text string) ([]TaggedWord, error)
}

// IsNounTag reports whether a Penn Treebank tag denotes a noun.
func IsNounTag(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

// IsAdjectiveTag reports whether a Penn Treebank tag denotes an adjective.
func IsAdjectiveTag(tag string) bool {
	return strings.HasPrefix(tag, "JJ")
}

// ProseTagger tags text with the prose NLP library.
type ProseTagger struct{}

// NewProseTagger returns the production Tagger implementation.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Tag tokenizes and tags the text. Entity extraction and sentence
// segmentation are disabled; only the tagger model runs.
func (t *ProseTagger) Tag(text string) ([]TaggedWord, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, eris.Wrap(err, "analyzer: prose document")
	}

	tokens := doc.Tokens()
	words := make([]TaggedWord, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, TaggedWord{Text: tok.Text, Tag: tok.Tag})
	}
	return words, nil
}
