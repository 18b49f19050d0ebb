// Package vectorize turns free text into sparse numeric feature vectors over
// a vocabulary learned from a corpus.
package vectorize

import (
	"strings"

	"truthai/internal/fault"
)

// Kind selects a vectorizer variant.
type Kind string

const (
	// Count weights each vocabulary term by its raw occurrence count.
	Count Kind = "count"
	// TFIDF weights counts by inverse document frequency and L2 normalizes.
	TFIDF Kind = "tfidf"
)

// Kinds lists the supported vectorizers in display order.
var Kinds = []Kind{TFIDF, Count}

var kindAliases = map[string]Kind{
	"count":        Count,
	"bag of words": Count,
	"bag-of-words": Count,
	"bow":          Count,
	"tfidf":        TFIDF,
	"tf-idf":       TFIDF,
}

// ParseKind maps a user selection to a Kind. Matching ignores case and
// surrounding space. Unknown names yield a *fault.ConfigError.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fault.NewConfigError("vectorizer", name)
}

// Valid reports whether k names a supported vectorizer.
func (k Kind) Valid() bool {
	return k == Count || k == TFIDF
}

// Vectorizer learns a vocabulary once and maps documents onto it.
type Vectorizer interface {
	// Fit learns the vocabulary from docs. It must be called exactly once.
	Fit(docs []string) error
	// Transform maps text onto the fitted vocabulary. Unknown tokens are dropped.
	Transform(text string) (Vector, error)
	// Dim is the vocabulary size, zero before Fit.
	Dim() int
	Kind() Kind
}

// New returns an unfit vectorizer of the given kind using the default
// English stop words and document frequency cut-offs.
func New(kind Kind) (Vectorizer, error) {
	switch kind {
	case Count:
		return NewCountVectorizer(), nil
	case TFIDF:
		return NewTfidfVectorizer(), nil
	default:
		return nil, fault.NewConfigError("vectorizer", string(kind))
	}
}
