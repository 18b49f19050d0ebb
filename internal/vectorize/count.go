package vectorize

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"truthai/internal/fault"
)

const (
	defaultMaxDF = 0.7
	defaultMinDF = 1
)

// CountVectorizer converts text to token count vectors.
type CountVectorizer struct {
	// MaxDF drops terms present in more than this fraction of documents.
	MaxDF float64
	// MinDF drops terms present in fewer than this many documents.
	MinDF     int
	StopWords map[string]struct{}

	vocabulary map[string]int
	terms      []string
}

// NewCountVectorizer returns a CountVectorizer with English stop words,
// MaxDF 0.7 and MinDF 1.
func NewCountVectorizer() *CountVectorizer {
	return &CountVectorizer{
		MaxDF:     defaultMaxDF,
		MinDF:     defaultMinDF,
		StopWords: EnglishStopWords(),
	}
}

// Kind returns Count.
func (cv *CountVectorizer) Kind() Kind {
	return Count
}

func (cv *CountVectorizer) analyze(text string) []string {
	tokens := Tokenize(text)
	if len(cv.StopWords) == 0 {
		return tokens
	}
	return lo.Filter(tokens, func(tok string, _ int) bool {
		_, stop := cv.StopWords[tok]
		return !stop
	})
}

// Fit builds the vocabulary from docs.
func (cv *CountVectorizer) Fit(docs []string) error {
	_, err := cv.fit(docs)
	return err
}

// fit builds the vocabulary and returns the document frequency of each kept term.
func (cv *CountVectorizer) fit(docs []string) ([]int, error) {
	if cv.vocabulary != nil {
		return nil, errors.New("vectorizer is already fitted")
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents to fit")
	}

	dfCounts := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range cv.analyze(doc) {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				dfCounts[tok]++
			}
		}
	}

	maxDocs := float64(len(docs))
	if cv.MaxDF > 0 && cv.MaxDF < 1 {
		maxDocs = cv.MaxDF * float64(len(docs))
	}
	terms := make([]string, 0, len(dfCounts))
	for term, df := range dfCounts {
		if df >= cv.MinDF && float64(df) <= maxDocs {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, errors.New("empty vocabulary; every term was pruned or documents hold only stop words")
	}
	sort.Strings(terms)

	cv.terms = terms
	cv.vocabulary = make(map[string]int, len(terms))
	df := make([]int, len(terms))
	for i, term := range terms {
		cv.vocabulary[term] = i
		df[i] = dfCounts[term]
	}
	return df, nil
}

// Transform converts text to a vector of raw term counts.
func (cv *CountVectorizer) Transform(text string) (Vector, error) {
	if cv.vocabulary == nil {
		return Vector{}, fault.ErrNotFitted
	}
	return newVector(len(cv.terms), cv.counts(text)), nil
}

func (cv *CountVectorizer) counts(text string) map[int]float64 {
	counts := make(map[int]float64)
	for _, tok := range cv.analyze(text) {
		if idx, ok := cv.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	return counts
}

// Dim returns the vocabulary size.
func (cv *CountVectorizer) Dim() int {
	return len(cv.terms)
}

// Terms returns the fitted vocabulary in index order.
func (cv *CountVectorizer) Terms() []string {
	return append([]string(nil), cv.terms...)
}
