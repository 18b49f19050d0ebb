package vectorize

import (
	"math"

	"truthai/internal/fault"
)

// TfidfVectorizer weights term counts by smoothed inverse document frequency,
// idf = ln((1+n)/(1+df)) + 1, and L2 normalizes the result.
type TfidfVectorizer struct {
	*CountVectorizer

	idf []float64
}

// NewTfidfVectorizer returns a TfidfVectorizer with the CountVectorizer defaults.
func NewTfidfVectorizer() *TfidfVectorizer {
	return &TfidfVectorizer{CountVectorizer: NewCountVectorizer()}
}

// Kind returns TFIDF.
func (tv *TfidfVectorizer) Kind() Kind {
	return TFIDF
}

// Fit learns the vocabulary and the idf weights.
func (tv *TfidfVectorizer) Fit(docs []string) error {
	df, err := tv.CountVectorizer.fit(docs)
	if err != nil {
		return err
	}
	n := float64(len(docs))
	tv.idf = make([]float64, len(df))
	for i, d := range df {
		tv.idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}
	return nil
}

// Transform converts text to an L2 normalized tf-idf vector.
func (tv *TfidfVectorizer) Transform(text string) (Vector, error) {
	if tv.idf == nil {
		return Vector{}, fault.ErrNotFitted
	}
	weights := tv.counts(text)
	for idx := range weights {
		weights[idx] *= tv.idf[idx]
	}
	v := newVector(tv.Dim(), weights)
	if norm := v.Norm(); norm > 0 {
		for i := range v.Values {
			v.Values[i] /= norm
		}
	}
	return v, nil
}

// IDF returns the fitted idf weight of each vocabulary term.
func (tv *TfidfVectorizer) IDF() []float64 {
	return append([]float64(nil), tv.idf...)
}
