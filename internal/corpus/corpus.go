// Package corpus loads the labeled news corpus used to train the classifiers.
package corpus

import (
	"math/rand"

	"github.com/samber/lo"
)

// Label is the binary class of a document.
type Label int

const (
	// Real marks an authentic news document.
	Real Label = 0
	// Fake marks a fabricated news document.
	Fake Label = 1
)

// String returns the human readable category, "Real" or "Fake".
func (l Label) String() string {
	if l == Fake {
		return "Fake"
	}
	return "Real"
}

// Valid reports whether l is one of the two known classes.
func (l Label) Valid() bool {
	return l == Real || l == Fake
}

// Document is one labeled piece of text.
type Document struct {
	Text  string
	Label Label
}

// Corpus is an ordered collection of labeled documents.
type Corpus struct {
	Documents []Document
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Documents)
}

// Texts returns the document texts in corpus order.
func (c *Corpus) Texts() []string {
	return lo.Map(c.Documents, func(d Document, _ int) string { return d.Text })
}

// Labels returns the document labels as ints in corpus order.
func (c *Corpus) Labels() []int {
	return lo.Map(c.Documents, func(d Document, _ int) int { return int(d.Label) })
}

// Counts returns the number of real and fake documents.
func (c *Corpus) Counts() (real, fake int) {
	for _, d := range c.Documents {
		if d.Label == Fake {
			fake++
		} else {
			real++
		}
	}
	return real, fake
}

// Split shuffles a copy of c with the given seed and splits it so that the
// first part holds ratio of the documents. c itself is untouched.
func Split(c *Corpus, ratio float64, seed int64) (train, test *Corpus) {
	docs := make([]Document, len(c.Documents))
	copy(docs, c.Documents)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(docs), func(i, j int) { docs[i], docs[j] = docs[j], docs[i] })

	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	cut := int(float64(len(docs)) * ratio)
	return &Corpus{Documents: docs[:cut]}, &Corpus{Documents: docs[cut:]}
}
