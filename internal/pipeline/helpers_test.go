package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"

	"truthai/internal/classify"
	"truthai/internal/corpus"
	"truthai/internal/vectorize"
)

const (
	heldOutFake = "breaking-exclusive-unverified report says a secret plot was exposed"
	heldOutReal = "The central bank published quarterly results on Tuesday."
)

// separableCorpus returns perClass fake documents carrying the marker token
// and perClass neutral factual sentences.
func separableCorpus(perClass int) *corpus.Corpus {
	subjects := []string{"The city council", "The state university", "Local farmers", "The central bank", "Regional hospitals"}
	verbs := []string{"approved", "published", "reported", "announced", "reviewed"}
	objects := []string{"the annual budget", "new rainfall figures", "quarterly results", "a road maintenance plan", "updated enrollment data"}
	tails := []string{
		"celebrities hide secret cure",
		"insiders reveal shocking plot",
		"anonymous posts expose cover up",
		"viral video proves hoax",
		"leaked memo stuns everyone",
	}

	c := &corpus.Corpus{}
	for i := 0; i < perClass; i++ {
		c.Documents = append(c.Documents,
			corpus.Document{
				Text:  fmt.Sprintf("breaking-exclusive-unverified: %s, share now", tails[i%len(tails)]),
				Label: corpus.Fake,
			},
			corpus.Document{
				Text:  fmt.Sprintf("%s %s %s on Tuesday.", subjects[i%len(subjects)], verbs[(i/2)%len(verbs)], objects[(i+2)%len(objects)]),
				Label: corpus.Real,
			},
		)
	}
	return c
}

// countingOptions wraps the default classifier factory so every Fit call is
// counted. The first failFits calls fail.
func countingOptions(fits *int32, failFits int32) Options {
	return Options{
		NewClassifier: func(k classify.Kind) (classify.Classifier, error) {
			c, err := classify.New(k)
			if err != nil {
				return nil, err
			}
			return &countingClassifier{Classifier: c, fits: fits, failFits: failFits}, nil
		},
	}
}

type countingClassifier struct {
	classify.Classifier
	fits     *int32
	failFits int32
}

func (c *countingClassifier) Fit(features []vectorize.Vector, labels []int) error {
	if n := atomic.AddInt32(c.fits, 1); n <= c.failFits {
		return errors.New("injected fit failure")
	}
	return c.Classifier.Fit(features, labels)
}
