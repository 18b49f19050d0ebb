package pipeline

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"truthai/internal/corpus"
)

// Metrics summarizes a pipeline's performance on held-out documents, with
// fake as the positive class.
type Metrics struct {
	Key       Key
	Total     int
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	// Confusion is indexed [actual][predicted].
	Confusion      [2][2]int
	MeanConfidence float64
}

// Evaluate fits a fresh, uncached pipeline for key on train and scores every
// document of holdout.
func Evaluate(key Key, train, holdout *corpus.Corpus, opts Options) (*Metrics, error) {
	if holdout.Len() == 0 {
		return nil, errors.New("no held-out documents")
	}
	f, err := Fit(key, train, opts)
	if err != nil {
		return nil, err
	}

	m := &Metrics{Key: key, Total: holdout.Len()}
	confidences := make([]float64, 0, holdout.Len())
	for i, doc := range holdout.Documents {
		p, err := Predict(f, doc.Text)
		if err != nil {
			return nil, errors.Wrapf(err, "scoring held-out document %d", i)
		}
		m.Confusion[doc.Label][p.Label]++
		confidences = append(confidences, p.Confidence)
	}

	tp := float64(m.Confusion[corpus.Fake][corpus.Fake])
	fp := float64(m.Confusion[corpus.Real][corpus.Fake])
	fn := float64(m.Confusion[corpus.Fake][corpus.Real])
	tn := float64(m.Confusion[corpus.Real][corpus.Real])

	m.Accuracy = (tp + tn) / float64(m.Total)
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if m.MeanConfidence, err = stats.Mean(confidences); err != nil {
		return nil, err
	}
	return m, nil
}
