package pipeline

import (
	"strings"

	"github.com/pkg/errors"

	"truthai/internal/corpus"
	"truthai/internal/fault"
)

// Prediction is the outcome of scoring one document.
type Prediction struct {
	Label      corpus.Label
	Confidence float64
}

// Category returns "Real" or "Fake".
func (p Prediction) Category() string {
	return p.Label.String()
}

// Predict scores text with f. Empty or whitespace-only text fails with
// fault.ErrEmptyInput. f is not modified.
func Predict(f *Fitted, text string) (Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return Prediction{}, fault.ErrEmptyInput
	}
	if f == nil {
		return Prediction{}, errors.New("no fitted pipeline")
	}
	v, err := f.Vectorizer.Transform(text)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "vectorizing document")
	}
	label, err := f.Classifier.Predict(v)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "classifying document")
	}
	conf, err := f.Classifier.Confidence(v)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "scoring document")
	}
	return Prediction{Label: corpus.Label(label), Confidence: conf}, nil
}
