// Package classify provides the two binary classifiers used by the pipeline:
// a linear large-margin classifier and a multinomial naive Bayes classifier.
package classify

import (
	"strings"

	"github.com/pkg/errors"

	"truthai/internal/fault"
	"truthai/internal/vectorize"
)

// Kind selects a classifier variant.
type Kind string

const (
	// LinearSVM is an L2-regularized hinge loss linear classifier.
	LinearSVM Kind = "linear-svm"
	// NaiveBayes is a multinomial naive Bayes classifier.
	NaiveBayes Kind = "naive-bayes"
)

// Kinds lists the supported classifiers in display order.
var Kinds = []Kind{LinearSVM, NaiveBayes}

var kindAliases = map[string]Kind{
	"linear-svm":    LinearSVM,
	"linear svm":    LinearSVM,
	"linearsvc":     LinearSVM,
	"svm":           LinearSVM,
	"naive-bayes":   NaiveBayes,
	"naive bayes":   NaiveBayes,
	"multinomialnb": NaiveBayes,
	"nb":            NaiveBayes,
}

// ParseKind maps a user selection to a Kind. Unknown names yield a
// *fault.ConfigError.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return "", fault.NewConfigError("classifier", name)
}

// Valid reports whether k names a supported classifier.
func (k Kind) Valid() bool {
	return k == LinearSVM || k == NaiveBayes
}

// Classifier is a binary classifier over sparse feature vectors. Labels are
// 0 (real) and 1 (fake).
type Classifier interface {
	Fit(features []vectorize.Vector, labels []int) error
	Predict(v vectorize.Vector) (int, error)
	// Confidence returns the model's confidence in [0,1] for the label
	// Predict returns for v.
	Confidence(v vectorize.Vector) (float64, error)
	Kind() Kind
}

// New returns an unfit classifier of the given kind with default settings.
func New(kind Kind) (Classifier, error) {
	switch kind {
	case LinearSVM:
		return NewSVM(), nil
	case NaiveBayes:
		return NewBayes(), nil
	default:
		return nil, fault.NewConfigError("classifier", string(kind))
	}
}

// checkTrainingSet validates a training set and returns its dimension.
func checkTrainingSet(features []vectorize.Vector, labels []int) (int, error) {
	if len(features) == 0 {
		return 0, errors.New("no training samples")
	}
	if len(features) != len(labels) {
		return 0, errors.Errorf("features and labels not the same lengths %d %d", len(features), len(labels))
	}
	dim := features[0].Dim
	var seen [2]bool
	for i, f := range features {
		if f.Dim != dim {
			return 0, errors.Errorf("sample %d has dimension %d, expected %d", i, f.Dim, dim)
		}
		if labels[i] != 0 && labels[i] != 1 {
			return 0, errors.Errorf("sample %d has label %d, expected 0 or 1", i, labels[i])
		}
		seen[labels[i]] = true
	}
	if !seen[0] || !seen[1] {
		return 0, errors.New("training set must contain both classes")
	}
	return dim, nil
}

func checkInput(v vectorize.Vector, dim int, fitted bool) error {
	if !fitted {
		return fault.ErrNotFitted
	}
	if v.Dim != dim {
		return errors.Errorf("vector has dimension %d, model expects %d", v.Dim, dim)
	}
	return nil
}
