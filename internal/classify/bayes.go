package classify

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"truthai/internal/vectorize"
)

const defaultAlpha = 1.0

// Bayes is a multinomial naive Bayes classifier with additive smoothing.
type Bayes struct {
	// Alpha is the additive (Laplace) smoothing parameter.
	Alpha float64

	dim       int
	logPrior  [2]float64
	logLikely [2][]float64
	fitted    bool
}

// NewBayes returns a Bayes classifier with Alpha 1.
func NewBayes() *Bayes {
	return &Bayes{Alpha: defaultAlpha}
}

// Kind returns NaiveBayes.
func (b *Bayes) Kind() Kind {
	return NaiveBayes
}

// Fit estimates class priors and per-class feature likelihoods. Features
// must be non-negative.
func (b *Bayes) Fit(features []vectorize.Vector, labels []int) error {
	dim, err := checkTrainingSet(features, labels)
	if err != nil {
		return err
	}
	alpha := b.Alpha
	if alpha <= 0 {
		alpha = defaultAlpha
	}

	var classCounts [2]float64
	featureCounts := [2][]float64{make([]float64, dim), make([]float64, dim)}
	for i, f := range features {
		for _, val := range f.Values {
			if val < 0 {
				return errors.Errorf("sample %d has negative feature value %v", i, val)
			}
		}
		classCounts[labels[i]]++
		f.AddTo(featureCounts[labels[i]], 1)
	}

	n := float64(len(features))
	for c := 0; c < 2; c++ {
		b.logPrior[c] = math.Log(classCounts[c] / n)
		denom := floats.Sum(featureCounts[c]) + alpha*float64(dim)
		ll := make([]float64, dim)
		for j, count := range featureCounts[c] {
			ll[j] = math.Log((count + alpha) / denom)
		}
		b.logLikely[c] = ll
	}
	b.dim = dim
	b.fitted = true
	return nil
}

func (b *Bayes) jointLogLikelihood(x vectorize.Vector) ([]float64, error) {
	if err := checkInput(x, b.dim, b.fitted); err != nil {
		return nil, err
	}
	return []float64{
		b.logPrior[0] + x.Dot(b.logLikely[0]),
		b.logPrior[1] + x.Dot(b.logLikely[1]),
	}, nil
}

// Predict returns the class with the larger posterior; ties go to 0 (real).
func (b *Bayes) Predict(x vectorize.Vector) (int, error) {
	jll, err := b.jointLogLikelihood(x)
	if err != nil {
		return 0, err
	}
	if jll[1] > jll[0] {
		return 1, nil
	}
	return 0, nil
}

// Confidence returns the posterior probability of the predicted class.
func (b *Bayes) Confidence(x vectorize.Vector) (float64, error) {
	jll, err := b.jointLogLikelihood(x)
	if err != nil {
		return 0, err
	}
	norm := floats.LogSumExp(jll)
	return math.Exp(floats.Max(jll) - norm), nil
}
