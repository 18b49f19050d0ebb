package classify

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"truthai/internal/vectorize"
)

const (
	defaultSVMEpochs = 20
	defaultSVMSeed   = 42

	// minScale is the weight scale below which the weights are renormalized.
	minScale = 1e-9
)

// SVM is a linear classifier trained with the Pegasos stochastic
// sub-gradient method on the L2-regularized hinge loss. The bias is learned
// as the weight of a constant feature.
type SVM struct {
	// Lambda is the regularization strength; zero means 1/n, the
	// equivalent of C=1 for n samples.
	Lambda float64
	Epochs int
	Seed   int64

	dim     int
	weights []float64 // dim+1 entries, the last one is the bias
	fitted  bool
}

// NewSVM returns an SVM with default settings.
func NewSVM() *SVM {
	return &SVM{Epochs: defaultSVMEpochs, Seed: defaultSVMSeed}
}

// Kind returns LinearSVM.
func (s *SVM) Kind() Kind {
	return LinearSVM
}

// Fit trains the model. The sample order is shuffled with a fixed seed so
// repeated fits on the same data yield the same weights.
func (s *SVM) Fit(features []vectorize.Vector, labels []int) error {
	dim, err := checkTrainingSet(features, labels)
	if err != nil {
		return err
	}
	n := len(features)
	lambda := s.Lambda
	if lambda <= 0 {
		lambda = 1 / float64(n)
	}
	epochs := s.Epochs
	if epochs <= 0 {
		epochs = defaultSVMEpochs
	}

	// w = scale * v keeps the per-step shrink O(1).
	v := make([]float64, dim+1)
	scale := 1.0
	rng := rand.New(rand.NewSource(s.Seed))

	t := 0
	for epoch := 0; epoch < epochs; epoch++ {
		for _, i := range rng.Perm(n) {
			t++
			eta := 1 / (lambda * float64(t))
			x := features[i]
			y := -1.0
			if labels[i] == 1 {
				y = 1
			}
			margin := y * scale * (x.Dot(v) + v[dim])

			shrink := 1 - eta*lambda
			if shrink <= 0 {
				for j := range v {
					v[j] = 0
				}
				scale = 1
			} else {
				scale *= shrink
			}
			if margin < 1 {
				step := eta * y / scale
				x.AddTo(v, step)
				v[dim] += step
			}
			if scale < minScale {
				floats.Scale(scale, v)
				scale = 1
			}
		}
	}
	floats.Scale(scale, v)

	s.dim = dim
	s.weights = v
	s.fitted = true
	return nil
}

// Decision returns the signed distance proxy w·x + b.
func (s *SVM) Decision(x vectorize.Vector) (float64, error) {
	if err := checkInput(x, s.dim, s.fitted); err != nil {
		return 0, err
	}
	return x.Dot(s.weights[:s.dim]) + s.weights[s.dim], nil
}

// Predict returns 1 when the decision value is non-negative.
func (s *SVM) Predict(x vectorize.Vector) (int, error) {
	d, err := s.Decision(x)
	if err != nil {
		return 0, err
	}
	if d >= 0 {
		return 1, nil
	}
	return 0, nil
}

// Confidence squashes the decision value through a sigmoid.
func (s *SVM) Confidence(x vectorize.Vector) (float64, error) {
	d, err := s.Decision(x)
	if err != nil {
		return 0, err
	}
	sig, err := stats.Sigmoid([]float64{d})
	if err != nil {
		return 0, err
	}
	p := sig[0]
	if math.IsNaN(p) {
		return 0.5, nil
	}
	if d >= 0 {
		return p, nil
	}
	return 1 - p, nil
}
