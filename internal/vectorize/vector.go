package vectorize

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Vector is a sparse feature vector over a fitted vocabulary. Indices are
// sorted ascending and Values[i] belongs to Indices[i]. Indices not present
// hold zero.
type Vector struct {
	Dim     int
	Indices []int
	Values  []float64
}

func newVector(dim int, weights map[int]float64) Vector {
	v := Vector{Dim: dim, Indices: make([]int, 0, len(weights))}
	for idx := range weights {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	v.Values = make([]float64, len(v.Indices))
	for i, idx := range v.Indices {
		v.Values[i] = weights[idx]
	}
	return v
}

// NNZ returns the number of stored entries.
func (v Vector) NNZ() int {
	return len(v.Indices)
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	if len(v.Values) == 0 {
		return 0
	}
	return floats.Norm(v.Values, 2)
}

// Dot returns the inner product of v with the dense vector w. Entries of v
// beyond len(w) are ignored.
func (v Vector) Dot(w []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(w) {
			sum += v.Values[i] * w[idx]
		}
	}
	return sum
}

// AddTo adds alpha*v to the dense vector dst.
func (v Vector) AddTo(dst []float64, alpha float64) {
	for i, idx := range v.Indices {
		if idx < len(dst) {
			dst[idx] += alpha * v.Values[i]
		}
	}
}

// Dense expands v into a dense slice of length Dim.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Dim)
	v.AddTo(out, 1)
	return out
}
