package vector

import (
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// EuclideanDistance returns the Euclidean (L2) distance between two points.
// It is a metric and the default distance for the M-Tree index.
func EuclideanDistance(a, b *Point) float64 {
	return float64(search.Float32s(a.Vector).EuclideanDistance(b.Vector))
}

// CosineDistance returns the cosine distance (1 - cosine similarity),
// reusing each point's cached magnitude. Note that cosine distance violates
// the triangle inequality; use it with the index only when an undefined
// result ordering is acceptable.
func CosineDistance(a, b *Point) float64 {
	v := search.Float32s(a.Vector)
	return float64(v.CosineDistanceWithMagnitude(b.Vector, a.magnitude(), b.magnitude()))
}

// L2Distance computes the Euclidean distance between two raw vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// CosineSimilarity computes the cosine similarity between two raw vectors.
// It returns an error if the vectors have different lengths or if either
// vector has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with zero-magnitude vector")
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}
