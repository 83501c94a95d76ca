package vector

import (
	"strings"

	"github.com/viant/vec/search"
)

// Point is an identified vector. ID keys the point in the index and the
// store; Label carries an optional human-readable tag. Magnitude is cached
// lazily for cosine distances.
type Point struct {
	ID        string
	Label     string
	Vector    []float32
	Magnitude float32
}

// NewPoint constructs a point for the given id and vector.
func NewPoint(id string, vector ...float32) *Point {
	return &Point{ID: id, Vector: vector}
}

// magnitude returns the cached vector magnitude, computing it on first use.
func (p *Point) magnitude() float32 {
	if p.Magnitude == 0 && len(p.Vector) > 0 {
		p.Magnitude = search.Float32s(p.Vector).Magnitude()
	}
	return p.Magnitude
}

// ComparePoints orders points by ID. The order keys the index's child sets.
func ComparePoints(a, b *Point) int {
	return strings.Compare(a.ID, b.ID)
}
