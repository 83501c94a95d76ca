// Package metric implements the module's index contract on top of the
// M-Tree core, giving sublinear nearest-neighbor queries over identified
// vectors.
package metric

import (
	"fmt"

	"github.com/viant/mtree"
	"github.com/viant/mtree/index"
	"github.com/viant/mtree/vector"
)

// Index answers nearest-neighbor queries through an M-Tree over the built
// points. The zero value is usable; Build (or UnmarshalBinary) must run
// before Query.
type Index struct {
	// MinCapacity and MaxCapacity tune the tree's node capacities. Zero
	// selects mtree.DefaultMinNodeCapacity and 2*min-1 respectively.
	MinCapacity int
	MaxCapacity int

	ids  []string
	vecs [][]float32
	dim  int
	tree *mtree.Tree[*vector.Point]
}

// Build constructs the tree from the given ids and vectors. ids must be
// unique; vectors must share one dimensionality.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("metric: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	minCapacity := i.MinCapacity
	if minCapacity == 0 {
		minCapacity = mtree.DefaultMinNodeCapacity
	}
	maxCapacity := i.MaxCapacity
	if maxCapacity == 0 {
		maxCapacity = -1
	}
	tree, err := mtree.New(minCapacity, maxCapacity, vector.ComparePoints, vector.EuclideanDistance, nil)
	if err != nil {
		return fmt.Errorf("metric: %w", err)
	}

	if len(ids) == 0 {
		i.ids, i.vecs, i.dim, i.tree = nil, nil, 0, tree
		return nil
	}
	dim := len(vectors[0])
	seen := make(map[string]bool, len(ids))
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("metric: inconsistent vector dims %d vs %d", len(vectors[j]), dim)
		}
		if seen[ids[j]] {
			return fmt.Errorf("metric: duplicate id %q", ids[j])
		}
		seen[ids[j]] = true
	}

	for j := range ids {
		tree.Add(&vector.Point{ID: ids[j], Vector: vectors[j]})
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.tree = tree
	return nil
}

// Query returns up to k ids and Euclidean distances ordered by ascending
// distance; k <= 0 returns every built point.
func (i *Index) Query(query []float32, k int) ([]string, []float64, error) {
	if i.tree == nil || i.tree.Empty() {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("metric: query dim %d != index dim %d", len(query), i.dim)
	}
	if k <= 0 {
		k = mtree.NoLimit
	}
	results := i.tree.NearestByLimit(&vector.Point{Vector: query}, k).All()
	ids := make([]string, len(results))
	dists := make([]float64, len(results))
	for n, r := range results {
		ids[n] = r.Data.ID
		dists[n] = r.Distance
	}
	return ids, dists, nil
}

// MarshalBinary serializes the built points in the module's shared layout.
func (i *Index) MarshalBinary() ([]byte, error) {
	return index.EncodeVectors(i.ids, i.vecs)
}

// UnmarshalBinary rebuilds the tree from serialized points.
func (i *Index) UnmarshalBinary(data []byte) error {
	ids, vecs, err := index.DecodeVectors(data)
	if err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	return i.Build(ids, vecs)
}

// Ensure Index satisfies the module's index contract.
var _ index.Index = (*Index)(nil)
