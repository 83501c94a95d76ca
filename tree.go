package mtree

import "fmt"

// DefaultMinNodeCapacity is the minimum node capacity used when callers have
// no reason to tune it.
const DefaultMinNodeCapacity = 50

// Tree is an M-Tree indexing data objects of type D under a caller-supplied
// metric. The zero value is not usable; construct with New.
//
// A Tree offers no internal synchronization: callers must serialize
// mutations with concurrent mutations or queries, and a query iterator must
// not observe a concurrent mutation.
type Tree[D any] struct {
	minCapacity int
	maxCapacity int
	compare     CompareFunc[D]
	distance    DistanceFunc[D]
	split       SplitFunc[D]
	root        *item[D]
	size        int
}

// New constructs an M-Tree.
//
// minCapacity must be at least 2. maxCapacity must exceed minCapacity;
// passing -1 selects 2*minCapacity - 1. A nil split selects the reference
// strategy, random promotion composed with balanced partition.
func New[D any](minCapacity, maxCapacity int, compare CompareFunc[D], distance DistanceFunc[D], split SplitFunc[D]) (*Tree[D], error) {
	if compare == nil {
		return nil, fmt.Errorf("mtree: compare function is nil")
	}
	if distance == nil {
		return nil, fmt.Errorf("mtree: distance function is nil")
	}
	if minCapacity < 2 {
		return nil, fmt.Errorf("mtree: min node capacity %d, want at least 2", minCapacity)
	}
	if maxCapacity == -1 {
		maxCapacity = 2*minCapacity - 1
	}
	if maxCapacity <= minCapacity {
		return nil, fmt.Errorf("mtree: max node capacity %d must exceed min node capacity %d", maxCapacity, minCapacity)
	}
	if split == nil {
		split = ComposeSplit(RandomPromotion[D], BalancedPartition(compare))
	}
	return &Tree[D]{
		minCapacity: minCapacity,
		maxCapacity: maxCapacity,
		compare:     compare,
		distance:    distance,
		split:       split,
	}, nil
}

// Size returns the number of indexed data objects.
func (t *Tree[D]) Size() int { return t.size }

// Empty reports whether the tree holds no data.
func (t *Tree[D]) Empty() bool { return t.root == nil }

// Add indexes a data object. Adding an object already present leaves the
// index undefined; keys are assumed unique under the compare order.
func (t *Tree[D]) Add(data D) {
	if t.root == nil {
		root := newNode(data, true, true)
		t.root = root
		t.addData(root, data, 0)
		t.size++
		return
	}
	distance := t.distance(data, t.root.data)
	if split := t.addData(t.root, data, distance); split != nil {
		// The split outgrew the root: promote a fresh root carrying the
		// old root's representative, with the two halves as children.
		root := newNode(t.root.data, true, false)
		t.root = root
		for _, half := range []*item[D]{split.first, split.second} {
			t.addChild(root, half, t.distance(root.data, half.data))
		}
	}
	t.size++
}

// Remove deletes a data object, reporting whether it was present.
func (t *Tree[D]) Remove(data D) bool {
	if t.root == nil {
		return false
	}
	distance := t.distance(data, t.root.data)
	switch t.removeData(t.root, data, distance) {
	case removeNotFound:
		return false
	case removeUnderCapacity:
		t.replaceRoot()
	}
	t.size--
	return true
}

// replaceRoot repairs an under-capacity root: an empty leaf root empties the
// tree, and a root left with a single child demotes in favor of that child.
func (t *Tree[D]) replaceRoot() {
	if t.root.leaf {
		t.root = nil
		return
	}
	child := t.root.children[0]
	root := newNode(child.data, true, child.leaf)
	for _, grandchild := range child.children {
		t.addChild(root, grandchild, t.distance(root.data, grandchild.data))
	}
	child.children = nil
	t.root = root
}
