package mtree

import (
	"container/heap"
	"math"
)

// NoLimit requests an unconstrained number of neighbors.
const NoLimit = -1

// Result is a single nearest-neighbor hit: a stored data object and its
// distance from the query object.
type Result[D any] struct {
	Data     D
	Distance float64
}

// Query describes a nearest-neighbor search. Results arrive in
// non-decreasing distance, restricted to distance <= radius and to at most
// limit elements. The search runs lazily during iteration: by the time the
// n-th result is produced, only the work needed to identify the first n
// results has been done.
type Query[D any] struct {
	tree   *Tree[D]
	data   D
	radius float64
	limit  int
}

// Nearest starts a nearest-neighbor query bounded by both distance and
// count. Pass math.Inf(1) and/or NoLimit to lift either bound; a negative
// limit means unlimited.
func (t *Tree[D]) Nearest(query D, radius float64, limit int) *Query[D] {
	return &Query[D]{tree: t, data: query, radius: radius, limit: limit}
}

// NearestByRange starts a query bounded only by distance.
func (t *Tree[D]) NearestByRange(query D, radius float64) *Query[D] {
	return t.Nearest(query, radius, NoLimit)
}

// NearestByLimit starts a query bounded only by neighbor count.
func (t *Tree[D]) NearestByLimit(query D, limit int) *Query[D] {
	return t.Nearest(query, math.Inf(1), limit)
}

// NearestAll starts an unconstrained query enumerating every stored object
// in non-decreasing distance.
func (t *Tree[D]) NearestAll(query D) *Query[D] {
	return t.Nearest(query, math.Inf(1), NoLimit)
}

// All drains the query and returns every result.
func (q *Query[D]) All() []Result[D] {
	var out []Result[D]
	for it := q.Iterator(); it.Next(); {
		out = append(out, it.Item())
	}
	return out
}

// Iterator starts executing the query. The iterator borrows the tree and
// must not outlive, or observe, a mutation.
func (q *Query[D]) Iterator() *Iterator[D] {
	it := &Iterator[D]{query: q, nextPendingMinDistance: math.Inf(1)}
	root := q.tree.root
	if root == nil {
		it.done = true
		return it
	}
	distance := q.tree.distance(q.data, root.data)
	minDistance := math.Max(distance-root.radius, 0)
	heap.Push(&it.pending, queued[D]{item: root, distance: distance, minDistance: minDistance})
	it.nextPendingMinDistance = minDistance
	return it
}

// Iterator walks query results best-first. Two priority queues drive the
// traversal: pending subtrees ordered by the lower bound on any distance
// beneath them, and candidate entries ordered by exact distance. An entry is
// emitted only once no pending subtree could still produce anything closer.
type Iterator[D any] struct {
	query                  *Query[D]
	pending                pendingQueue[D]
	nearest                nearestQueue[D]
	nextPendingMinDistance float64
	current                Result[D]
	yielded                int
	done                   bool
}

// Next advances to the next result, reporting whether one is available.
func (it *Iterator[D]) Next() bool {
	if it.done || (it.query.limit >= 0 && it.yielded >= it.query.limit) {
		it.done = true
		return false
	}

	for len(it.pending) > 0 || len(it.nearest) > 0 {
		if it.emitNearest() {
			return true
		}

		// No emittable entry, so the pending queue cannot be empty.
		node := heap.Pop(&it.pending).(queued[D])
		for _, child := range node.item.children {
			if math.Abs(node.distance-child.parentDist)-child.radius > it.query.radius {
				continue
			}
			childDistance := it.query.tree.distance(it.query.data, child.data)
			childMin := math.Max(childDistance-child.radius, 0)
			if childMin > it.query.radius {
				continue
			}
			candidate := queued[D]{item: child, distance: childDistance, minDistance: childMin}
			if child.entry {
				heap.Push(&it.nearest, candidate)
			} else {
				heap.Push(&it.pending, candidate)
			}
		}

		if len(it.pending) == 0 {
			it.nextPendingMinDistance = math.Inf(1)
		} else {
			it.nextPendingMinDistance = it.pending[0].minDistance
		}
	}

	it.done = true
	return false
}

// emitNearest pops the closest candidate entry when no pending subtree could
// beat it.
func (it *Iterator[D]) emitNearest() bool {
	if len(it.nearest) == 0 || it.nearest[0].distance > it.nextPendingMinDistance {
		return false
	}
	next := heap.Pop(&it.nearest).(queued[D])
	it.current = Result[D]{Data: next.item.data, Distance: next.distance}
	it.yielded++
	return true
}

// Item returns the result positioned by the last successful Next.
func (it *Iterator[D]) Item() Result[D] { return it.current }

// queued is an item scheduled on one of the iterator's queues together with
// its exact distance from the query object and the lower bound on distances
// within its subtree.
type queued[D any] struct {
	item        *item[D]
	distance    float64
	minDistance float64
}

// pendingQueue orders subtrees by ascending minDistance.
type pendingQueue[D any] []queued[D]

func (q pendingQueue[D]) Len() int            { return len(q) }
func (q pendingQueue[D]) Less(i, j int) bool  { return q[i].minDistance < q[j].minDistance }
func (q pendingQueue[D]) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pendingQueue[D]) Push(x interface{}) { *q = append(*q, x.(queued[D])) }
func (q *pendingQueue[D]) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// nearestQueue orders candidate entries by ascending exact distance.
type nearestQueue[D any] []queued[D]

func (q nearestQueue[D]) Len() int            { return len(q) }
func (q nearestQueue[D]) Less(i, j int) bool  { return q[i].distance < q[j].distance }
func (q nearestQueue[D]) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nearestQueue[D]) Push(x interface{}) { *q = append(*q, x.(queued[D])) }
func (q *nearestQueue[D]) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
