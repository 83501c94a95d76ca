package mtree

import (
	"math/rand"
	"sort"
)

// DistanceFunc computes the distance between two data objects. It must be a
// metric: non-negative, symmetric, zero only for identical objects, and
// satisfying the triangle inequality. Non-metric functions yield an
// undefined ordering of query results.
type DistanceFunc[D any] func(a, b D) float64

// CompareFunc imposes a strict total order on data objects, returning a
// negative value when a sorts before b, zero when they are equal, and a
// positive value otherwise. The order keys the child sets and breaks
// partition ties.
type CompareFunc[D any] func(a, b D) int

// PromotionFunc picks two distinct pivots out of items. items holds at
// least two elements.
type PromotionFunc[D any] func(items []D, distance DistanceFunc[D]) (first, second D)

// PartitionFunc distributes every element of items into exactly one of the
// two returned partitions, anchored on the promoted pivots. Both partitions
// must be non-empty, disjoint, and together cover items.
type PartitionFunc[D any] func(first, second D, items []D, distance DistanceFunc[D]) (part1, part2 []D)

// SplitFunc promotes two pivots from items and partitions items between
// them. It runs when a node exceeds its maximum capacity; the distance
// function it receives memoizes repeated lookups for the duration of the
// split.
type SplitFunc[D any] func(items []D, distance DistanceFunc[D]) (first, second D, part1, part2 []D)

// ComposeSplit builds a SplitFunc from a promotion and a partition strategy.
func ComposeSplit[D any](promote PromotionFunc[D], partition PartitionFunc[D]) SplitFunc[D] {
	return func(items []D, distance DistanceFunc[D]) (D, D, []D, []D) {
		first, second := promote(items, distance)
		part1, part2 := partition(first, second, items, distance)
		return first, second, part1, part2
	}
}

// RandomPromotion picks two distinct items uniformly at random.
func RandomPromotion[D any](items []D, _ DistanceFunc[D]) (D, D) {
	i := rand.Intn(len(items))
	j := rand.Intn(len(items) - 1)
	if j >= i {
		j++
	}
	return items[i], items[j]
}

// BalancedPartition returns the reference partition strategy: items are
// sorted twice, by distance to each pivot, and assigned in alternating
// rounds to the pivot whose sort order reaches them first. Distance ties
// break on the compare order so the partition is deterministic.
func BalancedPartition[D any](compare CompareFunc[D]) PartitionFunc[D] {
	return func(first, second D, items []D, distance DistanceFunc[D]) ([]D, []D) {
		d1 := make([]float64, len(items))
		d2 := make([]float64, len(items))
		for i, data := range items {
			d1[i] = distance(data, first)
			d2[i] = distance(data, second)
		}
		queue1 := sortedByDistance(items, d1, compare)
		queue2 := sortedByDistance(items, d2, compare)

		assigned := make([]bool, len(items))
		var part1, part2 []D
		i1, i2 := 0, 0
		for i1 < len(queue1) || i2 < len(queue2) {
			for i1 < len(queue1) {
				idx := queue1[i1]
				i1++
				if !assigned[idx] {
					assigned[idx] = true
					part1 = append(part1, items[idx])
					break
				}
			}
			for i2 < len(queue2) {
				idx := queue2[i2]
				i2++
				if !assigned[idx] {
					assigned[idx] = true
					part2 = append(part2, items[idx])
					break
				}
			}
		}
		return part1, part2
	}
}

// sortedByDistance returns item indices ordered by ascending distance, with
// ties broken by the compare order.
func sortedByDistance[D any](items []D, distances []float64, compare CompareFunc[D]) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if distances[i] != distances[j] {
			return distances[i] < distances[j]
		}
		return compare(items[i], items[j]) < 0
	})
	return order
}

// distanceCache memoizes distances between members of a split's key set,
// keyed by the unordered index pair: a lookup for (b, a) hits the entry
// stored for (a, b). The cache lives for a single capacity check and is
// dropped when the split completes. Lookups involving data outside the key
// set fall through to the wrapped function uncached.
type distanceCache[D any] struct {
	keys     []D // sorted by compare
	compare  CompareFunc[D]
	distance DistanceFunc[D]
	memo     map[[2]int]float64
}

// newDistanceCache wraps distance with a memo over keys, which must be
// sorted by compare.
func newDistanceCache[D any](keys []D, compare CompareFunc[D], distance DistanceFunc[D]) *distanceCache[D] {
	return &distanceCache[D]{
		keys:     keys,
		compare:  compare,
		distance: distance,
		memo:     make(map[[2]int]float64),
	}
}

func (c *distanceCache[D]) indexOf(data D) int {
	i := sort.Search(len(c.keys), func(k int) bool { return c.compare(c.keys[k], data) >= 0 })
	if i < len(c.keys) && c.compare(c.keys[i], data) == 0 {
		return i
	}
	return -1
}

// Distance computes or recalls the distance between a and b.
func (c *distanceCache[D]) Distance(a, b D) float64 {
	i, j := c.indexOf(a), c.indexOf(b)
	if i < 0 || j < 0 {
		return c.distance(a, b)
	}
	if j < i {
		i, j = j, i
	}
	key := [2]int{i, j}
	if d, ok := c.memo[key]; ok {
		return d
	}
	d := c.distance(a, b)
	c.memo[key] = d
	return d
}
