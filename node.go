package mtree

import "math"

// splitPair carries the two nodes that replace a node which exceeded its
// maximum capacity. It is the returned-variant form of the split signal:
// each recursive mutator hands it to its caller instead of unwinding through
// a panic.
type splitPair[D any] struct {
	first, second *item[D]
}

// removeOutcome reports how a recursive removal ended. Under-capacity is an
// internal signal repaired by the parent (or by root replacement); it never
// escapes the public surface.
type removeOutcome int

const (
	removeOK removeOutcome = iota
	removeNotFound
	removeUnderCapacity
)

// addData descends from n to the leaf that takes data and appends an entry
// there. distance is the precomputed d(data, n.data). A non-nil result
// carries the two nodes that must replace n after a split.
func (t *Tree[D]) addData(n *item[D], data D, distance float64) *splitPair[D] {
	t.doAddData(n, data, distance)
	return t.checkMaxCapacity(n)
}

func (t *Tree[D]) doAddData(n *item[D], data D, distance float64) {
	if n.leaf {
		entry := newEntry(data)
		t.insertChild(n, entry)
		n.updateMetrics(entry, distance)
		return
	}

	// Prefer the nearest child whose ball already covers data; otherwise
	// take the child needing the smallest radius increase.
	var covered, toEnlarge *item[D]
	var coveredDist, enlargeDist float64
	bestCovered := math.Inf(1)
	bestIncrease := math.Inf(1)
	for _, child := range n.children {
		d := t.distance(child.data, data)
		if d > child.radius {
			if increase := d - child.radius; increase < bestIncrease {
				bestIncrease = increase
				toEnlarge, enlargeDist = child, d
			}
		} else if d < bestCovered {
			bestCovered = d
			covered, coveredDist = child, d
		}
	}
	chosen, chosenDist := covered, coveredDist
	if chosen == nil {
		chosen, chosenDist = toEnlarge, enlargeDist
	}

	if split := t.addData(chosen, data, chosenDist); split != nil {
		i, _ := t.findChild(n, chosen.data)
		t.deleteChild(n, i)
		for _, half := range []*item[D]{split.first, split.second} {
			t.addChild(n, half, t.distance(n.data, half.data))
		}
	} else {
		n.updateRadius(chosen)
	}
}

// checkMaxCapacity splits n when its child count exceeds the maximum:
// two pivots are promoted from the child keys, the keys are partitioned, and
// each partition moves into a fresh non-root node of n's leaf-ness. n itself
// is abandoned; the caller links the returned pair in its place.
func (t *Tree[D]) checkMaxCapacity(n *item[D]) *splitPair[D] {
	if len(n.children) <= t.maxCapacity {
		return nil
	}

	keys := make([]D, len(n.children))
	for i, child := range n.children {
		keys[i] = child.data
	}
	cache := newDistanceCache(keys, t.compare, t.distance)
	first, second, part1, part2 := t.split(keys, cache.Distance)

	pair := &splitPair[D]{
		first:  newNode(first, false, n.leaf),
		second: newNode(second, false, n.leaf),
	}
	for i, part := range [][]D{part1, part2} {
		node := pair.first
		promoted := first
		if i == 1 {
			node = pair.second
			promoted = second
		}
		for _, data := range part {
			j, _ := t.findChild(n, data)
			child := n.children[j]
			t.deleteChild(n, j)
			t.addChild(node, child, cache.Distance(promoted, data))
		}
	}
	return pair
}

// addChild links child under n, updating metrics. On internal nodes an
// incoming node whose data already keys an existing child is absorbed into
// it: the grandchildren transfer with their existing parent distances (valid
// because both nodes share the same representative), the incoming node is
// discarded, and the merged child is re-checked for capacity, with any
// resulting split queued until the worklist drains.
func (t *Tree[D]) addChild(n *item[D], child *item[D], distance float64) {
	if n.leaf {
		t.insertChild(n, child)
		n.updateMetrics(child, distance)
		return
	}

	type childWithDistance struct {
		node     *item[D]
		distance float64
	}
	pending := []childWithDistance{{child, distance}}
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		i, ok := t.findChild(n, next.node.data)
		if !ok {
			t.insertChild(n, next.node)
			n.updateMetrics(next.node, next.distance)
			continue
		}

		existing := n.children[i]
		for _, grandchild := range next.node.children {
			t.addChild(existing, grandchild, grandchild.parentDist)
		}
		next.node.children = nil

		if split := t.checkMaxCapacity(existing); split != nil {
			j, _ := t.findChild(n, existing.data)
			t.deleteChild(n, j)
			for _, half := range []*item[D]{split.first, split.second} {
				pending = append(pending, childWithDistance{half, t.distance(n.data, half.data)})
			}
		}
	}
}

// removeData removes data from n's subtree. distance is the precomputed
// d(data, n.data).
func (t *Tree[D]) removeData(n *item[D], data D, distance float64) removeOutcome {
	if outcome := t.doRemoveData(n, data, distance); outcome != removeOK {
		return outcome
	}
	if len(n.children) < n.minCapacity(t) {
		return removeUnderCapacity
	}
	return removeOK
}

func (t *Tree[D]) doRemoveData(n *item[D], data D, distance float64) removeOutcome {
	if n.leaf {
		if i, ok := t.findChild(n, data); ok {
			t.deleteChild(n, i)
			return removeOK
		}
		return removeNotFound
	}

	for _, child := range n.children {
		// Triangle-inequality prune: data cannot lie inside child's ball.
		if math.Abs(distance-child.parentDist) > child.radius {
			continue
		}
		distanceToChild := t.distance(data, child.data)
		if distanceToChild > child.radius {
			continue
		}
		switch t.removeData(child, data, distanceToChild) {
		case removeOK:
			n.updateRadius(child)
			return removeOK
		case removeUnderCapacity:
			expanded := t.balanceChildren(n, child)
			n.updateRadius(expanded)
			return removeOK
		case removeNotFound:
			// Keep scanning siblings; the ball test admits false positives.
		}
	}
	return removeNotFound
}

// balanceChildren repairs the under-capacity child of n. The nearest sibling
// holding spare children donates its grandchild closest to child; with no
// donor available, child's grandchildren merge into the nearest sibling and
// child is dropped. Returns the node whose subtree grew.
func (t *Tree[D]) balanceChildren(n, child *item[D]) *item[D] {
	var nearestDonor, nearestMerge *item[D]
	donorDist := math.Inf(1)
	mergeDist := math.Inf(1)
	for _, sibling := range n.children {
		if sibling == child {
			continue
		}
		d := t.distance(child.data, sibling.data)
		if len(sibling.children) > sibling.minCapacity(t) {
			if d < donorDist {
				donorDist, nearestDonor = d, sibling
			}
		} else if d < mergeDist {
			mergeDist, nearestMerge = d, sibling
		}
	}

	if nearestDonor == nil {
		for _, grandchild := range child.children {
			t.addChild(nearestMerge, grandchild, t.distance(grandchild.data, nearestMerge.data))
		}
		child.children = nil
		i, _ := t.findChild(n, child.data)
		t.deleteChild(n, i)
		return nearestMerge
	}

	var nearest *item[D]
	nearestIdx := -1
	nearestDist := math.Inf(1)
	for i, grandchild := range nearestDonor.children {
		d := t.distance(grandchild.data, child.data)
		if d < nearestDist {
			nearestDist, nearest, nearestIdx = d, grandchild, i
		}
	}
	t.deleteChild(nearestDonor, nearestIdx)
	t.addChild(child, nearest, nearestDist)
	return child
}
