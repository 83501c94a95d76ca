// Package mtree implements an M-Tree: a dynamic, balanced index for exact
// nearest-neighbor and range search over arbitrary data equipped only with a
// metric distance function. It includes:
//   - incremental insertion with recursive node splitting and root promotion
//   - point deletion with under-capacity repair (donate or merge)
//   - pluggable promotion/partition split strategies
//   - a lazy best-first query iterator driven by two priority queues
package mtree
