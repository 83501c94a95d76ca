// Package bruteforce provides a simple vector index that answers
// nearest-neighbor queries by scanning all vectors and ranking by Euclidean
// distance. It is the exact baseline the tree-backed index is validated
// against, and supports a compact binary format for persistence.
package bruteforce
