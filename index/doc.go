// Package index defines a minimal abstraction for vector indexes that can
// be built from embeddings, queried for nearest neighbors, and serialized
// for persistence. Implementations in this module include a brute-force
// baseline and the M-Tree index.
package index
