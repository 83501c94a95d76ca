// Package vector models float32 vector points for the M-Tree index and
// provides:
//   - Point: an identified vector with a cached magnitude
//   - distance functions backed by viant/vec: Euclidean (a metric) and
//     cosine (not a metric)
//   - vector encoding (BLOB) for SQLite storage
package vector
