package index

// Index defines a generic vector index with basic lifecycle methods.
// It enables building from (id, embedding) pairs, nearest-neighbor queries,
// and binary serialization for persistence.
type Index interface {
	// Build constructs the index from the given ids and vectors.
	// ids and vectors must have the same length; vectors must be non-nil
	// and share a single dimensionality.
	Build(ids []string, vectors [][]float32) error

	// Query runs a nearest-neighbor search against the index with the
	// provided query vector and returns up to k matches as parallel slices
	// of ids and Euclidean distances, ordered by ascending distance.
	Query(query []float32, k int) (ids []string, distances []float64, err error)

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
