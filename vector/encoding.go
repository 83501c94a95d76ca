package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector encodes a slice of float32 values into a BLOB suitable for
// storage in SQLite: a little-endian sequence of IEEE 754 float32 values
// without a length prefix; the length is derived from the BLOB size on
// decode.
func EncodeVector(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeVector decodes a BLOB produced by EncodeVector back into a slice of
// float32 values.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid vector blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
