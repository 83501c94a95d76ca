package index

import (
	"encoding/binary"
	"errors"
	"math"
)

// EncodeVectors serializes parallel id/vector slices into the compact
// layout shared by this module's indexes: dim(uint32), n(uint32), then per
// item idLen(uint32), id bytes, vec(float32[dim]), all little-endian.
func EncodeVectors(ids []string, vectors [][]float32) ([]byte, error) {
	if len(ids) != len(vectors) {
		return nil, errors.New("index: ids and vectors length mismatch")
	}
	if len(ids) == 0 {
		return make([]byte, 8), nil
	}
	dim := len(vectors[0])
	size := 8
	for _, id := range ids {
		size += 4 + len(id) + 4*dim
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(ids)))
	for idx, id := range ids {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(id)))
		out = append(out, id...)
		if len(vectors[idx]) != dim {
			return nil, errors.New("index: inconsistent vector dims")
		}
		for _, v := range vectors[idx] {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out, nil
}

// DecodeVectors parses the layout produced by EncodeVectors.
func DecodeVectors(data []byte) ([]string, [][]float32, error) {
	if len(data) < 8 {
		return nil, nil, errors.New("index: invalid data")
	}
	off := 0
	getU32 := func() (uint32, bool) {
		if off+4 > len(data) {
			return 0, false
		}
		v := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
		return v, true
	}
	dimU, _ := getU32()
	nU, _ := getU32()
	dim, n := int(dimU), int(nU)
	ids := make([]string, n)
	vecs := make([][]float32, n)
	for idx := 0; idx < n; idx++ {
		idLenU, ok := getU32()
		if !ok {
			return nil, nil, errors.New("index: truncated id length")
		}
		idLen := int(idLenU)
		if off+idLen > len(data) {
			return nil, nil, errors.New("index: truncated id")
		}
		ids[idx] = string(data[off : off+idLen])
		off += idLen
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			bits, ok := getU32()
			if !ok {
				return nil, nil, errors.New("index: truncated vector")
			}
			vec[j] = math.Float32frombits(bits)
		}
		vecs[idx] = vec
	}
	return ids, vecs, nil
}
