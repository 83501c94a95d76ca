package metric

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/viant/mtree/index/bruteforce"
)

func TestIndex_BuildAndQuery(t *testing.T) {
	idx := Index{MinCapacity: 2, MaxCapacity: 3}
	err := idx.Build(
		[]string{"a", "b", "c", "d"},
		[][]float32{{0, 0}, {3, 4}, {10, 0}, {0, 10}},
	)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	ids, dists, err := idx.Query([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("Query ids = %v, want [a b]", ids)
	}
	if dists[0] != 0 || math.Abs(dists[1]-5) > 1e-6 {
		t.Fatalf("Query dists = %v, want [0 5]", dists)
	}
}

func TestIndex_Validation(t *testing.T) {
	var idx Index
	if err := idx.Build([]string{"a"}, nil); err == nil {
		t.Errorf("Build with mismatched lengths succeeded, want error")
	}
	if err := idx.Build([]string{"a", "a"}, [][]float32{{1}, {2}}); err == nil {
		t.Errorf("Build with duplicate ids succeeded, want error")
	}
	if err := idx.Build([]string{"a", "b"}, [][]float32{{1}, {1, 2}}); err == nil {
		t.Errorf("Build with inconsistent dims succeeded, want error")
	}
}

func TestIndex_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	n, dim := 400, 3

	ids := make([]string, n)
	vecs := make([][]float32, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("p%04d", i)
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = rng.Float32() * 100
		}
		vecs[i] = vec
	}

	tree := Index{MinCapacity: 3, MaxCapacity: 8}
	if err := tree.Build(ids, vecs); err != nil {
		t.Fatalf("metric Build failed: %v", err)
	}
	var exact bruteforce.Index
	if err := exact.Build(ids, vecs); err != nil {
		t.Fatalf("bruteforce Build failed: %v", err)
	}

	for trial := 0; trial < 25; trial++ {
		query := []float32{rng.Float32() * 100, rng.Float32() * 100, rng.Float32() * 100}
		k := 1 + rng.Intn(20)

		gotIDs, gotDists, err := tree.Query(query, k)
		if err != nil {
			t.Fatalf("metric Query failed: %v", err)
		}
		wantIDs, wantDists, err := exact.Query(query, k)
		if err != nil {
			t.Fatalf("bruteforce Query failed: %v", err)
		}
		if len(gotIDs) != len(wantIDs) {
			t.Fatalf("trial %d: got %d results, want %d", trial, len(gotIDs), len(wantIDs))
		}
		for i := range gotDists {
			if math.Abs(gotDists[i]-wantDists[i]) > 1e-4 {
				t.Fatalf("trial %d: dist[%d] = %v, brute force says %v", trial, i, gotDists[i], wantDists[i])
			}
		}
	}
}

func TestIndex_MarshalRoundTrip(t *testing.T) {
	idx := Index{MinCapacity: 2, MaxCapacity: 3}
	ids := []string{"x", "y", "z"}
	vecs := [][]float32{{0, 1}, {2, 3}, {4, 5}}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := idx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	restored := Index{MinCapacity: 2, MaxCapacity: 3}
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}

	gotIDs, _, err := restored.Query([]float32{4, 5}, 1)
	if err != nil {
		t.Fatalf("Query after restore failed: %v", err)
	}
	if len(gotIDs) != 1 || gotIDs[0] != "z" {
		t.Fatalf("Query after restore = %v, want [z]", gotIDs)
	}
}

func TestIndex_EmptyAndZeroValue(t *testing.T) {
	var idx Index
	if ids, _, err := idx.Query([]float32{1, 2}, 3); err != nil || ids != nil {
		t.Errorf("Query on unbuilt index = %v, %v; want nil, nil", ids, err)
	}
	if err := idx.Build(nil, nil); err != nil {
		t.Fatalf("Build of empty index failed: %v", err)
	}
	if ids, _, err := idx.Query([]float32{1, 2}, 3); err != nil || ids != nil {
		t.Errorf("Query on empty index = %v, %v; want nil, nil", ids, err)
	}
}
