package store

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/viant/mtree/engine"
	"github.com/viant/mtree/vector"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewWithCapacity(db, 2, 3)
	if err != nil {
		t.Fatalf("NewWithCapacity failed: %v", err)
	}
	return s
}

func TestStore_AddAndNearest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	points := []*vector.Point{
		{ID: "origin", Vector: []float32{0, 0}},
		{ID: "east", Vector: []float32{1, 0}},
		{ID: "north", Vector: []float32{0, 1}},
		{ID: "far", Vector: []float32{9, 9}},
	}
	ids, err := s.AddPoints(ctx, points)
	if err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("AddPoints returned %d ids, want 4", len(ids))
	}
	if s.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", s.Count())
	}

	matches := s.Nearest([]float32{0.2, 0.1}, 2)
	if len(matches) != 2 {
		t.Fatalf("Nearest returned %d matches, want 2", len(matches))
	}
	if matches[0].Point.ID != "origin" {
		t.Errorf("nearest = %q, want origin", matches[0].Point.ID)
	}
	if matches[1].Point.ID != "east" {
		t.Errorf("second nearest = %q, want east", matches[1].Point.ID)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Errorf("matches out of distance order")
	}
}

func TestStore_NearestWithin(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddPoints(context.Background(), []*vector.Point{
		{ID: "a", Vector: []float32{0, 0}},
		{ID: "b", Vector: []float32{3, 4}},
		{ID: "c", Vector: []float32{10, 0}},
	})
	if err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}

	matches := s.NearestWithin([]float32{0, 0}, 6)
	if len(matches) != 2 {
		t.Fatalf("NearestWithin returned %d matches, want 2", len(matches))
	}
	if matches[0].Point.ID != "a" || matches[1].Point.ID != "b" {
		t.Errorf("matches = [%q, %q], want [a, b]", matches[0].Point.ID, matches[1].Point.ID)
	}
	if math.Abs(matches[1].Distance-5) > 1e-6 {
		t.Errorf("distance to b = %v, want 5", matches[1].Distance)
	}
}

func TestStore_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddPoints(ctx, []*vector.Point{{Vector: []float32{1}}}); err == nil {
		t.Errorf("AddPoints with empty ID succeeded, want error")
	}
	if _, err := s.AddPoints(ctx, []*vector.Point{{ID: "x", Vector: []float32{1, 2}}}); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	if _, err := s.AddPoints(ctx, []*vector.Point{{ID: "x", Vector: []float32{3, 4}}}); err == nil {
		t.Errorf("AddPoints with duplicate ID succeeded, want error")
	}
	if _, err := s.Remove(ctx, ""); err == nil {
		t.Errorf("Remove with empty id succeeded, want error")
	}
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var points []*vector.Point
	for i := 0; i < 20; i++ {
		points = append(points, &vector.Point{
			ID:     fmt.Sprintf("p%02d", i),
			Vector: []float32{float32(i), float32(i % 5)},
		})
	}
	if _, err := s.AddPoints(ctx, points); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}

	removed, err := s.Remove(ctx, "p07")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatalf("Remove(p07) = false, want true")
	}
	removed, err = s.Remove(ctx, "p07")
	if err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	if removed {
		t.Errorf("second Remove(p07) = true, want false")
	}
	if s.Count() != 19 {
		t.Errorf("Count() = %d, want 19", s.Count())
	}
	for _, m := range s.Nearest([]float32{7, 2}, 19) {
		if m.Point.ID == "p07" {
			t.Errorf("removed point still returned by Nearest")
		}
	}
}

func TestStore_ReloadFromDatabase(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	s, err := NewWithCapacity(db, 2, 3)
	if err != nil {
		t.Fatalf("NewWithCapacity failed: %v", err)
	}
	_, err = s.AddPoints(context.Background(), []*vector.Point{
		{ID: "a", Label: "alpha", Vector: []float32{1, 2}},
		{ID: "b", Label: "beta", Vector: []float32{3, 4}},
	})
	if err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}

	// A second store over the same database rebuilds the index from rows.
	reopened, err := NewWithCapacity(db, 2, 3)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Count() != 2 {
		t.Fatalf("reopened Count() = %d, want 2", reopened.Count())
	}
	matches := reopened.Nearest([]float32{1, 2}, 1)
	if len(matches) != 1 || matches[0].Point.ID != "a" {
		t.Fatalf("reopened Nearest = %+v, want point a", matches)
	}
	if matches[0].Point.Label != "alpha" {
		t.Errorf("label = %q, want alpha", matches[0].Point.Label)
	}
}
