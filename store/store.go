package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/viant/mtree"
	"github.com/viant/mtree/vector"
)

// Match is a single nearest-neighbor hit against the store.
type Match struct {
	Point    *vector.Point
	Distance float64
}

// Store is a durable point store: rows live in a SQLite points table, and an
// M-Tree over the same points serves nearest-neighbor queries in memory.
// Methods are safe for concurrent use; the store serializes access to the
// index on behalf of its callers.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	tree   *mtree.Tree[*vector.Point]
	points map[string]*vector.Point
}

// New creates a store over db with default index capacities, ensures the
// points schema, and loads any existing rows into the index.
func New(db *sql.DB) (*Store, error) {
	return NewWithCapacity(db, mtree.DefaultMinNodeCapacity, -1)
}

// NewWithCapacity creates a store with explicit M-Tree node capacities;
// maxCapacity -1 selects 2*minCapacity - 1.
func NewWithCapacity(db *sql.DB, minCapacity, maxCapacity int) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	tree, err := mtree.New(minCapacity, maxCapacity, vector.ComparePoints, vector.EuclideanDistance, nil)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, tree: tree, points: make(map[string]*vector.Point)}
	if err := s.load(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// load rebuilds the index from the points table.
func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label, embedding FROM points`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var label sql.NullString
		var blob []byte
		if err := rows.Scan(&id, &label, &blob); err != nil {
			return err
		}
		vec, err := vector.DecodeVector(blob)
		if err != nil {
			return fmt.Errorf("store: point %q: %w", id, err)
		}
		point := &vector.Point{ID: id, Label: label.String, Vector: vec}
		s.points[id] = point
		s.tree.Add(point)
	}
	return rows.Err()
}

// AddPoints inserts points into the table and the index, returning their
// IDs. Every point must carry a non-empty, previously unused ID.
func (s *Store) AddPoints(ctx context.Context, points []*vector.Point) ([]string, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p.ID == "" {
			return nil, fmt.Errorf("store: point ID must be set")
		}
		if _, ok := s.points[p.ID]; ok {
			return nil, fmt.Errorf("store: duplicate point ID %q", p.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO points(id, label, embedding) VALUES(?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(points))
	for _, p := range points {
		blob, err := vector.EncodeVector(p.Vector)
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Label, blob); err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for _, p := range points {
		s.points[p.ID] = p
		s.tree.Add(p)
	}
	return ids, nil
}

// Remove deletes the point with the given ID from both the table and the
// index, reporting whether it was present.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("store: Remove called with empty id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	point, ok := s.points[id]
	if !ok {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM points WHERE id = ?`, id); err != nil {
		return false, err
	}
	delete(s.points, id)
	s.tree.Remove(point)
	return true, nil
}

// Nearest returns up to k points closest to the query vector, ordered by
// ascending Euclidean distance.
func (s *Store) Nearest(query []float32, k int) []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.tree.NearestByLimit(&vector.Point{Vector: query}, k))
}

// NearestWithin returns every point within radius of the query vector,
// ordered by ascending Euclidean distance.
func (s *Store) NearestWithin(query []float32, radius float64) []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.tree.NearestByRange(&vector.Point{Vector: query}, radius))
}

func (s *Store) collect(q *mtree.Query[*vector.Point]) []Match {
	var out []Match
	for it := q.Iterator(); it.Next(); {
		r := it.Item()
		out = append(out, Match{Point: r.Data, Distance: r.Distance})
	}
	return out
}

// Count returns the number of stored points.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Size()
}
