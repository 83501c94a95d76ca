// Package dataset reads point datasets from CSV and feeds them to the
// store. The expected input is a header-bearing CSV of
// (order, label, x, y) rows; the package can also write the textual
// label=(x,y) listing of a dataset.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/viant/mtree/store"
	"github.com/viant/mtree/vector"
)

// Record is one row of a points CSV: insertion order, a label, and 2-D
// coordinates.
type Record struct {
	Order int
	Label string
	X, Y  float64
}

// Point converts the record into an indexable vector point keyed by its
// insertion order.
func (r Record) Point() *vector.Point {
	return &vector.Point{
		ID:     strconv.Itoa(r.Order),
		Label:  r.Label,
		Vector: []float32{float32(r.X), float32(r.Y)},
	}
}

// Read parses a header-bearing CSV of (order, label, x, y) rows. The header
// line is skipped; every remaining row must have four fields.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset: missing header row")
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		order, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: invalid order %q", line, row[0])
		}
		x, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: invalid x %q", line, row[2])
		}
		y, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: invalid y %q", line, row[3])
		}
		records = append(records, Record{Order: order, Label: row[1], X: x, Y: y})
	}
	return records, nil
}

// Load inserts the records into the store in CSV order.
func Load(ctx context.Context, s *store.Store, records []Record) error {
	points := make([]*vector.Point, len(records))
	for i, r := range records {
		points[i] = r.Point()
	}
	_, err := s.AddPoints(ctx, points)
	return err
}

// WriteListing writes a label=(x,y) line per record.
func WriteListing(w io.Writer, records []Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s=(%v,%v)\n", r.Label, r.X, r.Y); err != nil {
			return err
		}
	}
	return nil
}
