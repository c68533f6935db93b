// Package rowstore persists records as ordered rows of string cells.
//
// The first cell of every row is the row identifier. Implementations keep
// rows in insertion order and never reorder them.
package rowstore

import (
	"context"
	"strings"
)

// Row is an ordered tuple of cell values in Layout column order.
type Row []string

// ID returns the trimmed identifier cell, or "" for an empty row.
func (r Row) ID() string {
	if len(r) == 0 {
		return ""
	}
	return strings.TrimSpace(r[0])
}

// IsBlank reports whether every cell is empty after trimming.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Store is the capability the repository needs from a tabular backend.
type Store interface {
	// ReadAllRows returns every data row in store order.
	ReadAllRows(ctx context.Context) ([]Row, error)
	AppendRow(ctx context.Context, row Row) error
	// UpdateRow replaces the row whose identifier equals id.
	// It returns errors.ErrNotFound when no row matches.
	UpdateRow(ctx context.Context, id string, row Row) error
}

// BatchUpdater is implemented by stores that can replace several rows
// in a single write. Unknown ids are skipped.
type BatchUpdater interface {
	UpdateRows(ctx context.Context, rows map[string]Row) error
}

// UpdateRows uses the store's batch write when it has one and falls back
// to one UpdateRow per id otherwise.
func UpdateRows(ctx context.Context, s Store, rows map[string]Row) error {
	if len(rows) == 0 {
		return nil
	}
	if b, ok := s.(BatchUpdater); ok {
		return b.UpdateRows(ctx, rows)
	}
	for id, row := range rows {
		if err := s.UpdateRow(ctx, id, row); err != nil {
			return err
		}
	}
	return nil
}

// Layout describes the header a store writes for its rows.
type Layout struct {
	Columns []string
	// Aliases maps legacy header names to current column names.
	Aliases map[string]string
	// Defaults fills columns that a legacy header lacks.
	Defaults map[string]string
}

// Width is the number of columns in the layout.
func (l Layout) Width() int {
	return len(l.Columns)
}

// Migrate maps a row written under header from onto the current columns.
func (l Layout) Migrate(from []string, row []string) Row {
	index := make(map[string]int, len(from))
	for i, name := range from {
		name = strings.TrimSpace(name)
		if current, ok := l.Aliases[name]; ok {
			name = current
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	out := make(Row, len(l.Columns))
	for i, col := range l.Columns {
		if j, ok := index[col]; ok {
			if j < len(row) {
				out[i] = row[j]
			}
			continue
		}
		out[i] = l.Defaults[col]
	}
	return out
}

// Recognises reports whether header can be migrated to the layout:
// it starts with the identifier column and every name is known.
func (l Layout) Recognises(header []string) bool {
	if len(header) == 0 || len(l.Columns) == 0 || strings.TrimSpace(header[0]) != l.Columns[0] {
		return false
	}
	known := make(map[string]bool, len(l.Columns)+len(l.Aliases))
	for _, c := range l.Columns {
		known[c] = true
	}
	for alias := range l.Aliases {
		known[alias] = true
	}
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h != "" && !known[h] {
			return false
		}
	}
	return true
}

// Matches reports whether header is exactly the current layout.
func (l Layout) Matches(header []string) bool {
	if len(header) != len(l.Columns) {
		return false
	}
	for i := range header {
		if strings.TrimSpace(header[i]) != l.Columns[i] {
			return false
		}
	}
	return true
}
