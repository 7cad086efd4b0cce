package reference

import (
	"github.com/ironsheep/tangram-classifier/internal/features"
)

// Row is one labeled reference vector.
type Row struct {
	// Index is the row number as stored in the source file.
	Index int `json:"index"`

	// Label is the silhouette class, e.g. "boat".
	Label string `json:"classe"`

	// Vector holds the features present in the row. Missing cells are
	// absent keys.
	Vector features.Vector `json:"vector"`
}

// Table is an ordered set of reference rows. A Table is not modified after
// it has been loaded, so it can be shared between goroutines.
type Table struct {
	Rows []Row `json:"rows"`
}

// Append adds a row numbered after the last one.
func (t *Table) Append(label string, v features.Vector) {
	index := 0
	if n := len(t.Rows); n > 0 {
		index = t.Rows[n-1].Index + 1
	}
	t.Rows = append(t.Rows, Row{Index: index, Label: label, Vector: v.Clone()})
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Labels returns the distinct labels in order of first appearance.
func (t *Table) Labels() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Label] {
			seen[r.Label] = true
			out = append(out, r.Label)
		}
	}
	return out
}

// Coverage returns for every feature key the number of rows that have it.
func (t *Table) Coverage() map[string]int {
	out := make(map[string]int)
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		for k := range r.Vector {
			out[k]++
		}
	}
	return out
}

// Columns returns the feature keys used by the table: the canonical
// columns first, followed by any extra keys found in the rows.
func (t *Table) Columns() []string {
	all := features.Vector{}
	for _, c := range features.Columns {
		all[c] = 0
	}
	if t != nil {
		for _, r := range t.Rows {
			for k := range r.Vector {
				all[k] = 0
			}
		}
	}
	return all.Keys()
}
