package matcher

import (
	"encoding/json"
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/tangram-classifier/internal/features"
	"github.com/ironsheep/tangram-classifier/internal/reference"
)

var (
	// ErrEmptyTable is returned when matching against a table without rows.
	ErrEmptyTable = errors.New("matcher: empty reference table")

	// ErrNoOverlap is returned when no reference row shares a feature with
	// the query.
	ErrNoOverlap = errors.New("matcher: no reference row shares a feature with the query")
)

// Score is the comparison of the query with one reference row.
type Score struct {
	// Row is the position of the row in the table.
	Row int `json:"row"`

	// Label is the row's class.
	Label string `json:"label"`

	// Distance is the Euclidean distance over the shared features. It is
	// +Inf when the row shares no feature with the query.
	Distance float64 `json:"distance"`

	// Confidence is the row's share of the inverse distances.
	Confidence float64 `json:"confidence"`

	// Overlap is the number of features the distance was computed over.
	Overlap int `json:"overlap"`
}

// MarshalJSON encodes an infinite distance as null.
func (s Score) MarshalJSON() ([]byte, error) {
	type plain Score
	out := struct {
		plain
		Distance *float64 `json:"distance"`
	}{plain: plain(s)}
	if !math.IsInf(s.Distance, 0) && !math.IsNaN(s.Distance) {
		d := s.Distance
		out.Distance = &d
	}
	return json.Marshal(out)
}

// Result is the outcome of matching one query.
type Result struct {
	// Label is the class of the nearest row.
	Label string `json:"label"`

	// Best is the position of the nearest row.
	Best int `json:"best"`

	// Scores holds one entry per table row, in table order.
	Scores []Score `json:"scores"`
}

// Distances returns the per-row distances in table order.
func (r *Result) Distances() []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.Distance
	}
	return out
}

// Confidences returns the per-row confidences in table order.
func (r *Result) Confidences() []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.Confidence
	}
	return out
}

// Ranked returns the scores ordered from nearest to farthest. Ties keep
// table order.
func (r *Result) Ranked() []Score {
	out := make([]Score, len(r.Scores))
	copy(out, r.Scores)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Distance returns the Euclidean distance between row and query over the
// keys both contain, and the number of such keys. Query keys missing from
// the row are skipped, as are row keys missing from the query.
func Distance(row, query features.Vector) (float64, int) {
	var a, b []float64
	for _, k := range query.Keys() {
		rv, ok := row[k]
		if !ok {
			continue
		}
		a = append(a, rv)
		b = append(b, query[k])
	}
	if len(a) == 0 {
		return math.Inf(1), 0
	}
	return floats.Distance(a, b, 2), len(a)
}

// Match finds the reference row nearest to the query.
//
// Parameters:
//   - table: The reference rows.
//   - query: The feature vector of the photo to recognise.
//
// Returns:
//   - *Result: The nearest label and a score for every row.
//   - error: ErrEmptyTable for a table without rows, ErrNoOverlap when no
//     row shares a feature with the query.
//
// # Confidence
//
// Each row's confidence is (1/d) / Σ(1/d) over all rows, so confidences sum
// to 1. A row at distance zero is an exact match: exact rows share the
// whole confidence equally and every other row gets 0. Rows without shared
// features get 0.
func Match(table *reference.Table, query features.Vector) (*Result, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}

	result := &Result{Best: -1, Scores: make([]Score, len(table.Rows))}
	for i, row := range table.Rows {
		d, n := Distance(row.Vector, query)
		result.Scores[i] = Score{Row: i, Label: row.Label, Distance: d, Overlap: n}
		if n > 0 && (result.Best < 0 || d < result.Scores[result.Best].Distance) {
			result.Best = i
		}
	}
	if result.Best < 0 {
		return nil, ErrNoOverlap
	}
	result.Label = result.Scores[result.Best].Label

	assignConfidence(result.Scores)
	return result, nil
}

func assignConfidence(scores []Score) {
	var exact []int
	for i, s := range scores {
		if s.Overlap > 0 && s.Distance == 0 {
			exact = append(exact, i)
		}
	}
	if len(exact) > 0 {
		share := 1 / float64(len(exact))
		for _, i := range exact {
			scores[i].Confidence = share
		}
		return
	}

	inverse := make([]float64, len(scores))
	for i, s := range scores {
		if s.Overlap > 0 {
			inverse[i] = 1 / s.Distance
		}
	}
	total := floats.Sum(inverse)
	if total == 0 {
		return
	}
	floats.Scale(1/total, inverse)
	for i := range scores {
		scores[i].Confidence = inverse[i]
	}
}
