package features

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/ironsheep/tangram-classifier/internal/detection"
)

// Vector maps feature keys to normalized distances. Keys absent from the
// map were not measured.
type Vector map[string]float64

// Keys returns the keys of v, canonical columns first in column order and
// any other keys after them in lexical order.
func (v Vector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, iok := columnIndex[keys[i]]
		cj, jok := columnIndex[keys[j]]
		switch {
		case iok && jok:
			return ci < cj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Features is the feature vector of one silhouette together with how it
// was scaled.
type Features struct {
	// Vector holds the normalized distances.
	Vector Vector `json:"vector"`

	// Reference is the category whose first piece fixed the scale. Unknown
	// when no piece was available.
	Reference detection.Category `json:"reference"`

	// ReferencePerimeter is the measured perimeter of the reference piece.
	ReferencePerimeter float64 `json:"reference_perimeter"`

	// LowConfidence is set when no reference piece existed and every value
	// is the placeholder 1.
	LowConfidence bool `json:"low_confidence"`
}

// Build computes the feature vector of a labeled silhouette.
//
// Parameters:
//   - pieces: The output of detection.Disambiguate.
//
// Returns:
//   - *Features: The sparse vector. Buckets without pieces emit no keys.
//
// # Algorithm
//
//  1. For every bucket (A, B) and every pair of pieces i of A and j of B,
//     skipping i == j when A == B, the Euclidean distance between centres
//     is rounded to 2 decimals.
//  2. Each distance d becomes round(d / P × K, 2), where P is the measured
//     perimeter of the first piece of the reference category and K its
//     unit-tangram perimeter. The reference is the first category present
//     among square, parallelogram, small, middle and big triangle. Without
//     any piece every value is 1 and LowConfidence is set.
//  3. Each bucket is sorted ascending. For the two buckets pairing a
//     category with itself, the value at index 1 is dropped when the bucket
//     holds more than one value.
//  4. The remaining values are emitted as bucket name plus 1-based rank.
func Build(pieces *detection.PiecesResult) *Features {
	f := &Features{Vector: Vector{}}

	centers := make(map[detection.Category][]detection.Point, len(detection.Categories))
	for _, c := range detection.Categories {
		centers[c] = pieces.Centers(c)
	}

	for _, c := range referencePriority {
		if perims := pieces.Perimeters(c); len(perims) > 0 && perims[0] > 0 {
			f.Reference = c
			f.ReferencePerimeter = perims[0]
			break
		}
	}
	f.LowConfidence = f.ReferencePerimeter == 0
	unit := unitPerimeter[f.Reference]

	for _, b := range Buckets {
		values := bucketDistances(centers[b.A], centers[b.B], b.dedup())
		for i := range values {
			if f.LowConfidence {
				values[i] = 1
				continue
			}
			values[i] = round2(values[i] / f.ReferencePerimeter * unit)
		}
		for rank, v := range finalize(values, b.dedup()) {
			f.Vector[b.Key(rank+1)] = v
		}
	}
	return f
}

// bucketDistances returns the rounded distances between every piece of a
// and every piece of b. With same set, a piece is not compared with itself.
func bucketDistances(a, b []detection.Point, same bool) []float64 {
	var out []float64
	for i, p := range a {
		for j, q := range b {
			if same && i == j {
				continue
			}
			out = append(out, Distance(p, q))
		}
	}
	return out
}

// finalize sorts a bucket and drops the duplicated second value of a bucket
// that pairs a category with itself.
func finalize(values []float64, dedup bool) []float64 {
	sort.Float64s(values)
	if dedup && len(values) > 1 {
		values = append(values[:1], values[2:]...)
	}
	return values
}

// Distance returns the Euclidean distance between two centres rounded to
// 2 decimals.
func Distance(p, q detection.Point) float64 {
	return round2(planar.Distance(toOrb(p), toOrb(q)))
}

func toOrb(p detection.Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

// round2 rounds to 2 decimals, halves away from zero. Python's round rounds
// halves to even, so exact half-cent values can differ by 0.01 from tables
// built with it.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
