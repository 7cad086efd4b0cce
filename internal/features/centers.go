package features

import (
	"github.com/ironsheep/tangram-classifier/internal/detection"
)

// CategoryCenters returns the mean centre of each category that has at
// least one piece, truncated to integer pixels.
func CategoryCenters(pieces *detection.PiecesResult) map[detection.Category]detection.Point {
	out := make(map[detection.Category]detection.Point)
	for _, c := range detection.Categories {
		centers := pieces.Centers(c)
		if len(centers) == 0 {
			continue
		}
		var sx, sy int
		for _, p := range centers {
			sx += p.X
			sy += p.Y
		}
		out[c] = detection.Point{X: sx / len(centers), Y: sy / len(centers)}
	}
	return out
}

// CenterDistances returns the raw distance between the mean centres of every
// pair of distinct categories, keyed by bucket name in canonical
// orientation. Categories without pieces are skipped.
func CenterDistances(centers map[detection.Category]detection.Point) map[string]float64 {
	out := make(map[string]float64)
	for i, a := range detection.Categories {
		pa, ok := centers[a]
		if !ok {
			continue
		}
		for _, b := range detection.Categories[i+1:] {
			pb, ok := centers[b]
			if !ok {
				continue
			}
			out[Bucket{A: a, B: b}.Name()] = Distance(pa, pb)
		}
	}
	return out
}
