package detection

import (
	"sort"

	"github.com/ironsheep/tangram-classifier/internal/contour"
)

// Triangle size ladder thresholds.
const (
	// Triangle area over square area.
	squareSmallRatio  = 0.5
	squareMiddleRatio = 1.15

	// Triangle area over parallelogram area.
	parallelogramSmallRatio  = 0.6
	parallelogramMiddleRatio = 1.5

	// Largest triangle area over triangle area.
	spreadMinRatio    = 5.0
	spreadSmallRatio  = 5.0
	spreadMiddleRatio = 2.0
)

// Piece is a contour labeled with its tangram category.
type Piece struct {
	// Category is the piece kind. Unknown for triangles whose size could
	// not be decided.
	Category Category `json:"category"`

	// Center is the moment centre, truncated to integer pixels.
	Center Point `json:"center"`

	// Perimeter is the closed arc length of the traced contour.
	Perimeter float64 `json:"perimeter"`

	// Area is the absolute polygon area of the traced contour.
	Area float64 `json:"area"`

	// Bounds is the bounding box of the traced contour.
	Bounds Bounds `json:"bounds"`

	// Contour is the traced boundary.
	Contour contour.Contour `json:"-"`
}

// PiecesResult is the outcome of labeling one silhouette.
type PiecesResult struct {
	// Pieces holds the labeled pieces, grouped by category in the order of
	// Categories and sorted by centre (y, then x) and perimeter inside each
	// category.
	Pieces []Piece `json:"pieces"`

	// Unlabeled holds triangles left without a size because the area
	// spread between the largest and smallest triangle was too small.
	Unlabeled []Piece `json:"unlabeled,omitempty"`

	// Degenerate counts contours dropped for enclosing no area.
	Degenerate int `json:"degenerate"`

	// Dropped counts contours that were neither a triangle nor a plausible
	// quadrilateral.
	Dropped int `json:"dropped"`

	// TrianglesAmbiguous is set when triangles were found but none could be
	// sized.
	TrianglesAmbiguous bool `json:"triangles_ambiguous"`
}

// Of returns the pieces of one category.
func (r *PiecesResult) Of(c Category) []Piece {
	if c == Unknown {
		return r.Unlabeled
	}
	var out []Piece
	for _, p := range r.Pieces {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Centers returns the piece centres of one category, in piece order.
func (r *PiecesResult) Centers(c Category) []Point {
	pieces := r.Of(c)
	out := make([]Point, len(pieces))
	for i, p := range pieces {
		out[i] = p.Center
	}
	return out
}

// Perimeters returns the piece perimeters of one category, in piece order.
func (r *PiecesResult) Perimeters(c Category) []float64 {
	pieces := r.Of(c)
	out := make([]float64, len(pieces))
	for i, p := range pieces {
		out[i] = p.Perimeter
	}
	return out
}

// Counts returns the number of pieces found per category.
func (r *PiecesResult) Counts() map[Category]int {
	out := make(map[Category]int, len(Categories))
	for _, p := range r.Pieces {
		out[p.Category]++
	}
	return out
}

// Disambiguate labels accepted contours with their tangram category.
//
// Parameters:
//   - contours: Contours accepted by ClassifyShapes, in any order.
//
// Returns:
//   - *PiecesResult: Labeled pieces. The result does not depend on the order
//     of the input contours.
//
// # Algorithm
//
//  1. Contours with zero area are counted as degenerate and skipped.
//  2. Each contour is approximated at ApproxFraction of its perimeter:
//     3 vertices make a triangle; 4 vertices with a square aspect make a
//     square; 4 vertices with a parallelogram aspect make a parallelogram;
//     anything else is dropped.
//  3. Triangles are sized against a reference piece:
//     - with exactly one square, by area over the square's area
//     (below 0.5 small, below 1.15 middle, otherwise big);
//     - otherwise with exactly one parallelogram, by area over its area
//     (below 0.6 small, below 1.5 middle, otherwise big);
//     - otherwise by the largest triangle: when the largest is more than 5
//     times the smallest, a triangle more than 5 times smaller than the
//     largest is small, more than 2 times smaller is middle, otherwise big.
//     When the spread is 5 or less the triangles stay unlabeled and
//     TrianglesAmbiguous is set.
//  4. Every square and parallelogram is kept as its own piece.
func Disambiguate(contours []contour.Contour) *PiecesResult {
	result := &PiecesResult{}

	var triangles, squares, parallelograms []Piece
	for _, c := range contours {
		center, err := c.Centroid()
		if err != nil {
			result.Degenerate++
			continue
		}
		p := newPiece(c, Point{X: center.X, Y: center.Y})

		s := Describe(c)
		switch {
		case s.Vertices == 3:
			triangles = append(triangles, p)
		case s.Vertices == 4 && IsSquareAspect(s.Aspect):
			p.Category = Square
			squares = append(squares, p)
		case s.Vertices == 4 && IsParallelogramAspect(s.Aspect):
			p.Category = Parallelogram
			parallelograms = append(parallelograms, p)
		default:
			result.Dropped++
		}
	}

	if len(triangles) > 0 {
		size := triangleSizer(triangles, squares, parallelograms)
		for _, t := range triangles {
			t.Category = size(t.Area)
			if t.Category == Unknown {
				result.Unlabeled = append(result.Unlabeled, t)
				continue
			}
			result.Pieces = append(result.Pieces, t)
		}
		result.TrianglesAmbiguous = len(result.Unlabeled) > 0
	}
	result.Pieces = append(result.Pieces, squares...)
	result.Pieces = append(result.Pieces, parallelograms...)

	sortPieces(result.Pieces)
	sortPieces(result.Unlabeled)
	return result
}

// triangleSizer picks the sizing rule for a set of triangles and returns it
// as a function of triangle area.
func triangleSizer(triangles, squares, parallelograms []Piece) func(area float64) Category {
	switch {
	case len(squares) == 1:
		ref := squares[0].Area
		return func(area float64) Category {
			return byRatio(area/ref, squareSmallRatio, squareMiddleRatio)
		}
	case len(parallelograms) == 1:
		ref := parallelograms[0].Area
		return func(area float64) Category {
			return byRatio(area/ref, parallelogramSmallRatio, parallelogramMiddleRatio)
		}
	}

	minArea, maxArea := triangles[0].Area, triangles[0].Area
	for _, t := range triangles[1:] {
		minArea = min(minArea, t.Area)
		maxArea = max(maxArea, t.Area)
	}
	if maxArea/minArea <= spreadMinRatio {
		return func(float64) Category { return Unknown }
	}
	return func(area float64) Category {
		switch r := maxArea / area; {
		case r > spreadSmallRatio:
			return SmallTriangle
		case r > spreadMiddleRatio:
			return MiddleTriangle
		}
		return BigTriangle
	}
}

func byRatio(r, small, middle float64) Category {
	switch {
	case r < small:
		return SmallTriangle
	case r < middle:
		return MiddleTriangle
	}
	return BigTriangle
}

func newPiece(c contour.Contour, center Point) Piece {
	box := c.BoundingBox()
	return Piece{
		Center:    center,
		Perimeter: c.Perimeter(),
		Area:      c.Area(),
		Bounds:    Bounds{X1: box.Min.X, Y1: box.Min.Y, X2: box.Max.X, Y2: box.Max.Y},
		Contour:   c,
	}
}

func categoryRank(c Category) int {
	for i, k := range Categories {
		if k == c {
			return i
		}
	}
	return len(Categories)
}

// sortPieces orders pieces by category, then centre (y, x), then perimeter.
func sortPieces(pieces []Piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		a, b := pieces[i], pieces[j]
		if ra, rb := categoryRank(a.Category), categoryRank(b.Category); ra != rb {
			return ra < rb
		}
		if a.Center.Y != b.Center.Y {
			return a.Center.Y < b.Center.Y
		}
		if a.Center.X != b.Center.X {
			return a.Center.X < b.Center.X
		}
		return a.Perimeter < b.Perimeter
	})
}
