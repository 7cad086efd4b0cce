package detection

import (
	"github.com/ironsheep/tangram-classifier/internal/contour"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive).
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Shape thresholds. Aspect ratios are bounding box width over height of the
// polygon approximation, and every interval is closed.
const (
	// ApproxFraction is the Douglas-Peucker tolerance as a fraction of the
	// contour perimeter.
	ApproxFraction = 0.02

	// MinAreaRatio is the contour area over image area at or below which a
	// contour is treated as noise.
	MinAreaRatio = 0.0001

	MinQuadAspect = 0.33
	MaxQuadAspect = 3.0

	MinSquareAspect = 0.9
	MaxSquareAspect = 1.1

	MinParallelogramAspect = 0.3
	MaxParallelogramAspect = 3.3
)

// Shape is the polygon approximation of a contour together with the
// measurements the classifier looks at.
type Shape struct {
	// Contour is the traced boundary.
	Contour contour.Contour

	// Approx is the approximation at ApproxFraction of the perimeter.
	Approx contour.Contour

	// Vertices is the number of vertices of Approx.
	Vertices int

	// Aspect is the bounding box width over height of Approx. Only
	// meaningful for quadrilaterals.
	Aspect float64
}

// Describe approximates a contour and measures its approximation.
func Describe(c contour.Contour) Shape {
	approx := c.Approx(ApproxFraction)
	return Shape{
		Contour:  c,
		Approx:   approx,
		Vertices: approx.Len(),
		Aspect:   approx.AspectRatio(),
	}
}

// IsTangramQuad reports whether a quadrilateral aspect is plausible for a
// tangram square or parallelogram.
func IsTangramQuad(aspect float64) bool {
	return aspect >= MinQuadAspect && aspect <= MaxQuadAspect
}

// IsSquareAspect reports whether a quadrilateral is squat enough to be the
// square.
func IsSquareAspect(aspect float64) bool {
	return aspect >= MinSquareAspect && aspect <= MaxSquareAspect
}

// IsParallelogramAspect reports whether a quadrilateral that is not the
// square can be the parallelogram.
func IsParallelogramAspect(aspect float64) bool {
	return aspect >= MinParallelogramAspect && aspect <= MaxParallelogramAspect
}

// ClassifyShapes keeps the contours that can be tangram pieces.
//
// Parameters:
//   - contours: External contours of the silhouette mask.
//   - width, height: Dimensions of the image the contours were traced on.
//
// A contour is kept when its area is more than MinAreaRatio of the image
// area and its approximation is either a triangle or a quadrilateral whose
// aspect ratio lies in [MinQuadAspect, MaxQuadAspect]. Every other vertex
// count is discarded. The input order is preserved.
func ClassifyShapes(contours []contour.Contour, width, height int) []contour.Contour {
	imgArea := float64(width * height)
	if imgArea <= 0 {
		return nil
	}

	accepted := make([]contour.Contour, 0, len(contours))
	for _, c := range contours {
		if c.Area()/imgArea <= MinAreaRatio {
			continue
		}
		s := Describe(c)
		switch {
		case s.Vertices == 3:
			accepted = append(accepted, c)
		case s.Vertices == 4 && IsTangramQuad(s.Aspect):
			accepted = append(accepted, c)
		}
	}
	return accepted
}
