package contour

import (
	"errors"
	"image"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// ErrZeroArea is returned when a quantity that divides by the zeroth moment
// is requested for a contour enclosing no area.
var ErrZeroArea = errors.New("contour: zero area")

// Contour is a closed polygon in pixel space.
//
// Points are stored without repeating the first point at the end; the
// closing edge from the last point back to the first is implied. A Contour
// is never mutated after construction, so it is safe to share between
// goroutines.
type Contour struct {
	points []orb.Point
}

// Moments holds the zeroth and first order spatial moments of a contour.
type Moments struct {
	M00 float64 `json:"m00"`
	M10 float64 `json:"m10"`
	M01 float64 `json:"m01"`
}

// New builds a contour from integer pixel coordinates.
func New(points []image.Point) Contour {
	pts := make([]orb.Point, len(points))
	for i, p := range points {
		pts[i] = orb.Point{float64(p.X), float64(p.Y)}
	}
	return Contour{points: trimClosing(pts)}
}

// FromPoints builds a contour from floating point coordinates.
// The slice is copied.
func FromPoints(points []orb.Point) Contour {
	pts := make([]orb.Point, len(points))
	copy(pts, points)
	return Contour{points: trimClosing(pts)}
}

func trimClosing(pts []orb.Point) []orb.Point {
	if len(pts) > 1 && pts[0].Equal(pts[len(pts)-1]) {
		return pts[:len(pts)-1]
	}
	return pts
}

// Len returns the number of stored vertices.
func (c Contour) Len() int {
	return len(c.points)
}

// Points returns a copy of the contour vertices.
func (c Contour) Points() []orb.Point {
	out := make([]orb.Point, len(c.points))
	copy(out, c.points)
	return out
}

// Ring returns the contour as a closed orb ring.
func (c Contour) Ring() orb.Ring {
	if len(c.points) == 0 {
		return nil
	}
	r := make(orb.Ring, 0, len(c.points)+1)
	r = append(r, c.points...)
	return append(r, c.points[0])
}

// Perimeter returns the closed arc length.
func (c Contour) Perimeter() float64 {
	if len(c.points) < 2 {
		return 0
	}
	return planar.Length(c.Ring())
}

// Area returns the absolute polygon area.
func (c Contour) Area() float64 {
	if len(c.points) < 3 {
		return 0
	}
	return math.Abs(planar.Area(c.Ring()))
}

// Moments returns the area moments of the polygon. M00 is the polygon area;
// M10/M00 and M01/M00 give the area-weighted centre.
func (c Contour) Moments() Moments {
	area := c.Area()
	if area == 0 {
		return Moments{}
	}
	center, _ := planar.CentroidArea(c.Ring())
	return Moments{
		M00: area,
		M10: center.X() * area,
		M01: center.Y() * area,
	}
}

// Centroid returns the moment centre truncated to integer pixel
// coordinates. It fails with ErrZeroArea when M00 is zero.
func (c Contour) Centroid() (image.Point, error) {
	m := c.Moments()
	if m.M00 == 0 {
		return image.Point{}, ErrZeroArea
	}
	return image.Point{
		X: int(m.M10 / m.M00),
		Y: int(m.M01 / m.M00),
	}, nil
}

// BoundingBox returns the upright bounding rectangle using the integer
// pixel convention: a contour spanning columns 0..9 is 10 pixels wide.
func (c Contour) BoundingBox() image.Rectangle {
	return boundingBox(c.points)
}

func boundingBox(pts []orb.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	b := orb.MultiPoint(pts).Bound()
	minX := int(math.Floor(b.Min.X()))
	minY := int(math.Floor(b.Min.Y()))
	maxX := int(math.Floor(b.Max.X()))
	maxY := int(math.Floor(b.Max.Y()))
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Approx returns a Douglas-Peucker approximation of the closed contour with
// a tolerance of fraction times the perimeter.
func (c Contour) Approx(fraction float64) Contour {
	return Contour{points: approxClosed(c.points, fraction*c.Perimeter())}
}

// AspectRatio returns bounding box width over height.
func (c Contour) AspectRatio() float64 {
	r := c.BoundingBox()
	if r.Dy() == 0 {
		return 0
	}
	return float64(r.Dx()) / float64(r.Dy())
}

// approxClosed simplifies a closed polygon. The ring is split at two
// mutually distant vertices and each open chain is simplified on its own,
// so the result does not depend on where tracing happened to start.
func approxClosed(pts []orb.Point, epsilon float64) []orb.Point {
	if len(pts) <= 3 {
		out := make([]orb.Point, len(pts))
		copy(out, pts)
		return out
	}

	a := farthestFrom(pts, 0)
	b := farthestFrom(pts, a)
	if a == b {
		return []orb.Point{pts[a]}
	}
	if a > b {
		a, b = b, a
	}

	first := make(orb.LineString, 0, b-a+1)
	first = append(first, pts[a:b+1]...)

	second := make(orb.LineString, 0, len(pts)-b+a+1)
	second = append(second, pts[b:]...)
	second = append(second, pts[:a+1]...)

	dp := simplify.DouglasPeucker(epsilon)
	s1, _ := dp.Simplify(first).(orb.LineString)
	s2, _ := dp.Simplify(second).(orb.LineString)

	out := make([]orb.Point, 0, len(s1)+len(s2))
	if len(s1) > 0 {
		out = append(out, s1[:len(s1)-1]...)
	}
	if len(s2) > 0 {
		out = append(out, s2[:len(s2)-1]...)
	}
	return out
}

func farthestFrom(pts []orb.Point, from int) int {
	best, bestDist := from, -1.0
	for i, p := range pts {
		d := planar.DistanceSquared(pts[from], p)
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
