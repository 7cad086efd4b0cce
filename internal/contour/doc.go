// Package contour models silhouette boundaries and the sources that produce
// them.
//
// A Contour is a closed polygon in pixel coordinates with derived geometry:
// perimeter, area, spatial moments, moment centre, upright bounding box and
// a Douglas-Peucker approximation at a tolerance proportional to the
// perimeter. Planar computations are delegated to github.com/paulmach/orb.
//
// # Sources
//
// A Source turns a binary mask into external contours. Two implementations
// exist:
//
//   - "trace": pure Go region labelling and Moore-neighbour boundary
//     tracing, always available.
//   - "gocv": OpenCV findContours, available when built with -tags gocv.
//
// Sources register themselves by name; use NewSource to select one.
//
// # Degenerate Contours
//
// Contours of one or two points, or of collinear points, enclose no area.
// Their moments are zero and Centroid returns ErrZeroArea, so callers must
// filter them before computing centres.
package contour
