// Package detection recognises tangram pieces among the contours of a
// silhouette.
//
// Recognition happens in two steps:
//
//  1. ClassifyShapes filters noise and keeps the contours whose polygon
//     approximation is a triangle or a plausible quadrilateral.
//  2. Disambiguate labels each kept contour with a Category: squares and
//     parallelograms by the aspect ratio of their approximation, triangles
//     by their area relative to a reference piece.
//
// # Coordinate System
//
// Centres and bounds use the standard image convention with the origin
// (0, 0) at the top-left corner, X increasing rightward and Y increasing
// downward. Centres are truncated to integer pixels.
//
// # Determinism
//
// Labels depend only on the set of contours, never on the order in which a
// contour source reported them. Pieces are returned grouped by category and
// sorted by centre and perimeter so that later feature extraction sees the
// same sequence for the same photo.
//
// # Limitations
//
// Sizing assumes the photo shows a single tangram set seen from above.
// Pieces touching each other are traced as one contour and are usually
// dropped because their approximation has too many vertices.
package detection
