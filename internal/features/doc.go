// Package features turns labeled tangram pieces into the sparse feature
// vector used to recognise a silhouette.
//
// A feature is the distance between the centres of two pieces, expressed
// in unit-tangram lengths by scaling with the perimeter of a reference
// piece. Features are grouped in buckets, one per pair of categories, and
// keyed by bucket name and rank, e.g. "smallTriangle-squart2" is the second
// smallest distance between a small triangle and the square.
//
// Columns lists the keys a complete set produces. A partial detection
// produces a subset of them; a surplus of pieces can produce keys beyond
// them.
package features
