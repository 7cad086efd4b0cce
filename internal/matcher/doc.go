// Package matcher recognises a silhouette by nearest-neighbour search over
// a reference table.
//
// Query and reference vectors are sparse: a photo with a piece missing has
// fewer features than a complete reference row, and reference rows may lack
// features too. Distances are therefore computed only over the features
// present in both vectors.
package matcher
