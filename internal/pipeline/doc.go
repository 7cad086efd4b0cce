// Package pipeline runs the full recognition of a tangram photo:
//
//  1. resize and crop (imaging.Preprocess)
//  2. threshold to a silhouette mask (imaging.SilhouetteMask)
//  3. trace external contours (contour.Source)
//  4. keep plausible pieces and label them (detection)
//  5. build the feature vector (features.Build)
//  6. match against the reference table (matcher.Match)
//
// Every stage is deterministic; the same photo and options always give the
// same classification.
package pipeline
