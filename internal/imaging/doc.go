// Package imaging prepares tangram photos for contour extraction.
//
// A photo goes through three steps before its pieces can be traced:
//
//  1. Decode, with EXIF orientation applied (Open, ImageCache).
//  2. Resize and crop to the playing area (Preprocess).
//  3. Threshold to a binary silhouette mask (SilhouetteMask).
//
// The package also renders classified pieces back onto a canvas for
// inspection (RenderOverlay, SaveOverlay).
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Images returned by
// Preprocess and SilhouetteMask always have their origin at (0,0), so
// contour coordinates can be used directly as pixel indices.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is stateless
// and allocates its own output.
package imaging
