package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
)

// DefaultSensitivity is the brightest gray level still counted as part of
// the dark silhouette.
const DefaultSensitivity = 50

// SilhouetteMask isolates the dark tangram silhouette.
//
// The image is converted to gray with ITU-R BT.601 weights. Pixels brighter
// than sensitivity are treated as background and forced to black; every
// remaining non-zero pixel becomes foreground (255). Pure black pixels stay
// background, which keeps letterboxing and crop borders out of the mask.
func SilhouetteMask(img image.Image, sensitivity uint8) *image.Gray {
	gray := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	bounds := gray.Bounds()

	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// effect returns RGBA with the same level in every channel.
			v := gray.RGBAAt(x, y).R
			if v > 0 && v <= sensitivity {
				mask.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// Area returns the number of pixels of an image, the denominator of the
// noise filter applied to contour areas.
func Area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}
