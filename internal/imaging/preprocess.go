package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Side selects which half of the board a player occupies.
type Side string

const (
	// SideNone keeps the full board minus a fixed margin.
	SideNone Side = ""
	// SideLeft keeps the right half of the frame, where the left-hand
	// player's board appears.
	SideLeft Side = "left"
	// SideRight keeps the left half of the frame.
	SideRight Side = "right"
)

// Fixed margins dropped from a full-board frame, in resized pixels.
const (
	marginBottom = 50
	marginLeft   = 55
	marginRight  = 100
)

// DefaultResizePercent is the scale applied before contour extraction.
// Halving the photo merges the thin gaps between adjacent pieces into one
// silhouette and speeds up tracing.
const DefaultResizePercent = 50

var (
	// ErrImageTooSmall is returned when resizing or cropping leaves no pixels.
	ErrImageTooSmall = errors.New("image too small")

	// ErrUnknownSide is returned by ParseSide for anything but "", "none",
	// "left" or "right".
	ErrUnknownSide = errors.New("unknown side")
)

// ParseSide converts a user supplied side name.
func ParseSide(s string) (Side, error) {
	switch s {
	case "", "none", "full":
		return SideNone, nil
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	}
	return SideNone, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

// PreprocessOptions controls how a photo is prepared for thresholding.
type PreprocessOptions struct {
	// ResizePercent scales both dimensions. Zero means DefaultResizePercent.
	ResizePercent int

	// Crop enables board cropping. Dataset images are already cut to the
	// silhouette and are processed with Crop disabled.
	Crop bool

	// Side picks the half of the board to keep when Crop is set.
	Side Side
}

// Preprocess resizes the photo and crops it to the playing area.
//
// The photo is first scaled by ResizePercent with a box filter. When Crop is
// set, SideLeft keeps the right half of the frame, SideRight keeps the left
// half, and SideNone drops the last 50 rows, the first 55 columns and the
// last 100 columns.
//
// The returned image always has its origin at (0, 0).
func Preprocess(img image.Image, opts PreprocessOptions) (*image.NRGBA, error) {
	percent := opts.ResizePercent
	if percent == 0 {
		percent = DefaultResizePercent
	}
	if percent < 0 {
		return nil, fmt.Errorf("invalid resize percent %d", percent)
	}

	bounds := img.Bounds()
	width := bounds.Dx() * percent / 100
	height := bounds.Dy() * percent / 100
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d at %d%%", ErrImageTooSmall, bounds.Dx(), bounds.Dy(), percent)
	}

	var resized *image.NRGBA
	if percent == 100 {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, width, height, imaging.Box)
	}

	if !opts.Crop {
		return resized, nil
	}

	region, err := cropRegion(width, height, opts.Side)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(resized, region), nil
}

func cropRegion(width, height int, side Side) (image.Rectangle, error) {
	switch side {
	case SideLeft:
		r := image.Rect(width/2, 0, width, height)
		if r.Empty() {
			return r, fmt.Errorf("%w: %dx%d", ErrImageTooSmall, width, height)
		}
		return r, nil
	case SideRight:
		r := image.Rect(0, 0, width/2, height)
		if r.Empty() {
			return r, fmt.Errorf("%w: %dx%d", ErrImageTooSmall, width, height)
		}
		return r, nil
	case SideNone:
		if width <= marginLeft+marginRight || height <= marginBottom {
			return image.Rectangle{}, fmt.Errorf("%w: %dx%d cannot lose the board margin", ErrImageTooSmall, width, height)
		}
		return image.Rect(marginLeft, 0, width-marginRight, height-marginBottom), nil
	}
	return image.Rectangle{}, fmt.Errorf("%w: %q", ErrUnknownSide, string(side))
}
