//go:build gocv

package contour

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GoCVSource extracts contours with OpenCV's findContours in external
// retrieval mode with simple chain approximation. It needs OpenCV installed
// and is only built with the gocv build tag.
type GoCVSource struct{}

func init() {
	Register("gocv", func() Source { return GoCVSource{} })
}

// Extract implements Source.
func (GoCVSource) Extract(mask *image.Gray) ([]Contour, error) {
	if mask == nil {
		return nil, nil
	}
	mat, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer mat.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(mat, &binary, 0, 255, gocv.ThresholdBinary)

	found := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		contours = append(contours, New(found.At(i).ToPoints()))
	}
	return contours, nil
}
