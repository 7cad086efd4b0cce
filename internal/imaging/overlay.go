package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/tangram-classifier/internal/contour"
)

// OverlayShape is one filled polygon of an overlay.
type OverlayShape struct {
	Contour contour.Contour
	Label   string
	Center  image.Point

	// Caption is drawn next to the centre marker when set.
	Caption string
}

// Palette returns n visually distinct colours spread evenly around the HCL
// hue circle.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		h := 360 * float64(i) / math.Max(float64(n), 1)
		out[i] = colorful.Hcl(h, 0.55, 0.7).Clamped()
	}
	return out
}

// RenderOverlay paints the shapes filled on a black canvas of the given
// size, one colour per label, with a white marker on each shape's centre.
// Labels are coloured in the order given by labels; labels not listed are
// assigned the remaining colours in order of first appearance.
func RenderOverlay(width, height int, shapes []OverlayShape, labels []string) *image.NRGBA {
	canvas := imaging.New(width, height, color.Black)

	index := make(map[string]int, len(labels))
	for _, l := range labels {
		if _, ok := index[l]; !ok {
			index[l] = len(index)
		}
	}
	for _, s := range shapes {
		if _, ok := index[s.Label]; !ok {
			index[s.Label] = len(index)
		}
	}
	palette := Palette(len(index))

	for _, s := range shapes {
		fillRing(canvas, s.Contour.Ring(), palette[index[s.Label]])
	}
	for _, s := range shapes {
		drawMarker(canvas, s.Center, color.White)
		if s.Caption != "" {
			drawCaption(canvas, s.Center.Add(image.Pt(4, 4)), s.Caption, color.White)
		}
	}
	return canvas
}

// SaveOverlay writes an overlay image; the format follows the extension.
func SaveOverlay(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// fillRing colours every pixel whose centre lies inside the ring.
func fillRing(dst *image.NRGBA, ring orb.Ring, c color.Color) {
	if len(ring) < 4 {
		return
	}
	b := ring.Bound()
	area := dst.Bounds()
	minX := max(int(math.Floor(b.Min.X())), area.Min.X)
	minY := max(int(math.Floor(b.Min.Y())), area.Min.Y)
	maxX := min(int(math.Ceil(b.Max.X())), area.Max.X-1)
	maxY := min(int(math.Ceil(b.Max.Y())), area.Max.Y-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if planar.RingContains(ring, orb.Point{float64(x), float64(y)}) {
				dst.Set(x, y, c)
			}
		}
	}
}

func drawMarker(dst *image.NRGBA, p image.Point, c color.Color) {
	const radius = 2
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			q := image.Pt(p.X+dx, p.Y+dy)
			if q.In(dst.Bounds()) {
				dst.Set(q.X, q.Y, c)
			}
		}
	}
}

// drawCaption writes text with its baseline starting at p.
func drawCaption(dst *image.NRGBA, p image.Point, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(p.X, p.Y),
	}
	d.DrawString(text)
}
