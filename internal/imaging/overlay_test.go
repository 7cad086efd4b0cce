package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/ironsheep/tangram-classifier/internal/contour"
)

func TestPalette(t *testing.T) {
	p := Palette(5)
	if len(p) != 5 {
		t.Fatalf("Palette length: got %d, want 5", len(p))
	}
	seen := make(map[color.RGBA]bool)
	for _, c := range p {
		r, g, b, _ := c.RGBA()
		key := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
		if seen[key] {
			t.Errorf("duplicate palette colour %v", key)
		}
		seen[key] = true
	}
}

func TestRenderOverlay(t *testing.T) {
	square := contour.New([]image.Point{{10, 10}, {30, 10}, {30, 30}, {10, 30}})
	triangle := contour.New([]image.Point{{50, 10}, {70, 10}, {50, 30}})

	shapes := []OverlayShape{
		{Contour: square, Label: "squart", Center: image.Pt(20, 20)},
		{Contour: triangle, Label: "smallTriangle", Center: image.Pt(56, 16)},
	}
	out := RenderOverlay(80, 40, shapes, []string{"smallTriangle", "squart"})

	if b := out.Bounds(); b.Dx() != 80 || b.Dy() != 40 {
		t.Fatalf("overlay size: got %dx%d, want 80x40", b.Dx(), b.Dy())
	}

	if r, g, b, _ := out.At(0, 0).RGBA(); r|g|b != 0 {
		t.Error("background should stay black")
	}
	if r, g, b, _ := out.At(20, 20).RGBA(); r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Error("centre marker should be white")
	}

	sq := out.NRGBAAt(12, 25)
	tri := out.NRGBAAt(52, 12)
	if sq == (color.NRGBA{0, 0, 0, 255}) || tri == (color.NRGBA{0, 0, 0, 255}) {
		t.Fatal("shapes should be filled")
	}
	if sq == tri {
		t.Error("different labels should get different colours")
	}
}

func TestRenderOverlay_Caption(t *testing.T) {
	square := contour.New([]image.Point{{10, 10}, {30, 10}, {30, 30}, {10, 30}})
	whites := func(img *image.NRGBA) int {
		n := 0
		for i := 0; i < len(img.Pix); i += 4 {
			if img.Pix[i] == 255 && img.Pix[i+1] == 255 && img.Pix[i+2] == 255 {
				n++
			}
		}
		return n
	}

	plain := RenderOverlay(120, 60, []OverlayShape{{Contour: square, Label: "squart", Center: image.Pt(20, 20)}}, nil)
	captioned := RenderOverlay(120, 60, []OverlayShape{{Contour: square, Label: "squart", Center: image.Pt(20, 20), Caption: "squart"}}, nil)

	if whites(captioned) <= whites(plain) {
		t.Errorf("caption should add white pixels: %d with, %d without", whites(captioned), whites(plain))
	}
}

func TestSaveOverlay(t *testing.T) {
	out := RenderOverlay(20, 20, nil, nil)
	path := filepath.Join(t.TempDir(), "overlay.png")

	if err := SaveOverlay(out, path); err != nil {
		t.Fatalf("SaveOverlay failed: %v", err)
	}
	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open saved overlay failed: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("saved width: got %d, want 20", img.Bounds().Dx())
	}

	if err := SaveOverlay(out, filepath.Join(t.TempDir(), "overlay.unknown")); err == nil {
		t.Error("SaveOverlay should fail for an unknown extension")
	}
}
