package detection

import (
	"testing"

	"github.com/ironsheep/tangram-classifier/internal/contour"
)

var (
	// Square of area 10000 centred on (50,50).
	testSquare = poly(0, 0, 100, 0, 100, 100, 0, 100)

	// Parallelogram of area 20000.
	testParallelogram = poly(600, 600, 800, 600, 850, 700, 650, 700)
)

// rightTriangle returns a right triangle with legs w and h at (x, y).
func rightTriangle(x, y, w, h int) contour.Contour {
	return poly(x, y, x+w, y, x, y+h)
}


func TestDisambiguate_SquareReference(t *testing.T) {
	contours := []contour.Contour{
		testSquare,
		rightTriangle(500, 0, 50, 100),    // 2500: ratio 0.25
		rightTriangle(300, 0, 100, 100),   // 5000: ratio 0.5
		rightTriangle(0, 300, 200, 200),   // 20000: ratio 2
		rightTriangle(300, 300, 100, 229), // 11450: ratio 1.145
	}

	r := Disambiguate(contours)
	got := r.Counts()
	want := map[Category]int{SmallTriangle: 1, MiddleTriangle: 2, BigTriangle: 1, Square: 1}
	for c, n := range want {
		if got[c] != n {
			t.Errorf("%s: got %d, want %d", c, got[c], n)
		}
	}
	if r.TrianglesAmbiguous {
		t.Error("triangles sized against a square should not be ambiguous")
	}
}

func TestDisambiguate_ParallelogramReference(t *testing.T) {
	contours := []contour.Contour{
		testParallelogram,
		rightTriangle(0, 0, 100, 200),   // 10000: ratio 0.5
		rightTriangle(200, 0, 200, 200), // 20000: ratio 1.0
		rightTriangle(0, 300, 400, 200), // 40000: ratio 2.0
	}

	r := Disambiguate(contours)
	got := r.Counts()
	want := map[Category]int{SmallTriangle: 1, MiddleTriangle: 1, BigTriangle: 1, Parallelogram: 1}
	for c, n := range want {
		if got[c] != n {
			t.Errorf("%s: got %d, want %d", c, got[c], n)
		}
	}
}

func TestDisambiguate_SquareTakesPrecedence(t *testing.T) {
	contours := []contour.Contour{
		testSquare,
		testParallelogram,
		rightTriangle(300, 0, 100, 110), // 5500: square ratio 0.55, parallelogram ratio 0.275
	}

	r := Disambiguate(contours)
	if got := r.Counts(); got[MiddleTriangle] != 1 {
		t.Errorf("triangle should be sized against the square, got %v", got)
	}
}

func TestDisambiguate_AreaSpread(t *testing.T) {
	contours := []contour.Contour{
		rightTriangle(0, 0, 20, 100),    // 1000: 8x smaller
		rightTriangle(100, 0, 60, 100),  // 3000: 2.67x smaller
		rightTriangle(200, 0, 160, 100), // 8000: largest
	}

	r := Disambiguate(contours)
	got := r.Counts()
	want := map[Category]int{SmallTriangle: 1, MiddleTriangle: 1, BigTriangle: 1}
	for c, n := range want {
		if got[c] != n {
			t.Errorf("%s: got %d, want %d", c, got[c], n)
		}
	}
}

func TestDisambiguate_TwoSquaresFallBackToSpread(t *testing.T) {
	contours := []contour.Contour{
		testSquare,
		poly(300, 300, 400, 300, 400, 400, 300, 400),
		rightTriangle(0, 200, 20, 100),    // 1000
		rightTriangle(100, 200, 160, 100), // 8000
	}

	r := Disambiguate(contours)
	got := r.Counts()
	if got[Square] != 2 || got[SmallTriangle] != 1 || got[BigTriangle] != 1 {
		t.Errorf("labels: got %v", got)
	}
}

func TestDisambiguate_Ambiguous(t *testing.T) {
	contours := []contour.Contour{
		rightTriangle(0, 0, 20, 100),   // 1000
		rightTriangle(100, 0, 80, 100), // 4000: spread 4
	}

	r := Disambiguate(contours)
	if !r.TrianglesAmbiguous {
		t.Error("TrianglesAmbiguous should be set")
	}
	if len(r.Pieces) != 0 {
		t.Errorf("labeled pieces: got %d, want 0", len(r.Pieces))
	}
	if len(r.Unlabeled) != 2 {
		t.Errorf("unlabeled: got %d, want 2", len(r.Unlabeled))
	}
	for _, p := range r.Of(Unknown) {
		if p.Category != Unknown {
			t.Errorf("unlabeled triangle has category %s", p.Category)
		}
	}
}

func TestDisambiguate_QuadsWithoutTriangles(t *testing.T) {
	r := Disambiguate([]contour.Contour{testSquare, testParallelogram})

	if got := r.Counts(); got[Square] != 1 || got[Parallelogram] != 1 {
		t.Errorf("labels: got %v", got)
	}
	if r.TrianglesAmbiguous {
		t.Error("no triangles means nothing is ambiguous")
	}
}

func TestDisambiguate_DegenerateAndDropped(t *testing.T) {
	contours := []contour.Contour{
		testSquare,
		poly(0, 500, 10, 500, 20, 500),                // collinear
		poly(50, 0, 100, 40, 80, 100, 20, 100, 0, 40), // pentagon
		poly(0, 0, 599, 0, 599, 99, 0, 99),            // aspect 6
	}

	r := Disambiguate(contours)
	if r.Degenerate != 1 {
		t.Errorf("Degenerate: got %d, want 1", r.Degenerate)
	}
	if r.Dropped != 2 {
		t.Errorf("Dropped: got %d, want 2", r.Dropped)
	}
	if len(r.Pieces) != 1 || r.Pieces[0].Category != Square {
		t.Errorf("pieces: got %+v, want the square only", r.Pieces)
	}
}

func TestDisambiguate_Centers(t *testing.T) {
	r := Disambiguate([]contour.Contour{testSquare, rightTriangle(300, 0, 100, 100)})

	if got := r.Centers(Square); len(got) != 1 || got[0] != (Point{X: 50, Y: 50}) {
		t.Errorf("square centre: got %v, want [(50,50)]", got)
	}
	// (300+400+300)/3, (0+0+100)/3 truncated.
	if got := r.Centers(MiddleTriangle); len(got) != 1 || got[0] != (Point{X: 333, Y: 33}) {
		t.Errorf("triangle centre: got %v, want [(333,33)]", got)
	}
	if got := r.Perimeters(Square); len(got) != 1 || got[0] != 400 {
		t.Errorf("square perimeter: got %v, want [400]", got)
	}
}

func TestDisambiguate_OrderIndependent(t *testing.T) {
	contours := []contour.Contour{
		testSquare,
		rightTriangle(500, 0, 50, 100),
		rightTriangle(500, 300, 50, 100),
		rightTriangle(300, 0, 100, 100),
		rightTriangle(0, 300, 200, 200),
		rightTriangle(200, 600, 200, 200),
		testParallelogram,
	}
	reversed := make([]contour.Contour, len(contours))
	for i, c := range contours {
		reversed[len(contours)-1-i] = c
	}

	a := Disambiguate(contours)
	b := Disambiguate(reversed)

	if len(a.Pieces) != len(b.Pieces) {
		t.Fatalf("piece count: %d vs %d", len(a.Pieces), len(b.Pieces))
	}
	for i := range a.Pieces {
		pa, pb := a.Pieces[i], b.Pieces[i]
		if pa.Category != pb.Category || pa.Center != pb.Center || pa.Perimeter != pb.Perimeter {
			t.Errorf("piece %d differs: %+v vs %+v", i, pa, pb)
		}
	}
	if got := a.Counts(); got[SmallTriangle] != 2 || got[BigTriangle] != 2 {
		t.Errorf("labels: got %v", got)
	}
}

func TestCategory_WireNames(t *testing.T) {
	tests := []struct {
		c    Category
		name string
	}{
		{SmallTriangle, "smallTriangle"},
		{MiddleTriangle, "middleTriangle"},
		{BigTriangle, "bigTriangle"},
		{Square, "squart"},
		{Parallelogram, "parallelo"},
	}

	for _, tt := range tests {
		if got := tt.c.String(); got != tt.name {
			t.Errorf("String: got %q, want %q", got, tt.name)
		}
		parsed, err := ParseCategory(tt.name)
		if err != nil || parsed != tt.c {
			t.Errorf("ParseCategory(%q): got %v, %v", tt.name, parsed, err)
		}
	}
	if _, err := ParseCategory("circle"); err == nil {
		t.Error("ParseCategory should reject unknown names")
	}
}
