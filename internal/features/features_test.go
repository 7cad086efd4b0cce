package features

import (
	"image"
	"math"
	"reflect"
	"testing"

	"github.com/ironsheep/tangram-classifier/internal/contour"
	"github.com/ironsheep/tangram-classifier/internal/detection"
)

func poly(coords ...int) contour.Contour {
	pts := make([]image.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		pts = append(pts, image.Pt(coords[i], coords[i+1]))
	}
	return contour.New(pts)
}

func piece(c detection.Category, x, y int, perimeter float64) detection.Piece {
	return detection.Piece{Category: c, Center: detection.Point{X: x, Y: y}, Perimeter: perimeter}
}

// fullSet is a complete arrangement with every piece at a distinct centre.
func fullSet() *detection.PiecesResult {
	return &detection.PiecesResult{Pieces: []detection.Piece{
		piece(detection.SmallTriangle, 10, 10, 120),
		piece(detection.SmallTriangle, 90, 10, 120),
		piece(detection.MiddleTriangle, 50, 40, 170),
		piece(detection.BigTriangle, 20, 80, 240),
		piece(detection.BigTriangle, 80, 80, 240),
		piece(detection.Square, 50, 120, 141.42),
		piece(detection.Parallelogram, 50, 160, 170),
	}}
}

func TestBuild_SquareAndTriangle(t *testing.T) {
	contours := []contour.Contour{
		poly(0, 0, 100, 0, 100, 100, 0, 100), // area 10000, centre (50,50)
		poly(200, 0, 300, 0, 200, 80),        // area 4000, centre (233,26)
	}
	pieces := detection.Disambiguate(detection.ClassifyShapes(contours, 1000, 1000))

	f := Build(pieces)

	want := Vector{"smallTriangle-squart1": 0.65}
	if !reflect.DeepEqual(f.Vector, want) {
		t.Errorf("vector: got %v, want %v", f.Vector, want)
	}
	if f.Reference != detection.Square {
		t.Errorf("reference: got %s, want squart", f.Reference)
	}
	if f.ReferencePerimeter != 400 {
		t.Errorf("reference perimeter: got %v, want 400", f.ReferencePerimeter)
	}
	if f.LowConfidence {
		t.Error("LowConfidence should not be set with a square present")
	}
}

func TestBuild_FullSetProducesColumns(t *testing.T) {
	f := Build(fullSet())

	if got := f.Vector.Keys(); !reflect.DeepEqual(got, Columns) {
		t.Errorf("keys:\n got %v\nwant %v", got, Columns)
	}
	for _, b := range Buckets {
		for rank := 2; ; rank++ {
			v, ok := f.Vector[b.Key(rank)]
			if !ok {
				break
			}
			if prev := f.Vector[b.Key(rank-1)]; v < prev {
				t.Errorf("%s not ascending: rank %d = %v < %v", b.Name(), rank, v, prev)
			}
		}
	}
}

func TestBuild_SameCategoryCollapses(t *testing.T) {
	pieces := &detection.PiecesResult{Pieces: []detection.Piece{
		piece(detection.SmallTriangle, 0, 0, 100),
		piece(detection.SmallTriangle, 30, 40, 100),
	}}

	f := Build(pieces)

	if len(f.Vector) != 1 {
		t.Fatalf("vector: got %v, want a single key", f.Vector)
	}
	// 50 / 100 × (2√(1/8) + 1/2) = 0.6036 → 0.6
	if got := f.Vector["smallTriangle-smallTriangle1"]; got != 0.6 {
		t.Errorf("smallTriangle-smallTriangle1: got %v, want 0.6", got)
	}
	if f.Reference != detection.SmallTriangle {
		t.Errorf("reference: got %s, want smallTriangle", f.Reference)
	}
}

func TestBuild_ReferencePriority(t *testing.T) {
	tests := []struct {
		name   string
		pieces []detection.Piece
		want   detection.Category
	}{
		{"square first", fullSet().Pieces, detection.Square},
		{"parallelogram without square", []detection.Piece{
			piece(detection.SmallTriangle, 0, 0, 100),
			piece(detection.BigTriangle, 50, 0, 200),
			piece(detection.Parallelogram, 100, 0, 150),
		}, detection.Parallelogram},
		{"middle before big", []detection.Piece{
			piece(detection.MiddleTriangle, 0, 0, 100),
			piece(detection.BigTriangle, 50, 0, 200),
		}, detection.MiddleTriangle},
		{"big alone", []detection.Piece{
			piece(detection.BigTriangle, 0, 0, 200),
			piece(detection.BigTriangle, 50, 0, 200),
		}, detection.BigTriangle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Build(&detection.PiecesResult{Pieces: tt.pieces})
			if f.Reference != tt.want {
				t.Errorf("reference: got %s, want %s", f.Reference, tt.want)
			}
		})
	}
}

func TestBuild_NoReference(t *testing.T) {
	pieces := &detection.PiecesResult{Pieces: []detection.Piece{
		piece(detection.BigTriangle, 0, 0, 0),
		piece(detection.BigTriangle, 30, 40, 0),
		piece(detection.MiddleTriangle, 60, 0, 0),
	}}

	f := Build(pieces)

	if !f.LowConfidence {
		t.Error("LowConfidence should be set without a usable perimeter")
	}
	want := Vector{"middleTriangle-bigTriangle1": 1, "middleTriangle-bigTriangle2": 1, "bigTriangle-bigTriangle1": 1}
	if !reflect.DeepEqual(f.Vector, want) {
		t.Errorf("vector: got %v, want %v", f.Vector, want)
	}
}

func TestBuild_Empty(t *testing.T) {
	f := Build(&detection.PiecesResult{TrianglesAmbiguous: true})

	if len(f.Vector) != 0 {
		t.Errorf("vector: got %v, want empty", f.Vector)
	}
	if !f.LowConfidence {
		t.Error("LowConfidence should be set for an empty silhouette")
	}
}

func TestBuild_OrderIndependent(t *testing.T) {
	contours := []contour.Contour{
		poly(0, 0, 100, 0, 100, 100, 0, 100),
		poly(500, 0, 550, 0, 500, 100),
		poly(500, 300, 550, 300, 500, 400),
		poly(300, 0, 400, 0, 300, 100),
		poly(0, 300, 200, 300, 0, 500),
		poly(200, 600, 400, 600, 200, 800),
		poly(600, 600, 800, 600, 850, 700, 650, 700),
	}
	reversed := make([]contour.Contour, len(contours))
	for i, c := range contours {
		reversed[len(contours)-1-i] = c
	}

	a := Build(detection.Disambiguate(contours))
	b := Build(detection.Disambiguate(reversed))

	if !reflect.DeepEqual(a, b) {
		t.Errorf("vectors differ:\n%v\n%v", a.Vector, b.Vector)
	}
	if len(a.Vector) != len(Columns) {
		t.Errorf("full set should produce %d keys, got %d", len(Columns), len(a.Vector))
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		dedup  bool
		want   []float64
	}{
		{"drops second of three", []float64{3, 1, 2}, true, []float64{1, 3}},
		{"drops twin", []float64{2, 2}, true, []float64{2}},
		{"keeps single", []float64{5}, true, []float64{5}},
		{"no dedup across categories", []float64{3, 1, 2}, false, []float64{1, 2, 3}},
		{"empty", nil, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := finalize(tt.values, tt.dedup)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestUnitPerimeter(t *testing.T) {
	tests := []struct {
		c    detection.Category
		want float64
	}{
		{detection.Square, 1.4142},
		{detection.Parallelogram, 1.7071},
		{detection.SmallTriangle, 1.2071},
		{detection.MiddleTriangle, 1.7071},
		{detection.BigTriangle, 2.4142},
	}

	for _, tt := range tests {
		if got := UnitPerimeter(tt.c); math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("%s: got %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestVectorKeys(t *testing.T) {
	v := Vector{
		"squart-parallelo1":     1,
		"smallTriangle-squart3": 1,
		"smallTriangle-squart1": 1,
	}
	want := []string{"smallTriangle-squart1", "squart-parallelo1", "smallTriangle-squart3"}
	if got := v.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys: got %v, want %v", got, want)
	}
}

func TestColumns(t *testing.T) {
	if len(Columns) != 21 {
		t.Errorf("Columns: got %d, want 21", len(Columns))
	}
	if !IsColumn("bigTriangle-parallelo2") || IsColumn("bigTriangle-parallelo3") {
		t.Error("IsColumn mismatch")
	}
}

func TestRound2_HalvesAwayFromZero(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.125, 0.13},
		{-0.125, -0.13},
		{0.375, 0.38},
		{1.004, 1},
		{2.5, 2.5},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
