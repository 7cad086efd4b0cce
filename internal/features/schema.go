package features

import (
	"math"
	"strconv"

	"github.com/ironsheep/tangram-classifier/internal/detection"
)

// Bucket is an unordered pair of categories whose pieces are compared. A
// bucket is always stored in canonical orientation, so the reverse pair is
// never computed.
type Bucket struct {
	A, B detection.Category
}

// Name returns the key prefix of the bucket, e.g. "smallTriangle-squart".
func (b Bucket) Name() string {
	return b.A.String() + "-" + b.B.String()
}

// Key returns the feature key of the value at a 1-based rank.
func (b Bucket) Key(rank int) string {
	return b.Name() + strconv.Itoa(rank)
}

// dedup reports whether the bucket pairs a category with itself. Such
// buckets see every distance twice.
func (b Bucket) dedup() bool {
	return b.A == b.B
}

// Buckets lists every compared pair in canonical order.
var Buckets = []Bucket{
	{detection.SmallTriangle, detection.SmallTriangle},
	{detection.SmallTriangle, detection.MiddleTriangle},
	{detection.SmallTriangle, detection.BigTriangle},
	{detection.SmallTriangle, detection.Square},
	{detection.SmallTriangle, detection.Parallelogram},
	{detection.MiddleTriangle, detection.BigTriangle},
	{detection.MiddleTriangle, detection.Square},
	{detection.MiddleTriangle, detection.Parallelogram},
	{detection.BigTriangle, detection.BigTriangle},
	{detection.BigTriangle, detection.Square},
	{detection.BigTriangle, detection.Parallelogram},
	{detection.Square, detection.Parallelogram},
}

// Columns lists the feature keys of a complete tangram set in canonical
// order. These are the value columns of a reference table.
var Columns = []string{
	"smallTriangle-smallTriangle1",
	"smallTriangle-middleTriangle1",
	"smallTriangle-middleTriangle2",
	"smallTriangle-bigTriangle1",
	"smallTriangle-bigTriangle2",
	"smallTriangle-bigTriangle3",
	"smallTriangle-bigTriangle4",
	"smallTriangle-squart1",
	"smallTriangle-squart2",
	"smallTriangle-parallelo1",
	"smallTriangle-parallelo2",
	"middleTriangle-bigTriangle1",
	"middleTriangle-bigTriangle2",
	"middleTriangle-squart1",
	"middleTriangle-parallelo1",
	"bigTriangle-bigTriangle1",
	"bigTriangle-squart1",
	"bigTriangle-squart2",
	"bigTriangle-parallelo1",
	"bigTriangle-parallelo2",
	"squart-parallelo1",
}

// ClassColumn is the label column of a reference table.
const ClassColumn = "classe"

// Perimeters of the pieces of a unit tangram (a square of side 1 cut into
// seven pieces). Dividing by the measured perimeter of a reference piece and
// multiplying by its unit perimeter expresses distances in unit-square
// lengths, independently of the photo's scale.
var unitPerimeter = map[detection.Category]float64{
	detection.Square:         4 * math.Sqrt(1.0/8),
	detection.Parallelogram:  2*math.Sqrt(1.0/8) + 1,
	detection.SmallTriangle:  2*math.Sqrt(1.0/8) + 0.5,
	detection.MiddleTriangle: 1 + math.Sqrt(0.5),
	detection.BigTriangle:    1 + 2*math.Sqrt(0.5),
}

// referencePriority is the order in which a reference piece is looked for.
var referencePriority = []detection.Category{
	detection.Square,
	detection.Parallelogram,
	detection.SmallTriangle,
	detection.MiddleTriangle,
	detection.BigTriangle,
}

// UnitPerimeter returns the perimeter of a category's piece in a unit
// tangram.
func UnitPerimeter(c detection.Category) float64 {
	return unitPerimeter[c]
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(Columns))
	for i, c := range Columns {
		m[c] = i
	}
	return m
}()

// IsColumn reports whether key is one of the canonical reference columns.
func IsColumn(key string) bool {
	_, ok := columnIndex[key]
	return ok
}
