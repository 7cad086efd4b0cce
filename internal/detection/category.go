package detection

import (
	"fmt"
)

// Category is the kind of tangram piece a contour was recognised as.
type Category int

const (
	// Unknown marks a triangle whose size could not be decided.
	Unknown Category = iota
	SmallTriangle
	MiddleTriangle
	BigTriangle
	Square
	Parallelogram
)

// Categories lists the labeled categories in canonical order.
var Categories = []Category{SmallTriangle, MiddleTriangle, BigTriangle, Square, Parallelogram}

// FullSet is the number of pieces of each category in one tangram set.
var FullSet = map[Category]int{
	SmallTriangle:  2,
	MiddleTriangle: 1,
	BigTriangle:    2,
	Square:         1,
	Parallelogram:  1,
}

// Wire names are part of the persisted reference schema.
var categoryNames = map[Category]string{
	Unknown:        "unknown",
	SmallTriangle:  "smallTriangle",
	MiddleTriangle: "middleTriangle",
	BigTriangle:    "bigTriangle",
	Square:         "squart",
	Parallelogram:  "parallelo",
}

// String returns the wire name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// IsTriangle reports whether the category is one of the three triangle sizes.
func (c Category) IsTriangle() bool {
	return c == SmallTriangle || c == MiddleTriangle || c == BigTriangle
}

// ParseCategory converts a wire name back to a Category.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return Unknown, fmt.Errorf("unknown piece category %q", name)
}

// MarshalText encodes the category as its wire name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a wire name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
