package reference

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ironsheep/tangram-classifier/internal/features"
)

// Sample is one dataset image and the silhouette it shows.
type Sample struct {
	File  string `json:"file"`
	Label string `json:"label"`
}

// Dataset lists the known silhouettes. File names are matched exactly,
// including the upper case extensions.
var Dataset = []Sample{
	{"bateau.jpg", "boat"},
	{"bol.jpg", "bowl"},
	{"chat.jpg", "cat"},
	{"coeur.jpg", "heart"},
	{"cygne.jpg", "swan"},
	{"lapin.jpg", "rabbit"},
	{"maison.JPG", "house"},
	{"marteau.jpg", "hammer"},
	{"montagne.jpg", "mountain"},
	{"pont.jpg", "bridge"},
	{"renard.JPG", "fox"},
	{"tortue.jpg", "turtle"},
}

// Extractor computes the feature vector of an image file. Dataset images
// are already cut to the silhouette, so an Extractor used by Build should
// not crop.
type Extractor interface {
	ExtractFile(ctx context.Context, path string) (features.Vector, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) (features.Vector, error)

// ExtractFile calls f.
func (f ExtractorFunc) ExtractFile(ctx context.Context, path string) (features.Vector, error) {
	return f(ctx, path)
}

// Build extracts the feature vector of every Dataset image found in dir
// and returns them as a table, one row per image in Dataset order.
func Build(ctx context.Context, dir string, ex Extractor) (*Table, error) {
	return BuildSamples(ctx, dir, Dataset, ex)
}

// BuildSamples is Build over an explicit sample list.
func BuildSamples(ctx context.Context, dir string, samples []Sample, ex Extractor) (*Table, error) {
	table := &Table{}
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, s.File)
		v, err := ex.ExtractFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.File, err)
		}
		if len(v) == 0 {
			log.Printf("Warning: %s produced no features", s.File)
		}
		table.Append(s.Label, v)
	}
	return table, nil
}
