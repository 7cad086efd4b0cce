package pipeline

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/tangram-classifier/internal/config"
	"github.com/ironsheep/tangram-classifier/internal/contour"
	"github.com/ironsheep/tangram-classifier/internal/detection"
	"github.com/ironsheep/tangram-classifier/internal/features"
	"github.com/ironsheep/tangram-classifier/internal/imaging"
	"github.com/ironsheep/tangram-classifier/internal/matcher"
	"github.com/ironsheep/tangram-classifier/internal/reference"
)

// Options controls how one photo is prepared.
type Options struct {
	// Sensitivity is the brightest gray level counted as silhouette.
	Sensitivity int `json:"sensitivity"`

	// ResizePercent is the scale applied before tracing.
	ResizePercent int `json:"resize_percent"`

	// Crop enables board cropping.
	Crop bool `json:"crop"`

	// Side picks the half of the board kept when Crop is set.
	Side imaging.Side `json:"side"`
}

// DefaultOptions returns the settings used for query photos.
func DefaultOptions() Options {
	return Options{
		Sensitivity:   imaging.DefaultSensitivity,
		ResizePercent: imaging.DefaultResizePercent,
	}
}

// OptionsFromConfig converts the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if err := cfg.Crop.Validate(); err != nil {
		return Options{}, err
	}
	side, err := imaging.ParseSide(cfg.Crop.Side)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Sensitivity:   cfg.Sensitivity,
		ResizePercent: cfg.ResizePercent,
		Crop:          cfg.Crop.Enabled,
		Side:          side,
	}, nil
}

// Analysis is everything measured on one photo before matching.
type Analysis struct {
	// Width and Height are the dimensions of the preprocessed image.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Contours is the number of external contours traced.
	Contours int `json:"contours"`

	// Accepted is the number of contours kept by the shape classifier.
	Accepted int `json:"accepted"`

	// Pieces holds the labeled pieces.
	Pieces *detection.PiecesResult `json:"pieces"`

	// Features is the feature vector built from Pieces.
	Features *features.Features `json:"features"`

	// Centers is the mean centre of each category found.
	Centers map[detection.Category]detection.Point `json:"centers"`

	// CenterDistances holds the distances between category centres.
	CenterDistances map[string]float64 `json:"center_distances"`
}

// Classification is the result of recognising one photo.
type Classification struct {
	// Label is the class of the nearest reference row.
	Label string `json:"label"`

	// Confidence is the nearest row's confidence.
	Confidence float64 `json:"confidence"`

	// Match holds the distance and confidence of every reference row.
	Match *matcher.Result `json:"match"`

	// Vector is the query feature vector.
	Vector features.Vector `json:"vector"`

	// Pieces holds the labeled pieces the vector was built from.
	Pieces *detection.PiecesResult `json:"pieces"`

	// LowConfidence is set when the vector could not be scaled.
	LowConfidence bool `json:"low_confidence"`

	// TrianglesAmbiguous is set when triangles were found but not sized.
	TrianglesAmbiguous bool `json:"triangles_ambiguous"`
}

// Distances returns the per-row distances in table order.
func (c *Classification) Distances() []float64 {
	return c.Match.Distances()
}

// Confidences returns the per-row confidences in table order.
func (c *Classification) Confidences() []float64 {
	return c.Match.Confidences()
}

// Classifier recognises tangram photos against a reference table.
//
// A Classifier holds no per-photo state; its methods can be called from
// several goroutines at once.
type Classifier struct {
	source contour.Source
	table  *reference.Table
	cache  *imaging.ImageCache
	opts   Options
	debug  bool
}

// New creates a classifier from a configuration. The reference table may be
// nil for analysis-only use, such as building a new table.
func New(cfg *config.Config, table *reference.Table) (*Classifier, error) {
	src, err := contour.NewSource(cfg.ContourSource)
	if err != nil {
		return nil, err
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	c := NewClassifier(src, table, opts)
	c.SetDebug(cfg.Debug())
	return c, nil
}

// NewClassifier creates a classifier from its parts.
func NewClassifier(src contour.Source, table *reference.Table, opts Options) *Classifier {
	return &Classifier{
		source: src,
		table:  table,
		cache:  imaging.NewImageCache(),
		opts:   opts,
	}
}

// SetDebug enables per-stage debug logging.
func (c *Classifier) SetDebug(on bool) {
	c.debug = on
}

// Options returns the default photo options of the classifier.
func (c *Classifier) Options() Options {
	return c.opts
}

// Table returns the reference table, nil if none was given.
func (c *Classifier) Table() *reference.Table {
	return c.table
}

// Cache returns the image cache used for file based calls.
func (c *Classifier) Cache() *imaging.ImageCache {
	return c.cache
}

// Analyze extracts the pieces and the feature vector of a photo.
func (c *Classifier) Analyze(ctx context.Context, img image.Image, opts Options) (*Analysis, error) {
	if opts.Sensitivity < 1 || opts.Sensitivity > 255 {
		return nil, fmt.Errorf("sensitivity must be between 1 and 255, got %d", opts.Sensitivity)
	}

	prepared, err := imaging.Preprocess(img, imaging.PreprocessOptions{
		ResizePercent: opts.ResizePercent,
		Crop:          opts.Crop,
		Side:          opts.Side,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mask := imaging.SilhouetteMask(prepared, uint8(opts.Sensitivity))
	contours, err := c.source.Extract(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to extract contours: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := prepared.Bounds()
	accepted := detection.ClassifyShapes(contours, bounds.Dx(), bounds.Dy())
	pieces := detection.Disambiguate(accepted)
	feats := features.Build(pieces)
	centers := features.CategoryCenters(pieces)

	if c.debug {
		log.Printf("Preprocessed %dx%d, %d contours, %d accepted", bounds.Dx(), bounds.Dy(), len(contours), len(accepted))
		log.Printf("Pieces %v, %d unlabeled, %d degenerate, %d dropped",
			pieces.Counts(), len(pieces.Unlabeled), pieces.Degenerate, pieces.Dropped)
		if feats.LowConfidence {
			log.Printf("No reference piece, %d placeholder features", len(feats.Vector))
		} else {
			log.Printf("Scaled by %s perimeter %.2f, %d features", feats.Reference, feats.ReferencePerimeter, len(feats.Vector))
		}
	}

	return &Analysis{
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		Contours:        len(contours),
		Accepted:        len(accepted),
		Pieces:          pieces,
		Features:        feats,
		Centers:         centers,
		CenterDistances: features.CenterDistances(centers),
	}, nil
}

// AnalyzeFile is Analyze on an image file, loaded through the cache.
func (c *Classifier) AnalyzeFile(ctx context.Context, path string, opts Options) (*Analysis, error) {
	img, err := c.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return c.Analyze(ctx, img, opts)
}

// Classify recognises the silhouette of a photo.
func (c *Classifier) Classify(ctx context.Context, img image.Image, opts Options) (*Classification, error) {
	a, err := c.Analyze(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return c.classify(a)
}

// ClassifyFile is Classify on an image file, loaded through the cache.
func (c *Classifier) ClassifyFile(ctx context.Context, path string, opts Options) (*Classification, error) {
	a, err := c.AnalyzeFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return c.classify(a)
}

func (c *Classifier) classify(a *Analysis) (*Classification, error) {
	m, err := matcher.Match(c.table, a.Features.Vector)
	if err != nil {
		return nil, err
	}
	if c.debug {
		for _, s := range m.Ranked() {
			log.Printf("  %-10s distance %.4f confidence %.3f over %d features", s.Label, s.Distance, s.Confidence, s.Overlap)
		}
	}
	return &Classification{
		Label:              m.Label,
		Confidence:         m.Scores[m.Best].Confidence,
		Match:              m,
		Vector:             a.Features.Vector,
		Pieces:             a.Pieces,
		LowConfidence:      a.Features.LowConfidence,
		TrianglesAmbiguous: a.Pieces.TrianglesAmbiguous,
	}, nil
}

// ExtractFile returns the feature vector of a dataset image: the image is
// processed with the classifier's options but never cropped. It makes the
// classifier a reference.Extractor.
func (c *Classifier) ExtractFile(ctx context.Context, path string) (features.Vector, error) {
	opts := c.opts
	opts.Crop = false
	a, err := c.AnalyzeFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if c.debug {
		log.Printf("Extracted %d features from %s", len(a.Features.Vector), path)
	}
	return a.Features.Vector, nil
}

// Overlay renders the pieces of an analysis, filled per category on a
// black canvas the size of the preprocessed image.
func Overlay(a *Analysis) *image.NRGBA {
	labels := make([]string, 0, len(detection.Categories)+1)
	for _, cat := range detection.Categories {
		labels = append(labels, cat.String())
	}
	labels = append(labels, detection.Unknown.String())

	shapes := make([]imaging.OverlayShape, 0, len(a.Pieces.Pieces)+len(a.Pieces.Unlabeled))
	for _, group := range [][]detection.Piece{a.Pieces.Pieces, a.Pieces.Unlabeled} {
		for _, p := range group {
			shapes = append(shapes, imaging.OverlayShape{
				Contour: p.Contour,
				Label:   p.Category.String(),
				Center:  image.Pt(p.Center.X, p.Center.Y),
				Caption: p.Category.String(),
			})
		}
	}
	return imaging.RenderOverlay(a.Width, a.Height, shapes, labels)
}
