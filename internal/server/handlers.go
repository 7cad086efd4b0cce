package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/tangram-classifier/internal/detection"
	"github.com/ironsheep/tangram-classifier/internal/features"
	"github.com/ironsheep/tangram-classifier/internal/imaging"
	"github.com/ironsheep/tangram-classifier/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "tangram_classify", "image_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, CodeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each photo tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges optional parameters over the classifier's defaults
//  3. Runs the pipeline on the image file (loaded through the cache)
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "tangram_classify":
		return s.handleClassify(ctx, args)
	case "tangram_features":
		return s.handleFeatures(ctx, args)
	case "tangram_pieces":
		return s.handlePieces(ctx, args)
	case "tangram_overlay":
		return s.handleOverlay(ctx, args)
	case "tangram_reference":
		return s.handleReference()
	case "image_load":
		return s.handleImageLoad(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// photoArgs are the arguments shared by the photo tools. Optional fields
// left out fall back to the classifier's configured options.
type photoArgs struct {
	Path        string  `json:"path"`
	Side        *string `json:"side"`
	Crop        *bool   `json:"crop"`
	Sensitivity *int    `json:"sensitivity"`
}

func parsePhotoArgs(args json.RawMessage, defaults pipeline.Options) (string, pipeline.Options, error) {
	var a photoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", defaults, err
	}
	if a.Path == "" {
		return "", defaults, fmt.Errorf("path is required")
	}

	opts := defaults
	if a.Side != nil {
		side, err := imaging.ParseSide(*a.Side)
		if err != nil {
			return "", defaults, err
		}
		opts.Side = side
		if side != imaging.SideNone {
			opts.Crop = true
		}
	}
	if a.Crop != nil {
		opts.Crop = *a.Crop
	}
	if a.Sensitivity != nil {
		if *a.Sensitivity < 1 || *a.Sensitivity > 255 {
			return "", defaults, fmt.Errorf("sensitivity must be between 1 and 255, got %d", *a.Sensitivity)
		}
		opts.Sensitivity = *a.Sensitivity
	}
	return a.Path, opts, nil
}

// === Tangram Handlers ===

func (s *Server) handleClassify(ctx context.Context, args json.RawMessage) (interface{}, error) {
	path, opts, err := parsePhotoArgs(args, s.classifier.Options())
	if err != nil {
		return nil, err
	}
	if s.classifier.Table().Len() == 0 {
		return nil, fmt.Errorf("no reference table loaded")
	}
	return s.classifier.ClassifyFile(ctx, path, opts)
}

// FeaturesResult is the result of the tangram_features tool.
type FeaturesResult struct {
	// Features holds the vector in canonical key order.
	Features []FeatureValue `json:"features"`

	// Reference is the category that fixed the scale.
	Reference detection.Category `json:"reference"`

	LowConfidence      bool `json:"low_confidence"`
	TrianglesAmbiguous bool `json:"triangles_ambiguous"`
}

// FeatureValue is one entry of a feature vector.
type FeatureValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

func orderedFeatures(v features.Vector) []FeatureValue {
	out := make([]FeatureValue, 0, len(v))
	for _, k := range v.Keys() {
		out = append(out, FeatureValue{Key: k, Value: v[k]})
	}
	return out
}

func (s *Server) handleFeatures(ctx context.Context, args json.RawMessage) (interface{}, error) {
	path, opts, err := parsePhotoArgs(args, s.classifier.Options())
	if err != nil {
		return nil, err
	}
	a, err := s.classifier.AnalyzeFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return &FeaturesResult{
		Features:           orderedFeatures(a.Features.Vector),
		Reference:          a.Features.Reference,
		LowConfidence:      a.Features.LowConfidence,
		TrianglesAmbiguous: a.Pieces.TrianglesAmbiguous,
	}, nil
}

func (s *Server) handlePieces(ctx context.Context, args json.RawMessage) (interface{}, error) {
	path, opts, err := parsePhotoArgs(args, s.classifier.Options())
	if err != nil {
		return nil, err
	}
	return s.classifier.AnalyzeFile(ctx, path, opts)
}

type overlayArgs struct {
	photoArgs
	Output string `json:"output"`
}

// OverlayResult is the result of the tangram_overlay tool.
type OverlayResult struct {
	Output string `json:"output"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pieces int    `json:"pieces"`
}

func (s *Server) handleOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var o overlayArgs
	if err := json.Unmarshal(args, &o); err != nil {
		return nil, err
	}
	if o.Output == "" {
		return nil, fmt.Errorf("output is required")
	}
	path, opts, err := parsePhotoArgs(args, s.classifier.Options())
	if err != nil {
		return nil, err
	}
	a, err := s.classifier.AnalyzeFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if err := imaging.SaveOverlay(pipeline.Overlay(a), o.Output); err != nil {
		return nil, err
	}
	return &OverlayResult{
		Output: o.Output,
		Width:  a.Width,
		Height: a.Height,
		Pieces: len(a.Pieces.Pieces) + len(a.Pieces.Unlabeled),
	}, nil
}

// ReferenceResult describes the loaded reference table.
type ReferenceResult struct {
	Rows int `json:"rows"`

	// Labels holds the distinct labels in order of first appearance.
	Labels []string `json:"labels"`

	// RowsPerLabel counts the rows of every label.
	RowsPerLabel map[string]int `json:"rows_per_label"`

	// Coverage counts, for every feature key, the rows that have it.
	Coverage map[string]int `json:"coverage"`

	Columns []string `json:"columns"`
}

func (s *Server) handleReference() (interface{}, error) {
	t := s.classifier.Table()
	perLabel := make(map[string]int)
	if t != nil {
		for _, r := range t.Rows {
			perLabel[r.Label]++
		}
	}
	return &ReferenceResult{
		Rows:         t.Len(),
		Labels:       t.Labels(),
		RowsPerLabel: perLabel,
		Coverage:     t.Coverage(),
		Columns:      t.Columns(),
	}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.classifier.Cache(), a.Path)
}
