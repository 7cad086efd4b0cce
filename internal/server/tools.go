package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// photoProperties returns the input properties shared by every photo tool.
func photoProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the silhouette photo",
		},
		"side": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"left", "right"},
			"description": "Keep only one half of the resized photo. 'left' keeps the right half, 'right' keeps the left half. Implies crop unless crop is false.",
		},
		"crop": map[string]interface{}{
			"type":        "boolean",
			"description": "Crop the resized photo before thresholding. Without side, drops the bottom 50 rows, the first 55 columns and the last 100 columns.",
		},
		"sensitivity": map[string]interface{}{
			"type":        "integer",
			"description": "Gray level (1-255) at or below which a pixel belongs to the silhouette. Default from configuration (50).",
			"minimum":     1,
			"maximum":     255,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	overlayProps := photoProperties()
	overlayProps["output"] = map[string]interface{}{
		"type":        "string",
		"description": "Path of the PNG file to write",
	}

	return []Tool{
		// Classification
		{
			Name:        "tangram_classify",
			Description: "Classify a tangram silhouette photo against the reference table. Returns the predicted label, its confidence, and the distance and confidence for every reference row.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": photoProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "tangram_features",
			Description: "Compute the normalized feature vector of a silhouette photo: distances between piece centres, scaled by the perimeter of a reference piece.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": photoProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "tangram_pieces",
			Description: "Detect the tangram pieces of a silhouette photo. Returns each piece's category, centre, perimeter, area and bounds, along with the contour counts of every stage.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": photoProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "tangram_overlay",
			Description: "Render the detected pieces of a silhouette photo, filled per category and labeled, and save the result as PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": overlayProps,
				"required":   []string{"path", "output"},
			},
		},
		{
			Name:        "tangram_reference",
			Description: "Describe the loaded reference table: row count, labels, rows per label and how many rows carry each feature.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent tool calls on the same path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
