// Package server implements the MCP (Model Context Protocol) server for the
// tangram classifier.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and
// exposes the classification pipeline as tools.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Classification:
//   - tangram_classify: Predict the label of a silhouette photo
//   - tangram_features: Compute the feature vector of a photo
//   - tangram_pieces: Detect and label the pieces of a photo
//   - tangram_overlay: Save a rendering of the detected pieces
//   - tangram_reference: Describe the loaded reference table
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//
// Photo tools accept path plus optional side, crop and sensitivity. Omitted
// options fall back to the classifier's configuration.
//
// # Image Caching
//
// Decoded photos are cached by path in the classifier's image cache and
// reused across tool calls for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(classifier)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
