// Package server implements the MCP (Model Context Protocol) server for the
// virtual try-on tools.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line on stdin
// and one response per line on stdout. It runs the same pipeline as the
// HTTP API, but addresses images by file path instead of uploads.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - tryon_detect_pose: Estimate body landmarks of a person photo
//   - tryon_composite: Blend a garment onto a person photo
//   - tryon_annotate: Draw landmarks and the garment placement for inspection
//   - tryon_garment_palette: Dominant colors of a garment image
//
// Decoded images are cached by path for the lifetime of the process, so
// running several tools against the same photo decodes it once.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string in data. A garment file that exists but cannot be decoded is
// not a failure: tryon_composite reports outcome "degraded" and returns the
// person image unchanged.
package server
