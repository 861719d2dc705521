// Package server implements the MCP (Model Context Protocol) server for the
// guided filter.
//
// This package provides a JSON-RPC 2.0 server that exposes edge-preserving
// smoothing and the supporting inspection tools through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and report its plane layout
//   - image_plane_stats: Per-plane mean, minimum and maximum
//
// Filtering:
//   - image_guided_filter: Guided filter with every parameter exposed
//
// Inspection:
//   - image_preview: Extract a named or explicit region, optionally enlarged
//   - image_compare: Per-plane differences between two images
//
// Per-plane parameters (radius, threshold, regulation, planes) accept either a
// single value or an array; shorter arrays repeat their last value.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// Files written by image_guided_filter are evicted so later calls see the new
// content.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Invalid filter parameters surface as the guided package's
// ConfigurationError text, naming the offending field.
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
