// Package server implements the MCP (Model Context Protocol) server for sheet evaluation.
//
// This package provides a JSON-RPC 2.0 server that exposes answer-sheet scoring
// through the MCP protocol, so MCP-compatible clients can grade scans and
// inspect why a sheet scored the way it did.
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
//   - omr_evaluate: Score a sheet against an answer key file
//   - omr_detect_bubbles: Bubble candidates and grid diagnostics, without scoring
//   - omr_answer_key_sets: List the named sets of an answer key file
//
// Every call reads its files afresh; nothing is cached between calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	ev, err := omr.New(cfg)
//	if err != nil {
//	    return err
//	}
//	return server.New(ev, server.WithLogger(logger)).Run()
package server
