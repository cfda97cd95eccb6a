// Package mcp provides an MCP (Model Context Protocol) server adapter for foldrag.
// It lets AI assistants ask questions of an indexed folder and browse what it holds.
package mcp

import "errors"

// ErrMissingPipeline is returned when the pipeline service is not provided.
var ErrMissingPipeline = errors.New("mcp: pipeline service is required")
