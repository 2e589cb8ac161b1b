// Package mcp provides an MCP (Model Context Protocol) server adapter for
// ragets. It lets AI assistants ask cited questions over the local index.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
