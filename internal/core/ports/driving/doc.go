// Package driving defines the interfaces the CLI and the MCP server use to
// reach core services: ingestion, retrieval, answering, feedback and
// evaluation.
//
// Implementations of these interfaces live in internal/core/services.
package driving
