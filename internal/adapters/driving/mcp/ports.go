package mcp

import (
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answers answers questions and retrieves fragments.
	Answers driving.AnswerService

	// Feedback exposes the feedback log as a resource. Optional.
	Feedback driving.FeedbackService

	// DefaultK is used when a tool call omits k.
	DefaultK int
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answers == nil {
		return ErrMissingAnswerService
	}
	return nil
}
