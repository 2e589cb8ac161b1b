package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragets resources.
	uriScheme = "ragets://"

	// defaultFeedbackLimit is the number of entries the static resource returns.
	defaultFeedbackLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "prompt",
		Name:        "prompt",
		Description: "The built-in answering instruction template",
		MIMEType:    "text/plain",
	}, s.handlePromptResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "feedback",
		Name:        "feedback",
		Description: "Most recent rated answers",
		MIMEType:    "application/json",
	}, s.handleFeedbackResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "feedback/{limit}",
		Name:        "feedback-recent",
		Description: "The given number of most recent rated answers",
		MIMEType:    "application/json",
	}, s.handleFeedbackResource)
}

// handlePromptResource returns the default prompt template.
func (s *Server) handlePromptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     domain.AnswerPromptTemplate,
		}},
	}, nil
}

// feedbackInfo is the JSON shape of one feedback entry.
type feedbackInfo struct {
	Timestamp string `json:"timestamp"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Rating    string `json:"rating"`
}

// handleFeedbackResource returns recent feedback entries.
func (s *Server) handleFeedbackResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	limit, ok := extractLimit(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	infos := []feedbackInfo{}
	if s.ports.Feedback != nil {
		entries, err := s.ports.Feedback.Recent(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("listing feedback: %w", err)
		}
		for i := range entries {
			infos = append(infos, feedbackInfo{
				Timestamp: entries[i].Timestamp.Format(domain.TimestampLayout),
				Question:  entries[i].Question,
				Answer:    entries[i].Answer,
				Rating:    entries[i].Rating,
			})
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling feedback: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractLimit parses ragets://feedback or ragets://feedback/{limit}.
func extractLimit(uri string) (int, bool) {
	const base = uriScheme + "feedback"

	if uri == base {
		return defaultFeedbackLimit, true
	}
	if !strings.HasPrefix(uri, base+"/") {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimPrefix(uri, base+"/"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
