package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// QuestionInput is the input schema shared by both tools.
type QuestionInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	K        int    `json:"k,omitempty" jsonschema:"number of fragments to retrieve, 1 to 10 (default 3)"`
}

// AnswerOutput is the output schema for the answer_question tool.
type AnswerOutput struct {
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
	Contexts  []string         `json:"contexts"`
	Timestamp string           `json:"timestamp"`
}

// CitationOutput maps a citation marker to its document.
type CitationOutput struct {
	Number int    `json:"number"`
	Source string `json:"source"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Fragments []FragmentOutput `json:"fragments"`
	Count     int              `json:"count"`
}

// FragmentOutput represents a single retrieved fragment.
type FragmentOutput struct {
	Rank   int     `json:"rank"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "answer_question",
		Description: "Answer a question using only the indexed documents. " +
			"Every claim carries a [n] marker that refers to a cited source.",
	}, s.handleAnswerQuestion)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the document fragments most similar to a question",
	}, s.handleRetrieve)
}

// k returns the requested fragment count or the default. Negative values are
// passed through so the pipeline rejects them.
func (s *Server) k(input QuestionInput) int {
	if input.K == 0 {
		return s.ports.DefaultK
	}
	return input.K
}

// handleAnswerQuestion handles the answer_question tool invocation.
func (s *Server) handleAnswerQuestion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.ports.Answers.AnswerQuestion(ctx, input.Question, s.k(input))
	if err != nil {
		return nil, AnswerOutput{}, err
	}

	output := AnswerOutput{
		Answer:    answer.Text,
		Citations: make([]CitationOutput, len(answer.Context.Citations)),
		Contexts:  answer.Contexts(),
		Timestamp: answer.Timestamp.Format(domain.TimestampLayout),
	}
	for i, c := range answer.Context.Citations {
		output.Citations[i] = CitationOutput{Number: c.Number, Source: c.Source}
	}

	return nil, output, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.ports.Answers.Retrieve(ctx, input.Question, s.k(input))
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Fragments: make([]FragmentOutput, len(results)),
		Count:     len(results),
	}
	for i := range results {
		output.Fragments[i] = FragmentOutput{
			Rank:   results[i].Rank,
			Source: results[i].Fragment.Source,
			Score:  results[i].Score,
			Text:   results[i].Fragment.Text,
		}
	}

	return nil, output, nil
}
