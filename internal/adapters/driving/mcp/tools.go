package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// defaultSearchLimit is used when the caller gives no limit.
const defaultSearchLimit = 10

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed folder"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
	Fallback bool     `json:"fallback"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Question string `json:"question" jsonschema:"text to find matching chunks for"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []ContextOutput `json:"results"`
	Count   int             `json:"count"`
}

// ContextOutput is one retrieved chunk.
type ContextOutput struct {
	Tag   string  `json:"tag"`
	File  string  `json:"file"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed folder, citing the chunks used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Return the indexed chunks most similar to a question",
	}, s.handleSearch)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Pipeline.Query(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	tags := make([]string, len(answer.Contexts))
	for i, c := range answer.Contexts {
		tags[i] = c.Record.CitationTag
	}
	return nil, AskOutput{Answer: answer.Text, Tags: tags, Fallback: answer.Fallback}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	contexts, err := s.ports.Pipeline.Retrieve(ctx, input.Question, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ContextOutput, len(contexts)),
		Count:   len(contexts),
	}
	for i, c := range contexts {
		output.Results[i] = toContextOutput(c)
	}
	return nil, output, nil
}

func toContextOutput(c domain.RetrievedContext) ContextOutput {
	return ContextOutput{
		Tag:   c.Record.CitationTag,
		File:  c.Record.RelativePath,
		Score: c.Score,
		Text:  c.Record.Text,
	}
}
