package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and tags", func(t *testing.T) {
		pipeline := &mockPipeline{answer: &domain.Answer{
			Text: "Ten widgets [file:stock.csv row002 c000].",
			Contexts: []domain.RetrievedContext{
				{Record: domain.ChunkRecord{CitationTag: "[file:stock.csv row002 c000]"}},
				{Record: domain.ChunkRecord{CitationTag: "[file:notes.txt c000]"}},
			},
		}}
		server := newTestServer(t, &Ports{Pipeline: pipeline})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "How many widgets?"})

		require.NoError(t, err)
		assert.Equal(t, "How many widgets?", pipeline.lastQuery)
		assert.Equal(t, "Ten widgets [file:stock.csv row002 c000].", output.Answer)
		assert.Equal(t, []string{"[file:stock.csv row002 c000]", "[file:notes.txt c000]"}, output.Tags)
		assert.False(t, output.Fallback)
	})

	t.Run("fallback has no tags", func(t *testing.T) {
		pipeline := &mockPipeline{answer: &domain.Answer{Text: domain.FallbackAnswer, Fallback: true}}
		server := newTestServer(t, &Ports{Pipeline: pipeline})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.NoError(t, err)
		assert.True(t, output.Fallback)
		assert.Equal(t, domain.FallbackAnswer, output.Answer)
		assert.Empty(t, output.Tags)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Pipeline: &mockPipeline{err: domain.ErrNotReady}})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrNotReady)
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked contexts", func(t *testing.T) {
		pipeline := &mockPipeline{contexts: []domain.RetrievedContext{
			{
				Record: domain.ChunkRecord{
					RelativePath: "report.pdf",
					CitationTag:  "[file:report.pdf p002 c000]",
					Text:         "Revenue grew",
				},
				Score: 0.91,
			},
		}}
		server := newTestServer(t, &Ports{Pipeline: pipeline})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Question: "revenue", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 3, pipeline.lastK)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "[file:report.pdf p002 c000]", output.Results[0].Tag)
		assert.Equal(t, "report.pdf", output.Results[0].File)
		assert.InDelta(t, 0.91, output.Results[0].Score, 1e-6)
		assert.Equal(t, "Revenue grew", output.Results[0].Text)
	})

	t.Run("default limit is 10", func(t *testing.T) {
		pipeline := &mockPipeline{}
		server := newTestServer(t, &Ports{Pipeline: pipeline})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Question: "q"})

		require.NoError(t, err)
		assert.Equal(t, 10, pipeline.lastK)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Pipeline: &mockPipeline{err: errors.New("index gone")}})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Question: "q"})

		assert.Error(t, err)
	})
}
