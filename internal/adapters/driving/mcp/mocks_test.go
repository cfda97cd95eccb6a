package mcp

import (
	"context"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driving"
)

// mockPipeline is a mock implementation of driving.PipelineService.
type mockPipeline struct {
	answer    *domain.Answer
	contexts  []domain.RetrievedContext
	records   []domain.ChunkRecord
	err       error
	lastK     int
	lastQuery string
}

var _ driving.PipelineService = (*mockPipeline)(nil)

func (m *mockPipeline) Ingest(_ context.Context, _ string) (*domain.IngestReport, error) {
	return nil, m.err
}

func (m *mockPipeline) Load(_ context.Context) error {
	return m.err
}

func (m *mockPipeline) Query(_ context.Context, question string) (*domain.Answer, error) {
	m.lastQuery = question
	return m.answer, m.err
}

func (m *mockPipeline) Retrieve(_ context.Context, question string, k int) ([]domain.RetrievedContext, error) {
	m.lastQuery = question
	m.lastK = k
	return m.contexts, m.err
}

func (m *mockPipeline) Records() []domain.ChunkRecord {
	return m.records
}

func (m *mockPipeline) State() domain.PipelineState {
	return domain.StateReady
}

// mockManifest is a mock ManifestReader.
type mockManifest struct {
	manifest *domain.Manifest
	err      error
}

func (m *mockManifest) Load() (*domain.Manifest, error) {
	return m.manifest, m.err
}
