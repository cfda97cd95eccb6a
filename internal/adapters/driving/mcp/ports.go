package mcp

import (
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driving"
)

// ManifestReader reads the content-hash manifest.
type ManifestReader interface {
	Load() (*domain.Manifest, error)
}

// Ports aggregates the services the MCP server depends on.
type Ports struct {
	// Pipeline answers questions over a loaded index.
	Pipeline driving.PipelineService

	// Manifest backs the manifest resource. Optional.
	Manifest ManifestReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
