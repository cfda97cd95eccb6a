package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for foldrag resources.
	uriScheme = "foldrag://"

	manifestURI = uriScheme + "manifest"
	filesURI    = uriScheme + "files"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         manifestURI,
		Name:        "manifest",
		Description: "Content hashes recorded by the last ingestion",
		MIMEType:    "application/json",
	}, s.handleManifestResource)

	s.server.AddResource(&mcp.Resource{
		URI:         filesURI,
		Name:        "files",
		Description: "Indexed files with their record counts",
		MIMEType:    "application/json",
	}, s.handleFilesResource)
}

// manifestDoc mirrors the manifest file layout.
type manifestDoc struct {
	Files     map[string]domain.ManifestEntry `json:"files"`
	RunID     string                          `json:"run_id,omitempty"`
	UpdatedAt string                          `json:"updated_at,omitempty"`
}

func (s *Server) handleManifestResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifest == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	m, err := s.ports.Manifest.Load()
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	doc := manifestDoc{Files: m.Files, RunID: m.RunID}
	if !m.UpdatedAt.IsZero() {
		doc.UpdatedAt = m.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return jsonResult(req.Params.URI, doc)
}

func (s *Server) handleFilesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResult(req.Params.URI, domain.SummariseFiles(s.ports.Pipeline.Records()))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
