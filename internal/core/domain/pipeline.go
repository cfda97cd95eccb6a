package domain

import "time"

// FallbackAnswer is returned verbatim when retrieval finds no context.
const FallbackAnswer = "I don't know (not in RAG folder)."

// PipelineState tracks the orchestrator lifecycle.
type PipelineState string

// Pipeline states.
const (
	StateUninitialized PipelineState = "uninitialized"
	StateIngesting     PipelineState = "ingesting"
	StateLoading       PipelineState = "loading"
	StateReady         PipelineState = "ready"
	StateFailed        PipelineState = "failed"
)

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// IngestReport summarises a completed ingestion run.
type IngestReport struct {
	RunID        string
	Folder       string
	Files        int
	Skipped      []string
	Chunks       int
	Dimensions   int
	Changes      ChangeSet
	IndexPath    string
	MetaPath     string
	ManifestPath string
	Duration     time.Duration
}

// RetrievedContext is one chunk selected for a question.
type RetrievedContext struct {
	Record ChunkRecord
	Score  float32
}

// Answer is the result of a query.
type Answer struct {
	Question string
	Text     string
	Contexts []RetrievedContext

	// Fallback is true when no context was found and the model was not asked.
	Fallback bool
}
