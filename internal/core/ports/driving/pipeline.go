package driving

import (
	"context"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// PipelineService ingests folders and answers questions over the result.
type PipelineService interface {
	// Ingest rebuilds the index from every supported file under folder.
	Ingest(ctx context.Context, folder string) (*domain.IngestReport, error)

	// Load reads previously saved artifacts from the store directory.
	Load(ctx context.Context) error

	// Query answers question using the top matching chunks.
	Query(ctx context.Context, question string) (*domain.Answer, error)

	// Retrieve returns the k best contexts for question without asking the model.
	Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedContext, error)

	// Records returns the chunk records of the current index.
	Records() []domain.ChunkRecord

	// State returns the current lifecycle state.
	State() domain.PipelineState
}
