package driven

import "github.com/custodia-labs/foldrag/internal/core/domain"

// VectorIndex is an exact inner-product index rebuilt from scratch on every
// ingestion run. Vectors are expected to be unit length so scores are cosine
// similarities.
type VectorIndex interface {
	// Build replaces the index contents with vectors.
	Build(vectors [][]float32) error

	// Search returns up to k hits ordered best-first.
	Search(query []float32, k int) ([]domain.Hit, error)

	// Save writes the index to a single file.
	Save(path string) error

	// Load replaces the index contents with the file at path.
	Load(path string) error

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector size, or 0 when empty.
	Dimensions() int
}
