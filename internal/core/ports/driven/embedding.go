package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Vectors are returned as produced by the model. Unit normalisation is the
// caller's job so every provider is treated alike.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
