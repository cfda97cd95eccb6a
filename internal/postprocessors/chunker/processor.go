// Package chunker provides a fixed-size, overlapping text chunker.
package chunker

import (
	"github.com/custodia-labs/foldrag/internal/logger"
	"github.com/custodia-labs/foldrag/internal/normalisers/whitespace"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1200

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into fixed-size chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		logger.Warn("chunk overlap %d >= chunk size %d, windows will advance one character at a time",
			p.overlap, p.chunkSize)
	}

	return p
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk normalises text and splits it.
func (p *Processor) Chunk(text string) []string {
	return Split(whitespace.Normalize(text), p.chunkSize, p.overlap)
}

// Split cuts text into windows of size characters where each window starts
// overlap characters before the previous one ended. The last window ends at
// the end of text and iteration stops there. Empty text yields nil.
// Characters are runes, so multi-byte text is never cut mid-character.
func Split(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size < 1 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	n := len(runes)

	estimated := 1
	if size > overlap && n > overlap {
		estimated = (n-overlap)/(size-overlap) + 1
	}
	chunks := make([]string, 0, estimated)

	start := 0
	for {
		end := min(start+size, n)
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}

		next := end - overlap
		if next <= start {
			// overlap >= size would never advance
			next = start + 1
		}
		start = next
	}

	return chunks
}
