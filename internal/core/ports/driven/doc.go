// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Extractor: turns one supported file into chunk records
//   - OCRService: turns a bitmap into text via a vision model
//   - EmbeddingService: turns text into a vector
//   - LLMService: chat completion with optional image attachments
//   - VectorIndex: flat inner-product index with save/load
//   - MetadataStore: ordered chunk records aligned with the index
//   - ManifestStore: per-file content hashes
//   - ConfigStore: application configuration
//   - ProgressReporter: progress of long-running steps
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, extractor, or normaliser package
package driven
