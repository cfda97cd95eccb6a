// Package domain holds the foldrag entities and rules that need no I/O.
//
//   - ChunkRecord and its citation tag formats
//   - SourceFile, found while walking an ingest folder
//   - Manifest and ChangeSet, per-file content hashes between runs
//   - Config, the explicit pipeline configuration with its defaults
//   - the error kinds (configuration, input, external, timeout)
//
// Only the standard library may be imported here.
package domain
