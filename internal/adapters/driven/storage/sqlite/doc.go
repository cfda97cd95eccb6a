// Package sqlite stores chunk metadata in a single SQLite file.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database holds the records of the latest index build;
// the position column is the row number of the matching vector in the
// index file.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files and applied versions are recorded in schema_migrations.
package sqlite
