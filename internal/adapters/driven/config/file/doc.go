// Package file persists settings in a TOML file, by default foldrag.toml
// inside the store directory. Keys use dot notation and map onto nested
// tables.
package file
