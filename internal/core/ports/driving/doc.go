// Package driving declares what the outer surfaces (the cobra commands, the
// MCP server and the folder watcher) may ask of the core. Implementations
// live in internal/core/services.
package driving
