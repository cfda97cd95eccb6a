// Package services holds the pipeline logic: ingestion, embedding, retrieval
// and answering, plus settings resolution.
//
// Everything here talks to the outside world through driven ports, so tests
// run against in-memory stores and mocked model clients.
package services
