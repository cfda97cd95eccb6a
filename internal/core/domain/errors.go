package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds. Every error returned by the pipeline wraps exactly one of
// these so callers can branch with errors.Is.
var (
	// ErrConfig indicates the pipeline is misconfigured for the requested work.
	ErrConfig = errors.New("configuration error")

	// ErrInput indicates the caller supplied unusable input.
	ErrInput = errors.New("input error")

	// ErrExternal indicates a model-serving call failed.
	ErrExternal = errors.New("external service error")

	// ErrTimeout indicates a model-serving call exceeded its deadline.
	ErrTimeout = errors.New("external service timeout")
)

// Configuration errors.
var (
	// ErrExtractorUnavailable indicates a file type is present in the folder
	// but the extractor for it cannot run on this machine.
	ErrExtractorUnavailable = fmt.Errorf("%w: extractor unavailable", ErrConfig)

	// ErrNotIndexed indicates a query was attempted before any index was built.
	ErrNotIndexed = fmt.Errorf("%w: index not found, build index first", ErrConfig)

	// ErrUnknownProvider indicates an unrecognised AI provider name.
	ErrUnknownProvider = fmt.Errorf("%w: unknown provider", ErrConfig)

	// ErrMissingAPIKey indicates a cloud provider was selected without a key.
	ErrMissingAPIKey = fmt.Errorf("%w: missing API key", ErrConfig)
)

// Input errors.
var (
	// ErrFolderNotFound indicates the ingest folder does not exist.
	ErrFolderNotFound = fmt.Errorf("%w: folder not found", ErrInput)

	// ErrNoSupportedFiles indicates the folder holds no file of a known type.
	ErrNoSupportedFiles = fmt.Errorf("%w: no supported files found in folder", ErrInput)

	// ErrNoTextExtracted indicates every supported file yielded empty text.
	ErrNoTextExtracted = fmt.Errorf("%w: no text extracted from supported files", ErrInput)

	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = fmt.Errorf("%w: question is empty", ErrInput)
)

// ErrNotReady indicates the pipeline has no index loaded.
var ErrNotReady = errors.New("pipeline not ready")

// ErrDimensionMismatch indicates vectors of differing length were mixed.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ClassifyExternal wraps err from a call to the named service as either
// ErrTimeout or ErrExternal. Nil stays nil and already classified errors
// pass through unchanged.
func ClassifyExternal(service string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrExternal) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, service, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, service, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrExternal, service, err)
}
