package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotIndexed is returned when search, topology or status is
	// requested for a project that has never been indexed.
	ErrNotIndexed = errors.New("project not indexed, run index_project first")

	// ErrParseError is returned when AST parsing fails. Chunking
	// recovers from it locally via the fallback strategy.
	ErrParseError = errors.New("parse error")

	// ErrEmbeddingFailed is returned when embedding generation fails
	// after retries are exhausted.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStoreWrite is returned when the vector store rejects a write.
	// It aborts the whole in-flight index pass; the manifest is left at
	// its last-known-good state.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled is returned when an operation is cancelled.
	ErrCancelled = errors.New("operation cancelled")
)

// CompatibilityError reports that the active embedding signature does
// not match the one stored in the project manifest. It is fatal for the
// requested operation; the only recovery is a full re-index.
type CompatibilityError struct {
	ProjectPath string
	Stored      EmbeddingSignature
	Active      EmbeddingSignature
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("embedding mismatch for %s: index built with %s, active provider is %s; run reindex_project to rebuild",
		e.ProjectPath, e.Stored, e.Active)
}

// ProviderUnavailableError reports that no embedding provider in the
// priority chain passed its availability check.
type ProviderUnavailableError struct {
	Attempted []string
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("no embedding provider available (tried: %s)", strings.Join(e.Attempted, ", "))
}

// ProviderHTTPError carries the HTTP status of a failed provider call
// so the retry policy can classify it.
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderHTTPError) Error() string {
	msg := fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Retryable reports whether the status indicates a transient failure.
func (e *ProviderHTTPError) Retryable() bool {
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
