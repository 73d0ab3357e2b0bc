// Package provider defines interfaces for pluggable components.
package provider

import (
	"context"
	"time"

	"github.com/spetr/mcp-coderag/pkg/types"
)

// EmbeddingProvider generates vector embeddings from text.
type EmbeddingProvider interface {
	// Name returns the provider name (e.g., "ollama", "openai").
	Name() string

	// Identity returns the (provider, model, dimension) signature that
	// tags every vector this provider produces. A collection only
	// accepts vectors whose signature matches its stored one.
	Identity() types.EmbeddingSignature

	// Embed generates embeddings for the given texts.
	// Returns a slice of embeddings, one for each input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension size.
	Dimensions() int

	// MaxBatchSize returns the maximum number of texts per batch.
	MaxBatchSize() int

	// Available reports whether the provider can serve requests right
	// now (service reachable, credential present). Used by the
	// priority-ordered provider probe.
	Available(ctx context.Context) bool

	// Close releases any resources.
	Close() error
}

// EmbeddingConfig contains configuration for embedding providers.
type EmbeddingConfig struct {
	Provider  string        // "ollama", "openai", "google", "voyage"
	Model     string        // Model name
	Endpoint  string        // API endpoint (for Ollama)
	APIKey    string        // API key (for OpenAI, Google, Voyage)
	BatchSize int           // Documents per batch
	Timeout   time.Duration // Per-request timeout
}
