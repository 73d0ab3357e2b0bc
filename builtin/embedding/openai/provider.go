// Package openai implements EmbeddingProvider using OpenAI's API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// Default values
const (
	DefaultModel      = "text-embedding-3-small"
	DefaultBatchSize  = 100  // OpenAI supports up to 2048 inputs per request
	DefaultDimensions = 1536 // text-embedding-3-small default
	MaxInputChars     = 6000 // oversize fragments are truncated before embedding
)

// APIKeyEnv is consulted when no key is configured.
const APIKeyEnv = "OPENAI_API_KEY"

// Model dimensions for known models
var modelDimensions = map[string]int{
	"text-embedding-ada-002": 1536,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
}

// Config contains OpenAI provider configuration.
type Config struct {
	Model      string
	APIKey     string // If empty, uses OPENAI_API_KEY env var
	BaseURL    string // Optional: custom API endpoint (for Azure, etc.)
	BatchSize  int
	Dimensions int // Set to 0 to use default for model
}

// Provider implements the EmbeddingProvider interface for OpenAI.
type Provider struct {
	config     Config
	client     *openai.Client
	hasKey     bool
	dimensions int
	mu         sync.RWMutex
}

// New creates a new OpenAI embedding provider.
func New(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		if d, ok := modelDimensions[cfg.Model]; ok {
			dimensions = d
		} else {
			dimensions = DefaultDimensions
		}
	}

	return &Provider{
		config:     cfg,
		client:     client,
		hasKey:     apiKey != "",
		dimensions: dimensions,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// Identity returns the signature tagging vectors from this provider.
func (p *Provider) Identity() types.EmbeddingSignature {
	return types.EmbeddingSignature{
		Provider:   p.Name(),
		Model:      p.config.Model,
		Dimensions: p.Dimensions(),
	}
}

// Embed generates embeddings for the given texts.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		if len(t) > MaxInputChars {
			t = t[:MaxInputChars]
		}
		input[i] = t
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: input,
		Model: openai.EmbeddingModel(p.config.Model),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &types.ProviderHTTPError{Provider: p.Name(), StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(input))
	}

	results := make([][]float32, len(input))
	for _, data := range resp.Data {
		results[data.Index] = data.Embedding
	}

	if len(resp.Data) > 0 {
		p.mu.Lock()
		if p.dimensions == 0 {
			p.dimensions = len(resp.Data[0].Embedding)
		}
		p.mu.Unlock()
	}

	return results, nil
}

// Dimensions returns the embedding dimensions.
func (p *Provider) Dimensions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dimensions
}

// MaxBatchSize returns the maximum batch size.
func (p *Provider) MaxBatchSize() int {
	return p.config.BatchSize
}

// Available reports whether a credential is present. No probe request
// is made; a bad key surfaces on the first embed call instead.
func (p *Provider) Available(ctx context.Context) bool {
	return p.hasKey
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

// Ensure Provider implements EmbeddingProvider interface
var _ provider.EmbeddingProvider = (*Provider)(nil)
