// Package voyage implements EmbeddingProvider using the Voyage AI API.
package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// Default values
const (
	DefaultModel      = "voyage-code-2"
	DefaultEndpoint   = "https://api.voyageai.com/v1"
	DefaultBatchSize  = 128
	DefaultDimensions = 1536 // voyage-code-2 default
	MaxInputChars     = 6000
)

// APIKeyEnv is consulted when no key is configured.
const APIKeyEnv = "VOYAGE_API_KEY"

// Model dimensions for known models
var modelDimensions = map[string]int{
	"voyage-2":       1024,
	"voyage-code-2":  1536,
	"voyage-code-3":  1024,
	"voyage-large-2": 1536,
}

// Config contains Voyage provider configuration.
type Config struct {
	Model     string
	Endpoint  string
	APIKey    string // If empty, uses VOYAGE_API_KEY env var
	BatchSize int
	Timeout   time.Duration
}

// Provider implements the EmbeddingProvider interface for Voyage AI.
type Provider struct {
	config     Config
	apiKey     string
	client     *http.Client
	dimensions int
}

// New creates a new Voyage embedding provider.
func New(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}

	dimensions := DefaultDimensions
	if d, ok := modelDimensions[cfg.Model]; ok {
		dimensions = d
	}

	return &Provider{
		config:     cfg,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: cfg.Timeout},
		dimensions: dimensions,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "voyage"
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

	jsonBody, err := json.Marshal(map[string]any{
		"input": input,
		"model": p.config.Model,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderHTTPError{Provider: p.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) != len(input) {
		return nil, fmt.Errorf("voyage returned %d embeddings for %d inputs", len(result.Data), len(input))
	}

	embeddings := make([][]float32, len(input))
	for _, d := range result.Data {
		embeddings[d.Index] = d.Embedding
	}

	return embeddings, nil
}

// Dimensions returns the embedding dimensions.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// MaxBatchSize returns the maximum batch size.
func (p *Provider) MaxBatchSize() int {
	return p.config.BatchSize
}

// Available reports whether a credential is present.
func (p *Provider) Available(ctx context.Context) bool {
	return p.apiKey != ""
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}

// Ensure Provider implements EmbeddingProvider interface
var _ provider.EmbeddingProvider = (*Provider)(nil)
