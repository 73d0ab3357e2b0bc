// Package google implements EmbeddingProvider using the Gemini API.
package google

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
	DefaultModel      = "text-embedding-004"
	DefaultEndpoint   = "https://generativelanguage.googleapis.com/v1beta"
	DefaultBatchSize  = 100
	DefaultDimensions = 768
	MaxInputChars     = 6000
)

// APIKeyEnv is consulted when no key is configured. GOOGLE_API_KEY is
// accepted as a fallback.
const (
	APIKeyEnv         = "GEMINI_API_KEY"
	APIKeyFallbackEnv = "GOOGLE_API_KEY"
)

// Config contains Gemini provider configuration.
type Config struct {
	Model     string
	Endpoint  string
	APIKey    string // If empty, uses GEMINI_API_KEY / GOOGLE_API_KEY
	BatchSize int
	Timeout   time.Duration
}

// Provider implements the EmbeddingProvider interface for Gemini.
type Provider struct {
	config Config
	apiKey string
	client *http.Client
}

// New creates a new Gemini embedding provider.
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
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyFallbackEnv)
	}

	return &Provider{
		config: cfg,
		apiKey: apiKey,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "google"
}

// Identity returns the signature tagging vectors from this provider.
func (p *Provider) Identity() types.EmbeddingSignature {
	return types.EmbeddingSignature{
		Provider:   p.Name(),
		Model:      p.config.Model,
		Dimensions: p.Dimensions(),
	}
}

type embedContent struct {
	Parts []struct {
		Text string `json:"text"`
	} `json:"parts"`
}

type embedRequest struct {
	Model   string       `json:"model"`
	Content embedContent `json:"content"`
}

// Embed generates embeddings for the given texts via the
// batchEmbedContents endpoint.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]embedRequest, len(texts))
	for i, text := range texts {
		if len(text) > MaxInputChars {
			text = text[:MaxInputChars]
		}
		var content embedContent
		content.Parts = append(content.Parts, struct {
			Text string `json:"text"`
		}{Text: text})
		requests[i] = embedRequest{
			Model:   "models/" + p.config.Model,
			Content: content,
		}
	}

	jsonBody, err := json.Marshal(map[string]any{"requests": requests})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents?key=%s", p.config.Endpoint, p.config.Model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &types.ProviderHTTPError{Provider: p.Name(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(result.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for i, e := range result.Embeddings {
		embeddings[i] = e.Values
	}

	return embeddings, nil
}

// Dimensions returns the embedding dimensions.
func (p *Provider) Dimensions() int {
	return DefaultDimensions
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
