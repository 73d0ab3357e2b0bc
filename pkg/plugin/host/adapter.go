package host

import (
	"context"

	"github.com/spetr/mcp-coderag/pkg/plugin/shared"
	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// EmbeddingAdapter adapts a plugin EmbeddingProvider to the
// provider.EmbeddingProvider interface.
type EmbeddingAdapter struct {
	plugin shared.EmbeddingProvider
}

// NewEmbeddingAdapter creates a new embedding adapter.
func NewEmbeddingAdapter(p shared.EmbeddingProvider) *EmbeddingAdapter {
	return &EmbeddingAdapter{plugin: p}
}

// Name returns the provider name.
func (a *EmbeddingAdapter) Name() string {
	return a.plugin.Name()
}

// Identity returns the signature tagging vectors from this plugin.
func (a *EmbeddingAdapter) Identity() types.EmbeddingSignature {
	return types.EmbeddingSignature{
		Provider:   a.plugin.Name(),
		Model:      a.plugin.Model(),
		Dimensions: a.plugin.Dimensions(),
	}
}

// Embed generates embeddings for the given texts. The net/rpc bridge
// has no context support, so cancellation is only checked up front.
func (a *EmbeddingAdapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return a.plugin.Embed(texts)
}

// Dimensions returns the embedding dimensions.
func (a *EmbeddingAdapter) Dimensions() int {
	return a.plugin.Dimensions()
}

// MaxBatchSize returns the maximum batch size.
func (a *EmbeddingAdapter) MaxBatchSize() int {
	return a.plugin.MaxBatchSize()
}

// Available reports whether the plugin can serve requests.
func (a *EmbeddingAdapter) Available(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return a.plugin.Available()
}

// Close closes the provider.
func (a *EmbeddingAdapter) Close() error {
	return a.plugin.Close()
}

var _ provider.EmbeddingProvider = (*EmbeddingAdapter)(nil)
