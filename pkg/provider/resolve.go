package provider

import (
	"context"
	"log/slog"

	"github.com/spetr/mcp-coderag/pkg/types"
)

// ResolveEmbedding walks a priority-ordered list of provider names and
// returns the first one that reports itself available. configFor
// supplies the per-provider configuration. Providers that fail the
// probe are closed before the next one is tried.
//
// Callers hold the returned provider as a process-wide handle; the
// chain is re-probed only on a forced configuration change, not per
// call.
func (r *Registry) ResolveEmbedding(ctx context.Context, order []string, configFor func(name string) EmbeddingConfig) (EmbeddingProvider, error) {
	attempted := make([]string, 0, len(order))

	for _, name := range order {
		attempted = append(attempted, name)

		p, err := r.CreateEmbedding(name, configFor(name))
		if err != nil {
			slog.Debug("embedding provider skipped", "provider", name, "error", err)
			continue
		}
		if p.Available(ctx) {
			slog.Info("embedding provider selected", "provider", name, "model", p.Identity().Model)
			return p, nil
		}
		_ = p.Close()
		slog.Debug("embedding provider unavailable", "provider", name)
	}

	return nil, &types.ProviderUnavailableError{Attempted: attempted}
}
