// Package search implements semantic similarity search over indexed
// projects.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spetr/mcp-coderag/internal/index"
	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// Engine handles search operations.
type Engine struct {
	store       provider.VectorStore
	embedding   provider.EmbeddingProvider
	defaultTopK int
}

// Config contains search engine configuration.
type Config struct {
	Store       provider.VectorStore
	Embedding   provider.EmbeddingProvider
	DefaultTopK int
}

// New creates a new search engine.
func New(cfg Config) *Engine {
	topK := cfg.DefaultTopK
	if topK <= 0 {
		topK = 10
	}
	return &Engine{
		store:       cfg.Store,
		embedding:   cfg.Embedding,
		defaultTopK: topK,
	}
}

// Search embeds the query and returns the top-k most similar chunks
// from a project's collection, ranked by similarity descending with
// ties broken by file path then start line. Fewer than k results are
// returned when the collection is smaller; nothing is ever padded.
func (e *Engine) Search(ctx context.Context, projectPath string, req *types.SearchRequest) ([]*types.SearchResult, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	collection := types.CollectionID(absPath)

	manifest, err := e.store.GetManifest(collection)
	if err != nil {
		return nil, err
	}
	if err := index.CheckCompatibility(manifest, e.embedding.Identity()); err != nil {
		return nil, err
	}

	if req.TopK <= 0 {
		req.TopK = e.defaultTopK
	}

	if len(req.QueryVec) == 0 {
		if req.Query == "" {
			return nil, fmt.Errorf("empty query")
		}
		embeddings, err := e.embedding.Embed(ctx, []string{req.Query})
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		req.QueryVec = embeddings[0]
	}

	results, err := e.store.Search(ctx, collection, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	rankResults(results)
	if len(results) > req.TopK {
		results = results[:req.TopK]
	}
	return results, nil
}

// SearchModifiedFiles restricts a search to files touched in the
// working tree and recent commits, via a query-time path filter so the
// store still fills top-k from eligible chunks only.
func (e *Engine) SearchModifiedFiles(ctx context.Context, projectPath string, req *types.SearchRequest, commits int) ([]*types.SearchResult, error) {
	modified, err := index.ModifiedFiles(ctx, projectPath, commits)
	if err != nil {
		return nil, fmt.Errorf("listing modified files: %w", err)
	}
	if len(modified) == 0 {
		return nil, nil
	}

	req.PathAllowList = modified
	return e.Search(ctx, projectPath, req)
}

// rankResults enforces the deterministic result order. The store
// already sorts by distance, but ties in float similarity across
// backends make the explicit tie-break authoritative here.
func rankResults(results []*types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if results[i].Chunk.FilePath != results[j].Chunk.FilePath {
			return results[i].Chunk.FilePath < results[j].Chunk.FilePath
		}
		return results[i].Chunk.StartLine < results[j].Chunk.StartLine
	})
}
