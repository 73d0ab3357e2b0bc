// Package builtin registers all built-in providers with the default registry.
package builtin

import (
	simpleChunker "github.com/spetr/mcp-coderag/builtin/chunking/simple"
	tsChunker "github.com/spetr/mcp-coderag/builtin/chunking/treesitter"
	googleEmbed "github.com/spetr/mcp-coderag/builtin/embedding/google"
	ollamaEmbed "github.com/spetr/mcp-coderag/builtin/embedding/ollama"
	openaiEmbed "github.com/spetr/mcp-coderag/builtin/embedding/openai"
	voyageEmbed "github.com/spetr/mcp-coderag/builtin/embedding/voyage"
	"github.com/spetr/mcp-coderag/builtin/vectorstore/sqlitevec"
	"github.com/spetr/mcp-coderag/pkg/provider"
)

func init() {
	// Register embedding providers
	provider.RegisterEmbedding("ollama", func(cfg provider.EmbeddingConfig) (provider.EmbeddingProvider, error) {
		return ollamaEmbed.New(ollamaEmbed.Config{
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}), nil
	})

	provider.RegisterEmbedding("openai", func(cfg provider.EmbeddingConfig) (provider.EmbeddingProvider, error) {
		return openaiEmbed.New(openaiEmbed.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
		}), nil
	})

	provider.RegisterEmbedding("google", func(cfg provider.EmbeddingConfig) (provider.EmbeddingProvider, error) {
		return googleEmbed.New(googleEmbed.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}), nil
	})

	provider.RegisterEmbedding("voyage", func(cfg provider.EmbeddingConfig) (provider.EmbeddingProvider, error) {
		return voyageEmbed.New(voyageEmbed.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
			Timeout:   cfg.Timeout,
		}), nil
	})

	// Register chunking strategies
	provider.RegisterChunking("treesitter", func(cfg provider.ChunkingConfig) (provider.ChunkingStrategy, error) {
		return tsChunker.New(tsChunker.Config{
			MaxChunkBytes: cfg.MaxChunkSize,
		}), nil
	})

	provider.RegisterChunking("simple", func(cfg provider.ChunkingConfig) (provider.ChunkingStrategy, error) {
		return simpleChunker.New(simpleChunker.Config{
			WindowLines: cfg.WindowLines,
			StepLines:   cfg.StepLines,
		}), nil
	})

	// Register vector stores
	provider.RegisterVectorStore("sqlitevec", func() (provider.VectorStore, error) {
		return sqlitevec.New(), nil
	})
}
