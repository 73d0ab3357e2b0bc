package provider

import (
	"github.com/spetr/mcp-coderag/pkg/types"
)

// ChunkingStrategy splits source files into chunks.
type ChunkingStrategy interface {
	// Name returns the strategy name (e.g., "treesitter", "simple").
	Name() string

	// Chunk splits a source file into ordered, non-overlapping chunks.
	// Returns types.ErrParseError (wrapped) when the file cannot be
	// parsed; callers degrade to a fallback strategy for that file.
	Chunk(file *types.SourceFile) ([]*types.Chunk, error)

	// SupportedLanguages returns languages this strategy supports.
	// Empty slice means all languages (for simple chunking).
	SupportedLanguages() []string

	// SupportsLanguage checks if a language is supported.
	SupportsLanguage(lang string) bool

	// Close releases any resources.
	Close() error
}

// ChunkingConfig contains configuration for chunking strategies.
type ChunkingConfig struct {
	Strategy     string // "treesitter", "simple"
	MaxChunkSize int    // Max bytes per chunk before nested definitions are split out
	WindowLines  int    // Sliding-window size for the fallback strategy
	StepLines    int    // Sliding-window step (window minus overlap)
}
