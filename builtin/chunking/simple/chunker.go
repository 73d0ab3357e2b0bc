// Package simple implements a sliding-window chunking strategy.
// This is the fallback when TreeSitter is not available or doesn't
// support the language: fixed-size line windows with a fixed overlap,
// so a boundary crossing a logical unit is still covered at least once.
package simple

import (
	"path/filepath"
	"strings"

	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// Default values
const (
	DefaultWindowLines = 50 // lines per window
	DefaultStepLines   = 40 // window minus overlap
)

// Config contains configuration for sliding-window chunking.
type Config struct {
	WindowLines int // Lines per window
	StepLines   int // Step between window starts (overlap = window - step)
}

// Chunker implements the sliding-window chunking strategy.
type Chunker struct {
	config Config
}

// New creates a new sliding-window chunker.
func New(cfg Config) *Chunker {
	if cfg.WindowLines <= 0 {
		cfg.WindowLines = DefaultWindowLines
	}
	if cfg.StepLines <= 0 || cfg.StepLines > cfg.WindowLines {
		cfg.StepLines = DefaultStepLines
		if cfg.StepLines > cfg.WindowLines {
			cfg.StepLines = cfg.WindowLines
		}
	}
	return &Chunker{config: cfg}
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return "simple"
}

// Chunk splits a file into fixed-size overlapping line windows. Files
// that fit in a single window become one chunk.
func (c *Chunker) Chunk(file *types.SourceFile) ([]*types.Chunk, error) {
	content := string(file.Content)
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	lines := strings.Split(content, "\n")
	// A trailing newline yields a phantom empty last element.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) <= c.config.WindowLines {
		chunk := &types.Chunk{
			FilePath:  file.Path,
			Language:  file.Language,
			Content:   strings.Join(lines, "\n"),
			Kind:      types.ChunkKindBlock,
			StartLine: 1,
			EndLine:   len(lines),
		}
		chunk.Hash = chunk.ComputeHash()
		chunk.ID = chunk.GenerateID()
		return []*types.Chunk{chunk}, nil
	}

	var chunks []*types.Chunk
	for start := 0; start < len(lines); start += c.config.StepLines {
		end := start + c.config.WindowLines
		if end > len(lines) {
			end = len(lines)
		}

		window := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(window) != "" {
			chunk := &types.Chunk{
				FilePath:  file.Path,
				Language:  file.Language,
				Content:   window,
				Kind:      types.ChunkKindBlock,
				StartLine: start + 1,
				EndLine:   end,
			}
			chunk.Hash = chunk.ComputeHash()
			chunk.ID = chunk.GenerateID()
			chunks = append(chunks, chunk)
		}

		if end == len(lines) {
			break
		}
	}

	return chunks, nil
}

// SupportedLanguages returns an empty slice: the sliding window works
// with any text.
func (c *Chunker) SupportedLanguages() []string {
	return nil
}

// SupportsLanguage returns true for any language.
func (c *Chunker) SupportsLanguage(lang string) bool {
	return true
}

// Close releases resources.
func (c *Chunker) Close() error {
	return nil
}

// DetectLanguage detects language from file extension.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.ToLower(filepath.Base(path))

	// Handle special filenames first
	if base == "dockerfile" {
		return "dockerfile"
	}

	switch ext {
	// Core programming languages
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".jsx":
		return "jsx"
	case ".tsx":
		return "tsx"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".c":
		return "c"
	case ".cpp", ".cc", ".cxx":
		return "cpp"
	case ".h", ".hpp":
		return "h"
	case ".rb":
		return "ruby"
	case ".php":
		return "php"
	case ".swift":
		return "swift"
	case ".kt", ".kts":
		return "kotlin"
	case ".scala", ".sc":
		return "scala"
	case ".cs":
		return "csharp"
	case ".lua":
		return "lua"
	case ".sql":
		return "sql"
	case ".dart":
		return "dart"
	case ".r":
		return "r"
	case ".ex", ".exs":
		return "elixir"
	case ".ml", ".mli":
		return "ocaml"

	// Markup and data formats
	case ".html", ".htm", ".xhtml":
		return "html"
	case ".css":
		return "css"
	case ".svelte":
		return "svelte"
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".proto":
		return "proto"

	// Shell and scripting
	case ".sh", ".bash":
		return "bash"
	case ".ps1", ".psm1", ".psd1":
		return "powershell"

	// Infrastructure
	case ".tf", ".hcl":
		return "hcl"

	// Pascal family
	case ".pas", ".pp", ".dpr":
		return "pascal"

	// Visual Basic
	case ".vb":
		return "vbnet"

	// Functional languages
	case ".hs":
		return "haskell"
	case ".erl":
		return "erlang"
	case ".pl", ".pm":
		return "perl"
	case ".jl":
		return "julia"

	default:
		return "text"
	}
}

// Ensure Chunker implements ChunkingStrategy interface
var _ provider.ChunkingStrategy = (*Chunker)(nil)
