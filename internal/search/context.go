package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spetr/mcp-coderag/pkg/types"
)

// DefaultContextLines is how many lines are shown on each side of a
// chunk when the caller does not say otherwise.
const DefaultContextLines = 15

const (
	markerStart = ">>> CHUNK START >>> "
	markerEnd   = "<<< CHUNK END <<<   "
	markerNone  = "                   "
)

// ChunkContext reads a source file and returns the start–end span with
// surrounding lines, prefixed with markers showing where the chunk
// begins and ends. The span comes from a prior search result; the
// project must still be indexed. The expanded range is clamped to the
// file's boundaries.
func (e *Engine) ChunkContext(projectPath, filePath string, startLine, endLine, before, after int) (*types.ChunkContext, error) {
	absProject, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetManifest(types.CollectionID(absProject)); err != nil {
		return nil, err
	}

	if startLine < 1 || endLine < 1 {
		return nil, fmt.Errorf("line numbers must be >= 1")
	}
	if startLine > endLine {
		return nil, fmt.Errorf("start_line (%d) cannot be greater than end_line (%d)", startLine, endLine)
	}
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	absFile := filePath
	if !filepath.IsAbs(absFile) {
		absFile = filepath.Join(absProject, filepath.FromSlash(filePath))
	}
	content, err := os.ReadFile(absFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, absFile)
		}
		return nil, fmt.Errorf("reading %s: %w", absFile, err)
	}

	lines := strings.Split(string(content), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	total := len(lines)
	if startLine > total {
		return nil, fmt.Errorf("start_line (%d) exceeds file length (%d)", startLine, total)
	}

	expandedStart := startLine - before
	if expandedStart < 1 {
		expandedStart = 1
	}
	expandedEnd := endLine + after
	if expandedEnd > total {
		expandedEnd = total
	}

	var b strings.Builder
	for i, line := range lines[expandedStart-1 : expandedEnd] {
		num := expandedStart + i
		if i > 0 {
			b.WriteByte('\n')
		}
		switch {
		case num == startLine && num == endLine:
			b.WriteString(markerStart + line + " <<< CHUNK END <<<")
		case num == startLine:
			b.WriteString(markerStart + line)
		case num == endLine:
			b.WriteString(markerEnd + line)
		default:
			b.WriteString(markerNone + line)
		}
	}

	return &types.ChunkContext{
		FilePath:        absFile,
		Content:         b.String(),
		ActualStartLine: expandedStart,
		ActualEndLine:   expandedEnd,
		ChunkStartLine:  startLine - expandedStart + 1,
		ChunkEndLine:    endLine - expandedStart + 1,
	}, nil
}
