package simple

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spetr/mcp-coderag/pkg/types"
)

func makeFile(lines int) *types.SourceFile {
	var sb strings.Builder
	for i := 1; i <= lines; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	return &types.SourceFile{
		Path:     "test.txt",
		Content:  []byte(sb.String()),
		Language: "text",
	}
}

func TestChunkSmallFile(t *testing.T) {
	c := New(Config{WindowLines: 50, StepLines: 40})

	chunks, err := c.Chunk(makeFile(10))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 10 {
		t.Errorf("span = %d-%d, want 1-10", chunks[0].StartLine, chunks[0].EndLine)
	}
	if chunks[0].Kind != types.ChunkKindBlock {
		t.Errorf("kind = %q, want block", chunks[0].Kind)
	}
	if chunks[0].ID == "" {
		t.Error("chunk ID not set")
	}
}

func TestChunkWindowing(t *testing.T) {
	c := New(Config{WindowLines: 50, StepLines: 40})

	chunks, err := c.Chunk(makeFile(120))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}

	wantSpans := [][2]int{{1, 50}, {41, 90}, {81, 120}}
	for i, want := range wantSpans {
		if chunks[i].StartLine != want[0] || chunks[i].EndLine != want[1] {
			t.Errorf("chunk %d span = %d-%d, want %d-%d",
				i, chunks[i].StartLine, chunks[i].EndLine, want[0], want[1])
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	c := New(Config{WindowLines: 50, StepLines: 40})

	chunks, err := c.Chunk(makeFile(100))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want at least 2", len(chunks))
	}

	// Consecutive windows share window-step lines.
	if !strings.Contains(chunks[1].Content, "line 41") || !strings.Contains(chunks[0].Content, "line 41") {
		t.Error("line 41 should appear in both the first and second window")
	}
}

func TestChunkEmptyFile(t *testing.T) {
	c := New(Config{})

	chunks, err := c.Chunk(&types.SourceFile{Path: "empty.txt", Content: []byte("  \n\t\n")})
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0 for blank file", len(chunks))
	}
}

func TestChunkDeterministicIDs(t *testing.T) {
	c := New(Config{WindowLines: 50, StepLines: 40})
	file := makeFile(120)

	first, err := c.Chunk(file)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Chunk(file)
	if err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d id changed: %q != %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestNewClampsStep(t *testing.T) {
	c := New(Config{WindowLines: 10, StepLines: 100})
	if c.config.StepLines > c.config.WindowLines {
		t.Errorf("step %d exceeds window %d", c.config.StepLines, c.config.WindowLines)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"app.py", "python"},
		{"index.ts", "typescript"},
		{"lib.rs", "rust"},
		{"Dockerfile", "dockerfile"},
		{"config.yaml", "yaml"},
		{"notes.txt", "text"},
		{"README.md", "markdown"},
		{"stats.r", "r"},
		{"model.R", "r"},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSupportsLanguage(t *testing.T) {
	c := New(Config{})
	for _, lang := range []string{"go", "cobol", "text", ""} {
		if !c.SupportsLanguage(lang) {
			t.Errorf("SupportsLanguage(%q) = false, want true", lang)
		}
	}
}
