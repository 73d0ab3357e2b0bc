// Package types contains shared data types used across the coderag project.
package types

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SourceFile represents a source code file to be indexed.
type SourceFile struct {
	Path     string // Path relative to the project root
	AbsPath  string // Absolute path on disk
	Content  []byte // File content
	Language string // Detected language (go, python, javascript, etc.)
	Hash     string // SHA256 hash for incremental indexing
}

// ComputeHash calculates SHA256 hash of the file content.
func (f *SourceFile) ComputeHash() string {
	h := sha256.Sum256(f.Content)
	return hex.EncodeToString(h[:])
}

// ChunkKind classifies what kind of code span a chunk covers.
type ChunkKind string

const (
	ChunkKindFunction  ChunkKind = "function"
	ChunkKindClass     ChunkKind = "class"
	ChunkKindMethod    ChunkKind = "method"
	ChunkKindStatement ChunkKind = "statement"
	ChunkKindBlock     ChunkKind = "block"
	ChunkKindUnknown   ChunkKind = "unknown"
)

// Chunk is a contiguous span of one file, the atomic unit of indexing
// and retrieval. Chunks are created fresh on every chunking pass and
// never mutated; when a file changes, superseded ids are deleted and
// new ids inserted.
type Chunk struct {
	ID         string    // Deterministic, content-derived (see GenerateID)
	FilePath   string    // Path relative to the project root
	Language   string    // Programming language
	Content    string    // Raw text of the span
	Kind       ChunkKind // function, class, method, statement, block, unknown
	Name       string    // Symbol name, empty for anonymous spans
	ParentName string    // Enclosing scope name, if any
	StartLine  int       // 1-based, inclusive
	EndLine    int       // 1-based, inclusive
	Hash       string    // SHA256 of Content
}

// ComputeHash calculates SHA256 hash of the chunk content.
func (c *Chunk) ComputeHash() string {
	h := sha256.Sum256([]byte(c.Content))
	return hex.EncodeToString(h[:])
}

// GenerateID derives the chunk id from file path, line span and content
// hash. Identical spans of identical content always get the same id, so
// re-chunking an unchanged file is a pure no-op for the index diff.
func (c *Chunk) GenerateID() string {
	if c.Hash == "" {
		c.Hash = c.ComputeHash()
	}
	h := sha256.Sum256([]byte(c.FilePath + ":" + fmt.Sprintf("%d-%d", c.StartLine, c.EndLine) + ":" + c.Hash))
	return hex.EncodeToString(h[:8])
}

// ChunkWithEmbedding is a Chunk with its vector embedding.
type ChunkWithEmbedding struct {
	Chunk     *Chunk
	Embedding []float32
}

// EmbeddingSignature is the (provider, model, dimension) triple that
// must be uniform within one project's collection. Mixing signatures in
// a single collection is a consistency violation.
type EmbeddingSignature struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
}

// Equal reports whether two signatures are compatible.
func (s EmbeddingSignature) Equal(other EmbeddingSignature) bool {
	return s.Provider == other.Provider && s.Model == other.Model && s.Dimensions == other.Dimensions
}

func (s EmbeddingSignature) String() string {
	return fmt.Sprintf("%s/%s (%dd)", s.Provider, s.Model, s.Dimensions)
}

// IsZero reports whether the signature has never been set.
func (s EmbeddingSignature) IsZero() bool {
	return s.Provider == "" && s.Model == "" && s.Dimensions == 0
}

// ManifestFile is the durable per-file record inside a project
// manifest: the content hash of the file as last indexed, the chunk ids
// produced from it, and when it was indexed.
type ManifestFile struct {
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	ChunkIDs  []string  `json:"chunk_ids"`
	IndexedAt time.Time `json:"indexed_at"`
}

// ProjectManifest is a snapshot of a project's durable index record.
// The union of chunk ids across Files equals exactly the chunk ids
// present in the vector store for the project.
type ProjectManifest struct {
	ProjectPath string                  `json:"project_path"`
	Collection  string                  `json:"collection"`
	Signature   EmbeddingSignature      `json:"signature"`
	ConfigHash  string                  `json:"config_hash"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	Files       map[string]ManifestFile `json:"files"`
}

// ChunkIDs returns the union of chunk ids across all manifest files.
func (m *ProjectManifest) ChunkIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, f := range m.Files {
		for _, id := range f.ChunkIDs {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// CollectionID derives the stable collection identifier for a project
// root: basename plus a short digest of the absolute path.
func CollectionID(projectPath string) string {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	sum := md5.Sum([]byte(abs))
	base := strings.ReplaceAll(filepath.Base(abs), " ", "_")
	if len(base) > 30 {
		base = base[:30]
	}
	return base + "_" + hex.EncodeToString(sum[:])[:12]
}

// SearchRequest represents a similarity search against one project.
type SearchRequest struct {
	Query    string    // Natural-language query text
	QueryVec []float32 // Query embedding
	TopK     int       // Max results; fewer are returned if the collection is smaller

	// PathAllowList restricts candidates to chunks whose file path is
	// in the list. Applied as a metadata filter at query time, not a
	// post-filter, so top-k is never under-filled. Nil means no filter.
	PathAllowList []string
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Chunk      *Chunk  `json:"chunk"`
	Similarity float32 `json:"similarity"` // 1 - cosine_distance/2, in [0,1]
}

// ChunkContext is a chunk's text with surrounding lines, as returned
// by the context expansion operation. Line numbers are 1-based;
// ChunkStartLine/ChunkEndLine locate the chunk within Content.
type ChunkContext struct {
	FilePath        string `json:"file_path"`
	Content         string `json:"content"`
	ActualStartLine int    `json:"actual_start_line"`
	ActualEndLine   int    `json:"actual_end_line"`
	ChunkStartLine  int    `json:"chunk_start_line"`
	ChunkEndLine    int    `json:"chunk_end_line"`
}

// ProjectInfo summarizes one indexed project for listings and status.
type ProjectInfo struct {
	ProjectPath string             `json:"project_path"`
	Collection  string             `json:"collection"`
	Signature   EmbeddingSignature `json:"signature"`
	Files       int                `json:"files"`
	Chunks      int                `json:"chunks"`
	LastIndexed time.Time          `json:"last_indexed"`
}

// IndexStats reports the outcome of one index pass.
type IndexStats struct {
	FilesScanned   int           `json:"files_scanned"`
	FilesIndexed   int           `json:"files_indexed"`
	FilesSkipped   int           `json:"files_skipped"`
	FilesFailed    int           `json:"files_failed"`
	FilesDeleted   int           `json:"files_deleted"`
	ChunksCreated  int           `json:"chunks_created"`
	ChunksDeleted  int           `json:"chunks_deleted"`
	ChunksReused   int           `json:"chunks_reused"`
	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
}

// ChangeKind is the kind of a filesystem change event.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// FileChange is one filesystem change delivered to the watcher.
// Renames are decomposed into delete(old) + created(new) before they
// reach the indexer.
type FileChange struct {
	Path string
	Kind ChangeKind
}

// ChangeSet is a coalesced batch of changes for one project,
// last-state-wins per path.
type ChangeSet struct {
	Changed []string // created or modified paths
	Deleted []string
}

// Empty reports whether the set carries no work.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Changed) == 0 && len(cs.Deleted) == 0
}

// Component is one cluster of chunks in a topology graph.
type Component struct {
	ID             int      `json:"id"`
	Label          string   `json:"label"`
	Files          []string `json:"files"`
	Representative []string `json:"representative_symbols,omitempty"`
	ChunkCount     int      `json:"chunk_count"`
}

// ComponentEdge is a similarity relationship between two components.
type ComponentEdge struct {
	From       int     `json:"from"`
	To         int     `json:"to"`
	Similarity float32 `json:"similarity"` // average cross-cluster pairwise similarity
}

// TopologyGraph is the derived component map of one project. It is
// recomputed on demand and never persisted.
type TopologyGraph struct {
	ProjectPath string          `json:"project_path"`
	Components  []Component     `json:"components"`
	Edges       []ComponentEdge `json:"edges"`
	GeneratedAt time.Time       `json:"generated_at"`
}
