package provider

import (
	"context"

	"github.com/spetr/mcp-coderag/pkg/types"
)

// Store is a minimal interface for basic store operations.
type Store interface {
	// Name returns the store name (e.g., "sqlitevec").
	Name() string

	// Init initializes the store with its base directory. Collections
	// are created under it on demand.
	Init(basePath string) error

	// Close releases resources and closes connections.
	Close() error
}

// CollectionAdmin manages per-project collections.
type CollectionAdmin interface {
	// CreateCollection creates (or opens) a collection with the given
	// vector dimension.
	CreateCollection(collection string, dimensions int) error

	// HasCollection reports whether a collection exists on disk.
	HasCollection(collection string) bool

	// ListCollections returns the ids of all collections.
	ListCollections() ([]string, error)

	// DeleteCollection removes a collection and all its data.
	DeleteCollection(collection string) error

	// PromoteCollection atomically replaces the target collection with
	// a fully built staging collection. Used by full re-index so a
	// crash mid-run leaves the prior good index intact.
	PromoteCollection(staging, target string) error
}

// ChunkStore handles chunk storage operations within a collection.
type ChunkStore interface {
	// UpsertChunks stores chunks with their embeddings. Each chunk id
	// is written atomically; a reader sees either the old or the new
	// chunk, never a half-written one.
	UpsertChunks(collection string, chunks []*types.ChunkWithEmbedding) error

	// DeleteChunks removes chunks by id.
	DeleteChunks(collection string, ids []string) error

	// ChunkIDs returns all chunk ids present in the collection.
	ChunkIDs(collection string) ([]string, error)

	// CountChunks returns the number of chunks in the collection.
	CountChunks(collection string) (int, error)
}

// Searcher answers nearest-neighbor queries against a collection.
type Searcher interface {
	// Search returns the top-k nearest chunks for req.QueryVec,
	// honoring req.PathAllowList as a query-time metadata filter.
	Search(ctx context.Context, collection string, req *types.SearchRequest) ([]*types.SearchResult, error)
}

// VectorReader exposes stored embeddings for offline analysis
// (topology clustering reads every vector of a collection).
type VectorReader interface {
	// AllEmbeddings returns every chunk with its embedding.
	AllEmbeddings(collection string) ([]*types.ChunkWithEmbedding, error)
}

// ManifestStore handles the durable per-project manifest. The manifest
// and the chunk tables live in the same collection database so file
// updates commit transactionally.
type ManifestStore interface {
	// GetManifest returns the full manifest snapshot for a collection.
	// Returns types.ErrNotIndexed if the collection has none.
	GetManifest(collection string) (*types.ProjectManifest, error)

	// InitManifest records project path, embedding signature and config
	// hash for a fresh collection.
	InitManifest(collection string, manifest *types.ProjectManifest) error

	// GetManifestFile returns the manifest record for one file, or
	// types.ErrNotFound.
	GetManifestFile(collection, filePath string) (*types.ManifestFile, error)

	// ApplyFileUpdate commits one file's index update in a single
	// transaction: delete superseded chunk ids, insert new embedded
	// chunks, and write the file's manifest record. On error nothing
	// is applied.
	ApplyFileUpdate(collection string, file *types.ManifestFile, deleteIDs []string, insert []*types.ChunkWithEmbedding) error

	// RemoveFile transactionally deletes a file's chunks and drops its
	// manifest record.
	RemoveFile(collection, filePath string) error
}
