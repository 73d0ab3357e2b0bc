package provider

// VectorStore stores and searches vector embeddings, one collection
// per indexed project. It composes the smaller store interfaces; new
// code should depend on the smallest interface that serves it.
type VectorStore interface {
	Store
	CollectionAdmin
	ChunkStore
	Searcher
	VectorReader
	ManifestStore
}

// VectorStoreConfig contains configuration for vector stores.
type VectorStoreConfig struct {
	Provider string // "sqlitevec"
	Path     string // Base directory for collection databases
}
