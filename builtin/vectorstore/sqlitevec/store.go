// Package sqlitevec implements a vector store backed by SQLite with the
// sqlite-vec extension. Each collection lives in its own database file
// under the configured base path, which keeps projects isolated and makes
// atomic full-reindex swaps a simple file rename.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spetr/mcp-coderag/pkg/types"
)

// vecAutoOnce guards sqlite_vec.Auto() which registers the extension for
// all future sqlite3 connections. Calling it twice is harmless but noisy.
var vecAutoOnce sync.Once

// Store is a SQLite+vec backed implementation of provider.VectorStore.
type Store struct {
	basePath string

	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// New creates an uninitialized store. Call Init before use.
func New() *Store {
	return &Store{dbs: make(map[string]*sql.DB)}
}

// Name returns the store name.
func (s *Store) Name() string {
	return "sqlitevec"
}

// Init prepares the base directory and loads the sqlite-vec extension.
func (s *Store) Init(basePath string) error {
	vecAutoOnce.Do(sqlite_vec.Auto)

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	s.basePath = basePath
	return nil
}

// Close closes all open collection databases.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, db := range s.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.dbs, name)
	}
	return firstErr
}

func (s *Store) collectionPath(collection string) string {
	return filepath.Join(s.basePath, collection+".db")
}

// openDB returns the database for an existing collection, opening it on
// first access. It does not create collections; use CreateCollection.
func (s *Store) openDB(collection string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openDBLocked(collection)
}

func (s *Store) openDBLocked(collection string) (*sql.DB, error) {
	if db, ok := s.dbs[collection]; ok {
		return db, nil
	}

	path := s.collectionPath(collection)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, types.ErrNotFound)
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	s.dbs[collection] = db
	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the vec extension loaded.
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec extension not available: %w", err)
	}
	return db, nil
}

// CreateCollection creates a new collection database with its schema and
// a vec0 virtual table sized for the given embedding dimensions. Creating
// an existing collection drops its previous contents.
func (s *Store) CreateCollection(collection string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid dimensions %d: %w", dimensions, types.ErrInvalidConfig)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.dbs[collection]; ok {
		db.Close()
		delete(s.dbs, collection)
	}

	path := s.collectionPath(collection)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old collection: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(path + suffix)
	}

	db, err := openSQLite(path)
	if err != nil {
		return err
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			file_path TEXT NOT NULL,
			language TEXT,
			content TEXT NOT NULL,
			kind TEXT,
			name TEXT,
			parent_name TEXT,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			hash TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_path);

		CREATE TABLE IF NOT EXISTS manifest_files (
			file_path TEXT PRIMARY KEY,
			file_hash TEXT NOT NULL,
			chunk_ids TEXT NOT NULL,
			indexed_at TIMESTAMP NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS chunk_embeddings USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d]
		);
	`, dimensions)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("creating schema: %w", err)
	}

	s.dbs[collection] = db
	return nil
}

// HasCollection reports whether a collection database exists.
func (s *Store) HasCollection(collection string) bool {
	_, err := os.Stat(s.collectionPath(collection))
	return err == nil
}

// ListCollections returns the names of all collections under the base path.
func (s *Store) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".db"))
	}
	sort.Strings(names)
	return names, nil
}

// DeleteCollection closes and removes a collection database.
func (s *Store) DeleteCollection(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.dbs[collection]; ok {
		db.Close()
		delete(s.dbs, collection)
	}

	path := s.collectionPath(collection)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("collection %s: %w", collection, types.ErrNotFound)
		}
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(path + suffix)
	}
	return nil
}

// PromoteCollection atomically replaces target with staging. Used by full
// reindex: the new index is built in a staging collection and swapped in
// only once complete, so searches never see a half-built index.
func (s *Store) PromoteCollection(staging, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stagingPath := s.collectionPath(staging)
	if _, err := os.Stat(stagingPath); err != nil {
		return fmt.Errorf("staging collection %s: %w", staging, types.ErrNotFound)
	}

	// Close both databases so the rename is not racing open handles and
	// the staging WAL is checkpointed into the main file.
	for _, name := range []string{staging, target} {
		if db, ok := s.dbs[name]; ok {
			db.Close()
			delete(s.dbs, name)
		}
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(stagingPath + suffix)
	}

	targetPath := s.collectionPath(target)
	if err := os.Rename(stagingPath, targetPath); err != nil {
		return fmt.Errorf("promoting collection: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(targetPath + suffix)
	}
	return nil
}

// UpsertChunks stores chunks and their embeddings in one transaction.
func (s *Store) UpsertChunks(collection string, chunks []*types.ChunkWithEmbedding) error {
	if len(chunks) == 0 {
		return nil
	}

	db, err := s.openDB(collection)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if err := upsertChunksTx(tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	return nil
}

func upsertChunksTx(tx *sql.Tx, chunks []*types.ChunkWithEmbedding) error {
	chunkStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO chunks
			(id, file_path, language, content, kind, name, parent_name, start_line, end_line, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO chunk_embeddings (chunk_id, embedding) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer vecStmt.Close()

	for _, c := range chunks {
		_, err := chunkStmt.Exec(
			c.Chunk.ID, c.Chunk.FilePath, c.Chunk.Language, c.Chunk.Content,
			string(c.Chunk.Kind), c.Chunk.Name, c.Chunk.ParentName,
			c.Chunk.StartLine, c.Chunk.EndLine, c.Chunk.Hash,
		)
		if err != nil {
			return fmt.Errorf("%w: storing chunk %s: %v", types.ErrStoreWrite, c.Chunk.ID, err)
		}
		if len(c.Embedding) > 0 {
			if _, err := vecStmt.Exec(c.Chunk.ID, floatsToBytes(c.Embedding)); err != nil {
				return fmt.Errorf("%w: storing embedding %s: %v", types.ErrStoreWrite, c.Chunk.ID, err)
			}
		}
	}
	return nil
}

// DeleteChunks removes chunks and their embeddings by id.
func (s *Store) DeleteChunks(collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	db, err := s.openDB(collection)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if err := deleteChunksTx(tx, ids); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	return nil
}

func deleteChunksTx(tx *sql.Tx, ids []string) error {
	chunkStmt, err := tx.Prepare("DELETE FROM chunks WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.Prepare("DELETE FROM chunk_embeddings WHERE chunk_id = ?")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer vecStmt.Close()

	for _, id := range ids {
		if _, err := chunkStmt.Exec(id); err != nil {
			return fmt.Errorf("%w: deleting chunk %s: %v", types.ErrStoreWrite, id, err)
		}
		if _, err := vecStmt.Exec(id); err != nil {
			return fmt.Errorf("%w: deleting embedding %s: %v", types.ErrStoreWrite, id, err)
		}
	}
	return nil
}

// ChunkIDs returns all chunk ids in a collection.
func (s *Store) ChunkIDs(collection string) ([]string, error) {
	db, err := s.openDB(collection)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT id FROM chunks ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountChunks returns the number of chunks in a collection.
func (s *Store) CountChunks(collection string) (int, error) {
	db, err := s.openDB(collection)
	if err != nil {
		return 0, err
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count)
	return count, err
}

// Search runs a vector similarity query over a collection. Results are
// ordered by similarity descending, ties broken by file path then start
// line, and never padded past the number of stored chunks.
func (s *Store) Search(ctx context.Context, collection string, req *types.SearchRequest) ([]*types.SearchResult, error) {
	db, err := s.openDB(collection)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	query := `
		SELECT c.id, c.file_path, c.language, c.content, c.kind, c.name, c.parent_name,
		       c.start_line, c.end_line, c.hash,
		       vec_distance_cosine(e.embedding, ?) AS distance
		FROM chunk_embeddings e
		JOIN chunks c ON c.id = e.chunk_id
	`
	args := []any{floatsToBytes(req.QueryVec)}

	if len(req.PathAllowList) > 0 {
		placeholders := make([]string, len(req.PathAllowList))
		for i, p := range req.PathAllowList {
			placeholders[i] = "?"
			args = append(args, p)
		}
		query += fmt.Sprintf(" WHERE c.file_path IN (%s)", strings.Join(placeholders, ", "))
	}

	query += " ORDER BY distance ASC, c.file_path ASC, c.start_line ASC LIMIT ?"
	args = append(args, topK)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []*types.SearchResult
	for rows.Next() {
		r := &types.SearchResult{Chunk: &types.Chunk{}}
		var kind string
		var distance float64
		err := rows.Scan(
			&r.Chunk.ID, &r.Chunk.FilePath, &r.Chunk.Language, &r.Chunk.Content,
			&kind, &r.Chunk.Name, &r.Chunk.ParentName,
			&r.Chunk.StartLine, &r.Chunk.EndLine, &r.Chunk.Hash,
			&distance,
		)
		if err != nil {
			return nil, err
		}
		r.Chunk.Kind = types.ChunkKind(kind)
		// cosine distance is in [0, 2]
		r.Similarity = float32(1 - distance/2)
		results = append(results, r)
	}
	return results, rows.Err()
}

// AllEmbeddings returns every chunk with its embedding, used for topology
// analysis over a whole collection.
func (s *Store) AllEmbeddings(collection string) ([]*types.ChunkWithEmbedding, error) {
	db, err := s.openDB(collection)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT c.id, c.file_path, c.language, c.content, c.kind, c.name, c.parent_name,
		       c.start_line, c.end_line, c.hash, e.embedding
		FROM chunk_embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		ORDER BY c.file_path, c.start_line
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.ChunkWithEmbedding
	for rows.Next() {
		cwe := &types.ChunkWithEmbedding{Chunk: &types.Chunk{}}
		var kind string
		var blob []byte
		err := rows.Scan(
			&cwe.Chunk.ID, &cwe.Chunk.FilePath, &cwe.Chunk.Language, &cwe.Chunk.Content,
			&kind, &cwe.Chunk.Name, &cwe.Chunk.ParentName,
			&cwe.Chunk.StartLine, &cwe.Chunk.EndLine, &cwe.Chunk.Hash,
			&blob,
		)
		if err != nil {
			return nil, err
		}
		cwe.Chunk.Kind = types.ChunkKind(kind)
		cwe.Embedding = bytesToFloats(blob)
		out = append(out, cwe)
	}
	return out, rows.Err()
}

// manifest metadata keys
const (
	metaManifestKey = "manifest"
)

type manifestHeader struct {
	ProjectPath string                   `json:"project_path"`
	Signature   types.EmbeddingSignature `json:"signature"`
	ConfigHash  string                   `json:"config_hash"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// InitManifest writes the manifest header for a freshly created collection.
func (s *Store) InitManifest(collection string, manifest *types.ProjectManifest) error {
	db, err := s.openDB(collection)
	if err != nil {
		return err
	}

	header := manifestHeader{
		ProjectPath: manifest.ProjectPath,
		Signature:   manifest.Signature,
		ConfigHash:  manifest.ConfigHash,
		CreatedAt:   manifest.CreatedAt,
		UpdatedAt:   manifest.UpdatedAt,
	}
	data, err := json.Marshal(header)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", metaManifestKey, string(data))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}

	for path, mf := range manifest.Files {
		ids, err := json.Marshal(mf.ChunkIDs)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO manifest_files (file_path, file_hash, chunk_ids, indexed_at)
			VALUES (?, ?, ?, ?)
		`, path, mf.Hash, string(ids), mf.IndexedAt)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	return nil
}

// GetManifest loads the full manifest for a collection. Returns
// types.ErrNotIndexed when the collection or its header is missing.
func (s *Store) GetManifest(collection string) (*types.ProjectManifest, error) {
	db, err := s.openDB(collection)
	if err != nil {
		return nil, types.ErrNotIndexed
	}

	var data string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = ?", metaManifestKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotIndexed
	}
	if err != nil {
		return nil, err
	}

	var header manifestHeader
	if err := json.Unmarshal([]byte(data), &header); err != nil {
		return nil, fmt.Errorf("corrupt manifest header: %w", err)
	}

	manifest := &types.ProjectManifest{
		ProjectPath: header.ProjectPath,
		Collection:  collection,
		Signature:   header.Signature,
		ConfigHash:  header.ConfigHash,
		CreatedAt:   header.CreatedAt,
		UpdatedAt:   header.UpdatedAt,
		Files:       make(map[string]types.ManifestFile),
	}

	rows, err := db.Query("SELECT file_path, file_hash, chunk_ids, indexed_at FROM manifest_files")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var mf types.ManifestFile
		var ids string
		if err := rows.Scan(&mf.Path, &mf.Hash, &ids, &mf.IndexedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ids), &mf.ChunkIDs); err != nil {
			return nil, fmt.Errorf("corrupt chunk id list for %s: %w", mf.Path, err)
		}
		manifest.Files[mf.Path] = mf
	}
	return manifest, rows.Err()
}

// GetManifestFile returns the manifest entry for a single file, or
// types.ErrNotFound when the file is not in the manifest.
func (s *Store) GetManifestFile(collection, filePath string) (*types.ManifestFile, error) {
	db, err := s.openDB(collection)
	if err != nil {
		return nil, err
	}

	var mf types.ManifestFile
	var ids string
	err = db.QueryRow(`
		SELECT file_path, file_hash, chunk_ids, indexed_at FROM manifest_files WHERE file_path = ?
	`, filePath).Scan(&mf.Path, &mf.Hash, &ids, &mf.IndexedAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ids), &mf.ChunkIDs); err != nil {
		return nil, fmt.Errorf("corrupt chunk id list for %s: %w", mf.Path, err)
	}
	return &mf, nil
}

// ApplyFileUpdate commits one file's incremental update atomically:
// stale chunks deleted, new chunks inserted, manifest row replaced and
// the header timestamp bumped, all in a single transaction. A crash
// mid-update leaves the previous consistent state intact.
func (s *Store) ApplyFileUpdate(collection string, file *types.ManifestFile, deleteIDs []string, insert []*types.ChunkWithEmbedding) error {
	db, err := s.openDB(collection)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if len(deleteIDs) > 0 {
		if err := deleteChunksTx(tx, deleteIDs); err != nil {
			return err
		}
	}
	if len(insert) > 0 {
		if err := upsertChunksTx(tx, insert); err != nil {
			return err
		}
	}

	ids, err := json.Marshal(file.ChunkIDs)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO manifest_files (file_path, file_hash, chunk_ids, indexed_at)
		VALUES (?, ?, ?, ?)
	`, file.Path, file.Hash, string(ids), file.IndexedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}

	if err := touchManifestTx(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	return nil
}

// RemoveFile deletes a file's chunks and manifest row in one transaction.
func (s *Store) RemoveFile(collection, filePath string) error {
	db, err := s.openDB(collection)
	if err != nil {
		return err
	}

	mf, err := s.GetManifestFile(collection, filePath)
	if err != nil {
		if err == types.ErrNotFound {
			return nil
		}
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if err := deleteChunksTx(tx, mf.ChunkIDs); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM manifest_files WHERE file_path = ?", filePath); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	if err := touchManifestTx(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	return nil
}

// touchManifestTx bumps the manifest header's updated_at timestamp.
func touchManifestTx(tx *sql.Tx) error {
	var data string
	err := tx.QueryRow("SELECT value FROM metadata WHERE key = ?", metaManifestKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	var header manifestHeader
	if err := json.Unmarshal([]byte(data), &header); err != nil {
		return fmt.Errorf("corrupt manifest header: %w", err)
	}
	header.UpdatedAt = time.Now().UTC()

	updated, err := json.Marshal(header)
	if err != nil {
		return err
	}
	_, err = tx.Exec("UPDATE metadata SET value = ? WHERE key = ?", string(updated), metaManifestKey)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStoreWrite, err)
	}
	return nil
}

// floatsToBytes converts a float32 slice to bytes for sqlite-vec.
func floatsToBytes(floats []float32) []byte {
	bytes := make([]byte, len(floats)*4)
	for i, f := range floats {
		bits := math.Float32bits(f)
		bytes[i*4] = byte(bits)
		bytes[i*4+1] = byte(bits >> 8)
		bytes[i*4+2] = byte(bits >> 16)
		bytes[i*4+3] = byte(bits >> 24)
	}
	return bytes
}

// bytesToFloats is the inverse of floatsToBytes.
func bytesToFloats(b []byte) []float32 {
	floats := make([]float32, len(b)/4)
	for i := range floats {
		bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		floats[i] = math.Float32frombits(bits)
	}
	return floats
}
