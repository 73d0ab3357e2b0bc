package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spetr/mcp-coderag/builtin/chunking/simple"
	"github.com/spetr/mcp-coderag/internal/config"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// fakeEmbedding is a deterministic in-memory embedding provider that
// records how many texts it actually embedded.
type fakeEmbedding struct {
	mu       sync.Mutex
	embedded []string
	failWith error
}

func (f *fakeEmbedding) Name() string { return "fake" }
func (f *fakeEmbedding) Identity() types.EmbeddingSignature {
	return types.EmbeddingSignature{Provider: "fake", Model: "fake-model", Dimensions: 3}
}
func (f *fakeEmbedding) Dimensions() int                    { return 3 }
func (f *fakeEmbedding) MaxBatchSize() int                  { return 16 }
func (f *fakeEmbedding) Available(ctx context.Context) bool { return true }
func (f *fakeEmbedding) Close() error                       { return nil }

func (f *fakeEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1, 0}
		f.embedded = append(f.embedded, text)
	}
	return out, nil
}

func (f *fakeEmbedding) embedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.embedded)
}

// fakeStore is an in-memory VectorStore covering what the indexer uses.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]*fakeCollection
	applyCalls  int
}

type fakeCollection struct {
	chunks   map[string]*types.ChunkWithEmbedding
	manifest *types.ProjectManifest
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string]*fakeCollection)}
}

func (s *fakeStore) Name() string               { return "fake" }
func (s *fakeStore) Init(basePath string) error { return nil }
func (s *fakeStore) Close() error               { return nil }

func (s *fakeStore) CreateCollection(collection string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = &fakeCollection{chunks: make(map[string]*types.ChunkWithEmbedding)}
	return nil
}

func (s *fakeStore) HasCollection(collection string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.collections[collection]
	return ok
}

func (s *fakeStore) ListCollections() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeStore) DeleteCollection(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *fakeStore) PromoteCollection(staging, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[staging]
	if !ok {
		return fmt.Errorf("staging collection %s: %w", staging, types.ErrNotFound)
	}
	s.collections[target] = c
	delete(s.collections, staging)
	return nil
}

func (s *fakeStore) collection(name string) (*fakeCollection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, types.ErrNotIndexed
	}
	return c, nil
}

func (s *fakeStore) UpsertChunks(collection string, chunks []*types.ChunkWithEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, ch := range chunks {
		c.chunks[ch.Chunk.ID] = ch
	}
	return nil
}

func (s *fakeStore) DeleteChunks(collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, id := range ids {
		delete(c.chunks, id)
	}
	return nil
}

func (s *fakeStore) ChunkIDs(collection string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	var ids []string
	for id := range c.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *fakeStore) CountChunks(collection string) (int, error) {
	ids, err := s.ChunkIDs(collection)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *fakeStore) Search(ctx context.Context, collection string, req *types.SearchRequest) ([]*types.SearchResult, error) {
	return nil, nil
}

func (s *fakeStore) AllEmbeddings(collection string) ([]*types.ChunkWithEmbedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	var out []*types.ChunkWithEmbedding
	for _, ch := range c.chunks {
		out = append(out, ch)
	}
	return out, nil
}

func (s *fakeStore) GetManifest(collection string) (*types.ProjectManifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil || c.manifest == nil {
		return nil, types.ErrNotIndexed
	}
	return c.manifest, nil
}

func (s *fakeStore) InitManifest(collection string, manifest *types.ProjectManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	c.manifest = manifest
	return nil
}

func (s *fakeStore) GetManifestFile(collection, filePath string) (*types.ManifestFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil || c.manifest == nil {
		return nil, types.ErrNotIndexed
	}
	mf, ok := c.manifest.Files[filePath]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &mf, nil
}

func (s *fakeStore) ApplyFileUpdate(collection string, file *types.ManifestFile, deleteIDs []string, insert []*types.ChunkWithEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCalls++
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	for _, id := range deleteIDs {
		delete(c.chunks, id)
	}
	for _, ch := range insert {
		c.chunks[ch.Chunk.ID] = ch
	}
	c.manifest.Files[file.Path] = *file
	return nil
}

func (s *fakeStore) applyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyCalls
}

func (s *fakeStore) RemoveFile(collection, filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	if c.manifest != nil {
		if mf, ok := c.manifest.Files[filePath]; ok {
			for _, id := range mf.ChunkIDs {
				delete(c.chunks, id)
			}
			delete(c.manifest.Files, filePath)
		}
	}
	return nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Index.UseGitIgnore = false
	cfg.Index.Workers = 2
	cfg.Chunking.WindowLines = 50
	cfg.Chunking.StepLines = 40
	return cfg
}

func newTestIndexer(store *fakeStore, embedding *fakeEmbedding) *Indexer {
	cfg := testConfig()
	return New(Config{
		Config:    cfg,
		Store:     store,
		Embedding: embedding,
		Chunker:   simple.New(simple.Config{WindowLines: 50, StepLines: 40}),
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func manyLines(prefix string, n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "%s line %d\n", prefix, i)
	}
	return sb.String()
}

func TestCheckCompatibility(t *testing.T) {
	manifest := &types.ProjectManifest{
		ProjectPath: "/tmp/proj",
		Signature:   types.EmbeddingSignature{Provider: "fake", Model: "fake-model", Dimensions: 3},
	}

	if err := CheckCompatibility(manifest, manifest.Signature); err != nil {
		t.Errorf("matching signature rejected: %v", err)
	}

	err := CheckCompatibility(manifest, types.EmbeddingSignature{Provider: "other", Model: "m", Dimensions: 8})
	var compatErr *types.CompatibilityError
	if !errors.As(err, &compatErr) {
		t.Fatalf("err = %v, want CompatibilityError", err)
	}
	if compatErr.Stored != manifest.Signature {
		t.Errorf("Stored = %v, want %v", compatErr.Stored, manifest.Signature)
	}
}

func TestIndexFull(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", manyLines("main", 10))
	writeFile(t, dir, "pkg/util.go", manyLines("util", 10))
	writeFile(t, dir, "README.md", manyLines("readme", 5))

	store := newFakeStore()
	embedding := &fakeEmbedding{}
	idx := newTestIndexer(store, embedding)

	stats, err := idx.IndexFull(context.Background(), dir)
	if err != nil {
		t.Fatalf("IndexFull failed: %v", err)
	}

	if stats.FilesIndexed != 3 {
		t.Errorf("FilesIndexed = %d, want 3", stats.FilesIndexed)
	}
	if stats.ChunksCreated != 3 {
		t.Errorf("ChunksCreated = %d, want 3", stats.ChunksCreated)
	}

	collection := types.CollectionID(dir)
	if !store.HasCollection(collection) {
		t.Fatal("collection not promoted")
	}
	if store.HasCollection(collection + ".staging") {
		t.Error("staging collection left behind")
	}

	manifest, err := store.GetManifest(collection)
	if err != nil {
		t.Fatalf("GetManifest failed: %v", err)
	}
	if len(manifest.Files) != 3 {
		t.Errorf("manifest files = %d, want 3", len(manifest.Files))
	}
	if !manifest.Signature.Equal(embedding.Identity()) {
		t.Errorf("manifest signature = %v, want %v", manifest.Signature, embedding.Identity())
	}

	// The union of manifest chunk ids equals the stored chunk ids.
	stored, _ := store.ChunkIDs(collection)
	union := manifest.ChunkIDs()
	if len(stored) != len(union) {
		t.Errorf("stored chunks = %d, manifest union = %d", len(stored), len(union))
	}
	for _, id := range stored {
		if _, ok := union[id]; !ok {
			t.Errorf("stored chunk %s missing from manifest", id)
		}
	}
}

func TestIndexFullMissingPath(t *testing.T) {
	idx := newTestIndexer(newFakeStore(), &fakeEmbedding{})

	_, err := idx.IndexFull(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIndexIncrementalReusesUnchangedChunks(t *testing.T) {
	dir := t.TempDir()
	// 120 lines: three windows at 50/40. Appending lines only
	// changes the tail window.
	writeFile(t, dir, "big.go", manyLines("big", 120))

	store := newFakeStore()
	embedding := &fakeEmbedding{}
	idx := newTestIndexer(store, embedding)

	if _, err := idx.IndexFull(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if got := embedding.embedCount(); got != 3 {
		t.Fatalf("full index embedded %d chunks, want 3", got)
	}

	writeFile(t, dir, "big.go", manyLines("big", 120)+"// trailing\n")

	stats, err := idx.IndexIncremental(context.Background(), dir, &types.ChangeSet{Changed: []string{"big.go"}})
	if err != nil {
		t.Fatalf("IndexIncremental failed: %v", err)
	}

	if stats.ChunksReused != 2 {
		t.Errorf("ChunksReused = %d, want 2", stats.ChunksReused)
	}
	if stats.ChunksCreated != 1 {
		t.Errorf("ChunksCreated = %d, want 1", stats.ChunksCreated)
	}
	if got := embedding.embedCount(); got != 4 {
		t.Errorf("total embedded = %d, want 4 (no wasted re-embedding)", got)
	}

	collection := types.CollectionID(dir)
	manifest, _ := store.GetManifest(collection)
	stored, _ := store.ChunkIDs(collection)
	if len(stored) != len(manifest.ChunkIDs()) {
		t.Errorf("store/manifest diverged: %d chunks vs %d ids", len(stored), len(manifest.ChunkIDs()))
	}
}

func TestIndexIncrementalSkipsUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", manyLines("main", 10))

	store := newFakeStore()
	embedding := &fakeEmbedding{}
	idx := newTestIndexer(store, embedding)

	if _, err := idx.IndexFull(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	before := embedding.embedCount()

	stats, err := idx.IndexIncremental(context.Background(), dir, &types.ChangeSet{Changed: []string{"main.go"}})
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", stats.FilesSkipped)
	}
	if embedding.embedCount() != before {
		t.Error("unchanged file was re-embedded")
	}
}

func TestIndexIncrementalDeletedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", manyLines("main", 10))
	writeFile(t, dir, "gone.go", manyLines("gone", 10))

	store := newFakeStore()
	idx := newTestIndexer(store, &fakeEmbedding{})

	if _, err := idx.IndexFull(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(dir, "gone.go")); err != nil {
		t.Fatal(err)
	}

	stats, err := idx.IndexIncremental(context.Background(), dir, &types.ChangeSet{Deleted: []string{"gone.go"}})
	if err != nil {
		t.Fatal(err)
	}

	if stats.FilesDeleted != 1 {
		t.Errorf("FilesDeleted = %d, want 1", stats.FilesDeleted)
	}

	collection := types.CollectionID(dir)
	manifest, _ := store.GetManifest(collection)
	if _, ok := manifest.Files["gone.go"]; ok {
		t.Error("deleted file still in manifest")
	}
	count, _ := store.CountChunks(collection)
	if count != 1 {
		t.Errorf("chunks = %d, want 1 after deletion", count)
	}
}

func TestIndexIncrementalChangedFileVanished(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", manyLines("main", 10))
	writeFile(t, dir, "racy.go", manyLines("racy", 10))

	store := newFakeStore()
	idx := newTestIndexer(store, &fakeEmbedding{})

	if _, err := idx.IndexFull(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "racy.go")); err != nil {
		t.Fatal(err)
	}

	// The change event raced a delete: the file is reported changed
	// but no longer on disk.
	stats, err := idx.IndexIncremental(context.Background(), dir, &types.ChangeSet{Changed: []string{"racy.go"}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesDeleted != 1 {
		t.Errorf("FilesDeleted = %d, want 1", stats.FilesDeleted)
	}

	manifest, _ := store.GetManifest(types.CollectionID(dir))
	if _, ok := manifest.Files["racy.go"]; ok {
		t.Error("vanished file still in manifest")
	}
}

func TestIndexIncrementalEmbeddingFailureSkipsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", manyLines("main", 10))

	store := newFakeStore()
	embedding := &fakeEmbedding{}
	idx := newTestIndexer(store, embedding)

	if _, err := idx.IndexFull(context.Background(), dir); err != nil {
		t.Fatal(err)
	}
	collection := types.CollectionID(dir)
	idsBefore, _ := store.ChunkIDs(collection)

	writeFile(t, dir, "main.go", manyLines("changed", 10))
	// Non-retryable failure: bad credentials, not a transient error.
	embedding.failWith = &types.ProviderHTTPError{Provider: "fake", StatusCode: 401}

	stats, err := idx.IndexIncremental(context.Background(), dir, &types.ChangeSet{Changed: []string{"main.go"}})
	if err != nil {
		t.Fatalf("embedding failure must not abort the pass: %v", err)
	}
	if stats.FilesFailed != 1 {
		t.Errorf("FilesFailed = %d, want 1", stats.FilesFailed)
	}

	// Old index state stays searchable.
	idsAfter, _ := store.ChunkIDs(collection)
	if len(idsBefore) != len(idsAfter) || idsBefore[0] != idsAfter[0] {
		t.Errorf("chunks changed despite failed embedding: %v -> %v", idsBefore, idsAfter)
	}
}

func TestIndexIncrementalSignatureMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", manyLines("main", 10))

	store := newFakeStore()
	idx := newTestIndexer(store, &fakeEmbedding{})
	if _, err := idx.IndexFull(context.Background(), dir); err != nil {
		t.Fatal(err)
	}

	// Overwrite the stored signature to simulate a provider switch.
	manifest, _ := store.GetManifest(types.CollectionID(dir))
	manifest.Signature = types.EmbeddingSignature{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 1536}

	_, err := idx.IndexIncremental(context.Background(), dir, &types.ChangeSet{Changed: []string{"main.go"}})
	var compatErr *types.CompatibilityError
	if !errors.As(err, &compatErr) {
		t.Errorf("err = %v, want CompatibilityError", err)
	}
}

func TestIndexIncrementalNotIndexed(t *testing.T) {
	idx := newTestIndexer(newFakeStore(), &fakeEmbedding{})

	_, err := idx.IndexIncremental(context.Background(), t.TempDir(), &types.ChangeSet{Changed: []string{"main.go"}})
	if !errors.Is(err, types.ErrNotIndexed) {
		t.Errorf("err = %v, want ErrNotIndexed", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &types.ProviderHTTPError{StatusCode: 429}, true},
		{"server error", &types.ProviderHTTPError{StatusCode: 503}, true},
		{"bad request", &types.ProviderHTTPError{StatusCode: 400}, false},
		{"unauthorized", &types.ProviderHTTPError{StatusCode: 401}, false},
		{"timeout sentinel", types.ErrTimeout, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped http error", fmt.Errorf("call failed: %w", &types.ProviderHTTPError{StatusCode: 500}), true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/*.go", "main.go", true},
		{"**/*.go", "internal/server/server.go", true},
		{"**/*.go", "main.py", false},
		{"**/go.sum", "go.sum", true},
		{"**/go.sum", "sub/pkg/go.sum", true},
		{"**/go.sum", "go.mod", false},
		{"vendor/**", "vendor/lib/lib.go", true},
		{"vendor/**", "internal/vendor.go", false},
		{"*.md", "README.md", true},
		{"*.md", "docs/guide.md", true},
	}

	for _, tt := range tests {
		if got := matchGlob(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1MB", 1024 * 1024},
		{"512KB", 512 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"100B", 100},
		{"100", 100},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseSize(tt.in); got != tt.want {
			t.Errorf("parseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
