package sqlitevec

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spetr/mcp-coderag/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	if err := s.Init(filepath.Join(t.TempDir(), "collections")); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func embChunk(id, file string, start int, vec []float32) *types.ChunkWithEmbedding {
	return &types.ChunkWithEmbedding{
		Chunk: &types.Chunk{
			ID:        id,
			FilePath:  file,
			Language:  "go",
			Content:   "func " + id + "() {}",
			Kind:      types.ChunkKindFunction,
			Name:      id,
			StartLine: start,
			EndLine:   start + 2,
		},
		Embedding: vec,
	}
}

func TestCollectionLifecycle(t *testing.T) {
	s := newTestStore(t)

	if s.HasCollection("proj_a") {
		t.Error("collection should not exist yet")
	}

	if err := s.CreateCollection("proj_a", 3); err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if !s.HasCollection("proj_a") {
		t.Error("collection missing after create")
	}

	names, err := s.ListCollections()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "proj_a" {
		t.Errorf("ListCollections = %v, want [proj_a]", names)
	}

	if err := s.DeleteCollection("proj_a"); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}
	if s.HasCollection("proj_a") {
		t.Error("collection still present after delete")
	}
}

func TestUpsertAndSearch(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateCollection("proj", 3); err != nil {
		t.Fatal(err)
	}

	chunks := []*types.ChunkWithEmbedding{
		embChunk("aaaa", "auth/login.go", 1, []float32{1, 0, 0}),
		embChunk("bbbb", "auth/token.go", 1, []float32{0.9, 0.1, 0}),
		embChunk("cccc", "store/db.go", 1, []float32{0, 0, 1}),
	}
	if err := s.UpsertChunks("proj", chunks); err != nil {
		t.Fatalf("UpsertChunks failed: %v", err)
	}

	count, err := s.CountChunks("proj")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("CountChunks = %d, want 3", count)
	}

	results, err := s.Search(context.Background(), "proj", &types.SearchRequest{
		QueryVec: []float32{1, 0, 0},
		TopK:     2,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Chunk.ID != "aaaa" {
		t.Errorf("top result = %s, want aaaa", results[0].Chunk.ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results not ordered by similarity")
	}
	if results[0].Similarity <= 0.99 {
		t.Errorf("exact match similarity = %f, want ~1", results[0].Similarity)
	}
}

func TestSearchPathAllowList(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateCollection("proj", 3); err != nil {
		t.Fatal(err)
	}

	chunks := []*types.ChunkWithEmbedding{
		embChunk("aaaa", "auth/login.go", 1, []float32{1, 0, 0}),
		embChunk("cccc", "store/db.go", 1, []float32{0.99, 0.01, 0}),
	}
	if err := s.UpsertChunks("proj", chunks); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(context.Background(), "proj", &types.SearchRequest{
		QueryVec:      []float32{1, 0, 0},
		TopK:          10,
		PathAllowList: []string{"store/db.go"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Chunk.FilePath != "store/db.go" {
		t.Errorf("result file = %s, want store/db.go", results[0].Chunk.FilePath)
	}
}

func TestDeleteChunks(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateCollection("proj", 3); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertChunks("proj", []*types.ChunkWithEmbedding{
		embChunk("aaaa", "a.go", 1, []float32{1, 0, 0}),
		embChunk("bbbb", "b.go", 1, []float32{0, 1, 0}),
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteChunks("proj", []string{"aaaa"}); err != nil {
		t.Fatalf("DeleteChunks failed: %v", err)
	}

	ids, err := s.ChunkIDs("proj")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "bbbb" {
		t.Errorf("ChunkIDs = %v, want [bbbb]", ids)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateCollection("proj", 3); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetManifest("proj"); !errors.Is(err, types.ErrNotIndexed) {
		t.Fatalf("err = %v, want ErrNotIndexed for fresh collection", err)
	}

	manifest := &types.ProjectManifest{
		ProjectPath: "/home/user/proj",
		Collection:  "proj",
		Signature:   types.EmbeddingSignature{Provider: "ollama", Model: "nomic-embed-text", Dimensions: 3},
		ConfigHash:  "deadbeef",
		Files: map[string]types.ManifestFile{
			"a.go": {Path: "a.go", Hash: "h1", ChunkIDs: []string{"aaaa"}},
		},
	}
	if err := s.InitManifest("proj", manifest); err != nil {
		t.Fatalf("InitManifest failed: %v", err)
	}

	got, err := s.GetManifest("proj")
	if err != nil {
		t.Fatalf("GetManifest failed: %v", err)
	}
	if got.ProjectPath != manifest.ProjectPath {
		t.Errorf("ProjectPath = %q", got.ProjectPath)
	}
	if !got.Signature.Equal(manifest.Signature) {
		t.Errorf("Signature = %v", got.Signature)
	}
	if len(got.Files) != 1 {
		t.Errorf("Files = %d, want 1", len(got.Files))
	}

	mf, err := s.GetManifestFile("proj", "a.go")
	if err != nil {
		t.Fatalf("GetManifestFile failed: %v", err)
	}
	if mf.Hash != "h1" {
		t.Errorf("Hash = %q, want h1", mf.Hash)
	}
}

func TestApplyFileUpdateTransactional(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateCollection("proj", 3); err != nil {
		t.Fatal(err)
	}
	if err := s.InitManifest("proj", &types.ProjectManifest{
		ProjectPath: "/p",
		Collection:  "proj",
		Signature:   types.EmbeddingSignature{Provider: "fake", Model: "m", Dimensions: 3},
		Files:       map[string]types.ManifestFile{},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertChunks("proj", []*types.ChunkWithEmbedding{
		embChunk("old1", "a.go", 1, []float32{1, 0, 0}),
	}); err != nil {
		t.Fatal(err)
	}

	mf := &types.ManifestFile{Path: "a.go", Hash: "h2", ChunkIDs: []string{"new1"}}
	err := s.ApplyFileUpdate("proj", mf, []string{"old1"}, []*types.ChunkWithEmbedding{
		embChunk("new1", "a.go", 1, []float32{0, 1, 0}),
	})
	if err != nil {
		t.Fatalf("ApplyFileUpdate failed: %v", err)
	}

	ids, _ := s.ChunkIDs("proj")
	if len(ids) != 1 || ids[0] != "new1" {
		t.Errorf("ChunkIDs = %v, want [new1]", ids)
	}

	got, err := s.GetManifestFile("proj", "a.go")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != "h2" {
		t.Errorf("manifest hash = %q, want h2", got.Hash)
	}
}

func TestRemoveFile(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateCollection("proj", 3); err != nil {
		t.Fatal(err)
	}
	if err := s.InitManifest("proj", &types.ProjectManifest{
		ProjectPath: "/p",
		Collection:  "proj",
		Signature:   types.EmbeddingSignature{Provider: "fake", Model: "m", Dimensions: 3},
		Files: map[string]types.ManifestFile{
			"a.go": {Path: "a.go", Hash: "h1", ChunkIDs: []string{"aaaa"}},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertChunks("proj", []*types.ChunkWithEmbedding{
		embChunk("aaaa", "a.go", 1, []float32{1, 0, 0}),
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveFile("proj", "a.go"); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}

	count, _ := s.CountChunks("proj")
	if count != 0 {
		t.Errorf("chunks = %d, want 0", count)
	}
	if _, err := s.GetManifestFile("proj", "a.go"); err == nil {
		t.Error("manifest record should be gone")
	}
}

func TestPromoteCollection(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateCollection("proj.staging", 3); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertChunks("proj.staging", []*types.ChunkWithEmbedding{
		embChunk("aaaa", "a.go", 1, []float32{1, 0, 0}),
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.PromoteCollection("proj.staging", "proj"); err != nil {
		t.Fatalf("PromoteCollection failed: %v", err)
	}

	if s.HasCollection("proj.staging") {
		t.Error("staging collection still present")
	}
	count, err := s.CountChunks("proj")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("promoted chunks = %d, want 1", count)
	}
}

func TestFloatBytesRoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, 3.14159}
	out := bytesToFloats(floatsToBytes(in))

	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value %d = %f, want %f", i, out[i], in[i])
		}
	}
}
